package ledger

import (
	"sync"
	"testing"
	"time"

	"stock_ledger/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTrade(t testing.TB, ts time.Time, total int64) domain.Trade {
	t.Helper()
	trade, err := domain.NewTrade(domain.TradeRequest{
		Symbol:       "ABC",
		Type:         domain.Buy,
		Quantity:     1,
		TotalPrice:   total,
		DividendPaid: 1,
	}, ts)
	require.NoError(t, err)
	return trade
}

func totals(trades []domain.Trade) []int64 {
	out := make([]int64, 0, len(trades))
	for _, tr := range trades {
		out = append(out, tr.TotalPrice())
	}
	return out
}

func TestTradeLedger_LastTrade_Empty(t *testing.T) {
	l := New("ABC")

	_, err := l.LastTrade()
	require.ErrorIs(t, err, domain.ErrNoTradesRecorded)
	assert.Equal(t, "ABC", domain.SymbolOf(err))
}

func TestTradeLedger_LastTrade(t *testing.T) {
	l := New("ABC")
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	// Inserted out of order on purpose
	l.Record(mustTrade(t, base.Add(2*time.Minute), 300))
	l.Record(mustTrade(t, base, 100))
	l.Record(mustTrade(t, base.Add(time.Minute), 200))

	last, err := l.LastTrade()
	require.NoError(t, err)
	assert.Equal(t, int64(300), last.TotalPrice())
}

func TestTradeLedger_LastTrade_TieTakesLatestArrival(t *testing.T) {
	l := New("ABC")
	ts := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	l.Record(mustTrade(t, ts, 100))
	l.Record(mustTrade(t, ts, 200))

	last, err := l.LastTrade()
	require.NoError(t, err)
	assert.Equal(t, int64(200), last.TotalPrice())
}

func TestTradeLedger_RecentTrades(t *testing.T) {
	asOf := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	l := New("ABC")

	l.Record(mustTrade(t, asOf.Add(-DefaultWindow-time.Second), 1)) // outside
	l.Record(mustTrade(t, asOf.Add(-time.Minute), 4))
	l.Record(mustTrade(t, asOf.Add(-DefaultWindow), 2)) // boundary is inclusive
	l.Record(mustTrade(t, asOf.Add(-time.Hour), 9))     // outside, inserted late
	l.Record(mustTrade(t, asOf.Add(-5*time.Minute), 3))

	got := l.RecentTrades(DefaultWindow, asOf)
	assert.Equal(t, []int64{2, 3, 4}, totals(got))
	assert.Equal(t, 5, l.Len())
}

func TestTradeLedger_RecentTrades_EqualTimestampsKept(t *testing.T) {
	asOf := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	ts := asOf.Add(-time.Minute)
	l := New("ABC")

	l.Record(mustTrade(t, ts, 10))
	l.Record(mustTrade(t, ts, 20))
	l.Record(mustTrade(t, ts, 10))

	got := l.RecentTrades(DefaultWindow, asOf)
	assert.Equal(t, []int64{10, 20, 10}, totals(got))
}

func TestTradeLedger_RecentTrades_None(t *testing.T) {
	asOf := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	l := New("ABC")

	got := l.RecentTrades(DefaultWindow, asOf)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	l.Record(mustTrade(t, asOf.Add(-time.Hour), 1))
	assert.Empty(t, l.RecentTrades(DefaultWindow, asOf))
}

func TestTradeLedger_Trades_Ordered(t *testing.T) {
	base := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	l := New("ABC")

	l.Record(mustTrade(t, base.Add(3*time.Second), 3))
	l.Record(mustTrade(t, base.Add(time.Second), 1))
	l.Record(mustTrade(t, base.Add(2*time.Second), 2))

	assert.Equal(t, []int64{1, 2, 3}, totals(l.Trades()))
	assert.Equal(t, "ABC", l.Symbol())
}

func TestTradeLedger_ConcurrentRecord(t *testing.T) {
	const writers = 8
	const perWriter = 500

	l := New("ABC")
	ts := time.Now()

	// Same timestamp for everyone: nothing may be coalesced
	batches := make([][]domain.Trade, writers)
	for w := range batches {
		for i := 0; i < perWriter; i++ {
			batches[w] = append(batches[w], mustTrade(t, ts, int64(i+1)))
		}
	}

	var wg sync.WaitGroup
	for _, batch := range batches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, trade := range batch {
				l.Record(trade)
				_ = l.RecentTrades(DefaultWindow, ts)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, l.Len())
	assert.Len(t, l.RecentTrades(DefaultWindow, ts), writers*perWriter)
}
