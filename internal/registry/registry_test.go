package registry

import (
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"stock_ledger/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordOne(t *testing.T, r *SecurityRegistry, symbol string) {
	t.Helper()
	_, l, err := r.Lookup(symbol)
	require.NoError(t, err)

	trade, err := domain.NewTrade(domain.TradeRequest{
		Symbol: symbol, Type: domain.Buy, Quantity: 1, TotalPrice: 100, DividendPaid: 1,
	}, time.Now())
	require.NoError(t, err)
	l.Record(trade)
}

func TestSecurityRegistry_UpsertAndLookup(t *testing.T) {
	r := New()

	created, err := r.Upsert("ABC", domain.Preferred, 100, 8)
	require.NoError(t, err)
	assert.True(t, created)

	sec, l, err := r.Lookup("ABC")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, domain.Preferred, sec.Classification())
	assert.Equal(t, int64(100), sec.ParValue())
	assert.Equal(t, int64(8), sec.FixedDividendRate())
	assert.Equal(t, "ABC", l.Symbol())
}

func TestSecurityRegistry_LookupUnknown(t *testing.T) {
	r := New()

	_, l, err := r.Lookup("XYZ")
	require.ErrorIs(t, err, domain.ErrSecurityNotFound)
	assert.Nil(t, l)
	assert.Equal(t, "XYZ", domain.SymbolOf(err))
}

func TestSecurityRegistry_SymbolsAreCaseSensitive(t *testing.T) {
	r := New()
	_, err := r.Upsert("abc", domain.Common, 1, 0)
	require.NoError(t, err)

	_, _, err = r.Lookup("ABC")
	assert.ErrorIs(t, err, domain.ErrSecurityNotFound)
}

func TestSecurityRegistry_UpdateKeepsHistory(t *testing.T) {
	r := New()
	_, err := r.Upsert("ABC", domain.Common, 100, 0)
	require.NoError(t, err)
	recordOne(t, r, "ABC")

	_, ledgerBefore, _ := r.Lookup("ABC")

	created, err := r.Upsert("ABC", domain.Preferred, 250, 5)
	require.NoError(t, err)
	assert.False(t, created)

	sec, ledgerAfter, err := r.Lookup("ABC")
	require.NoError(t, err)
	assert.Same(t, ledgerBefore, ledgerAfter)
	assert.Equal(t, 1, ledgerAfter.Len())
	assert.Equal(t, domain.Preferred, sec.Classification())
	assert.Equal(t, int64(250), sec.ParValue())
}

func TestSecurityRegistry_UpsertIdempotent(t *testing.T) {
	r := New()
	_, err := r.Upsert("DEF", domain.Common, 100, 0)
	require.NoError(t, err)
	first, _, _ := r.Lookup("DEF")

	recordOne(t, r, "DEF")

	_, err = r.Upsert("DEF", domain.Common, 100, 0)
	require.NoError(t, err)
	second, l, _ := r.Lookup("DEF")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 1, r.Len())
}

func TestSecurityRegistry_InvalidUpsertLeavesStateUnchanged(t *testing.T) {
	r := New()
	_, err := r.Upsert("ABC", domain.Preferred, 100, 8)
	require.NoError(t, err)

	_, err = r.Upsert("ABC", domain.Preferred, 0, 8)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = r.Upsert("NEW", domain.Preferred, 10, 0)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	sec, _, err := r.Lookup("ABC")
	require.NoError(t, err)
	assert.Equal(t, int64(100), sec.ParValue())
	assert.Equal(t, 1, r.Len())
}

func TestSecurityRegistry_AllIdentifiers(t *testing.T) {
	r := New()
	for _, s := range []string{"TEA", "ALE", "POP"} {
		_, err := r.Upsert(s, domain.Common, 100, 0)
		require.NoError(t, err)
	}

	seq := r.AllIdentifiers()

	// Registered after the snapshot: not part of it
	_, err := r.Upsert("GIN", domain.Preferred, 100, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"ALE", "POP", "TEA"}, slices.Collect(seq))
	// Restartable
	assert.Equal(t, []string{"ALE", "POP", "TEA"}, slices.Collect(seq))

	// Early exit is honoured
	for s := range seq {
		assert.Equal(t, "ALE", s)
		break
	}
}

func TestSecurityRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	const symbols = 20

	var wg sync.WaitGroup
	for i := 0; i < symbols; i++ {
		symbol := fmt.Sprintf("S%02d", i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = r.Upsert(symbol, domain.Common, int64(j+1), 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _, _ = r.Lookup(symbol)
				for range r.AllIdentifiers() {
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, symbols, r.Len())
	sec, _, err := r.Lookup("S07")
	require.NoError(t, err)
	assert.Equal(t, int64(50), sec.ParValue())
}
