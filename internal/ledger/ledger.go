package ledger

import (
	"sync"
	"time"

	"stock_ledger/internal/domain"

	"github.com/google/btree"
)

// DefaultWindow is the lookback used for price calculation.
const DefaultWindow = 15 * time.Minute

// btreeDegree is the fan-out of the underlying B-tree.
const btreeDegree = 32

// entry orders trades by (timestamp, arrival sequence).
type entry struct {
	ts    time.Time
	seq   uint64
	trade domain.Trade
}

func entryLess(a, b entry) bool {
	if !a.ts.Equal(b.ts) {
		return a.ts.Before(b.ts)
	}
	return a.seq < b.seq
}

// TradeLedger holds the trades of a single security in time order.
// Trades with equal timestamps are all kept, ordered by arrival.
type TradeLedger struct {
	symbol  string
	mu      sync.RWMutex
	trades  *btree.BTreeG[entry]
	nextSeq uint64
}

// New creates an empty TradeLedger for symbol.
func New(symbol string) *TradeLedger {
	return &TradeLedger{
		symbol: symbol,
		trades: btree.NewG(btreeDegree, entryLess),
	}
}

// Record inserts a trade. It never rejects a trade and never overwrites one.
func (l *TradeLedger) Record(trade domain.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextSeq++
	l.trades.ReplaceOrInsert(entry{ts: trade.Timestamp(), seq: l.nextSeq, trade: trade})
}

// RecentTrades returns the trades with timestamp >= asOf-window, oldest first.
// It returns an empty slice when none qualify.
func (l *TradeLedger) RecentTrades(window time.Duration, asOf time.Time) []domain.Trade {
	pivot := entry{ts: asOf.Add(-window)}

	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.Trade, 0)
	l.trades.AscendGreaterOrEqual(pivot, func(e entry) bool {
		result = append(result, e.trade)
		return true
	})
	return result
}

// LastTrade returns the trade with the greatest timestamp (latest arrival on ties).
func (l *TradeLedger) LastTrade() (domain.Trade, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	last, ok := l.trades.Max()
	if !ok {
		return domain.Trade{}, domain.NewNoTradesRecorded("last_trade", l.symbol)
	}
	return last.trade, nil
}

// Symbol returns the symbol of the security this ledger belongs to.
func (l *TradeLedger) Symbol() string {
	return l.symbol
}

// Len returns the number of recorded trades.
func (l *TradeLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.trades.Len()
}

// Trades returns a copy of every recorded trade, oldest first.
func (l *TradeLedger) Trades() []domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.Trade, 0, l.trades.Len())
	l.trades.Ascend(func(e entry) bool {
		result = append(result, e.trade)
		return true
	})
	return result
}
