package registry

import (
	"iter"
	"sort"
	"sync"

	"stock_ledger/internal/domain"
	"stock_ledger/internal/ledger"
)

// listing pairs a security with its ledger. Both share the same lifetime.
type listing struct {
	security domain.Security
	ledger   *ledger.TradeLedger
}

// SecurityRegistry maps symbols to their security metadata and trade ledger.
//
// The registry lock only guards the map. Ledger locks are taken after the
// registry lock has been released, so the two never nest.
type SecurityRegistry struct {
	mu       sync.RWMutex
	listings map[string]listing
}

// New creates an empty SecurityRegistry.
func New() *SecurityRegistry {
	return &SecurityRegistry{
		listings: make(map[string]listing),
	}
}

// Upsert validates the fields and registers a new security, or replaces the
// metadata of an existing one while keeping its trade history.
// It reports whether a new security was created.
func (r *SecurityRegistry) Upsert(symbol string, class domain.Classification, parValue, fixedDividendRate int64) (bool, error) {
	sec, err := domain.NewSecurity(symbol, class, parValue, fixedDividendRate)
	if err != nil {
		return false, err
	}
	return r.Put(sec), nil
}

// Put stores an already validated security. See Upsert.
func (r *SecurityRegistry) Put(sec domain.Security) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.listings[sec.Symbol()]
	if !exists {
		r.listings[sec.Symbol()] = listing{security: sec, ledger: ledger.New(sec.Symbol())}
		return true
	}

	current.security = sec
	r.listings[sec.Symbol()] = current
	return false
}

// Lookup returns the security and its ledger.
func (r *SecurityRegistry) Lookup(symbol string) (domain.Security, *ledger.TradeLedger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.listings[symbol]
	if !ok {
		return domain.Security{}, nil, domain.NewSecurityNotFound("lookup", symbol)
	}
	return l.security, l.ledger, nil
}

// AllIdentifiers returns a sequence over the symbols known at call time, in
// sorted order. The snapshot is taken immediately; iterating it does not hold
// the registry lock and can be repeated.
func (r *SecurityRegistry) AllIdentifiers() iter.Seq[string] {
	r.mu.RLock()
	symbols := make([]string, 0, len(r.listings))
	for symbol := range r.listings {
		symbols = append(symbols, symbol)
	}
	r.mu.RUnlock()

	sort.Strings(symbols)

	return func(yield func(string) bool) {
		for _, s := range symbols {
			if !yield(s) {
				return
			}
		}
	}
}

// Len returns the number of registered securities.
func (r *SecurityRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.listings)
}
