package analytics

import (
	"errors"
	"math"
	"time"

	"stock_ledger/internal/domain"
	"stock_ledger/internal/ledger"
	"stock_ledger/internal/registry"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// indexPrecision is the number of decimal places kept in the index, enough to
// absorb the float error of exp(log(x)).
const indexPrecision = 8

// Engine computes metrics from the registry on demand. It holds no state
// besides its configuration.
type Engine struct {
	registry *registry.SecurityRegistry
	window   time.Duration
	now      domain.Clock
}

// NewEngine creates an Engine. A zero window selects ledger.DefaultWindow and
// a nil clock selects time.Now.
func NewEngine(reg *registry.SecurityRegistry, window time.Duration, clock domain.Clock) *Engine {
	if window <= 0 {
		window = ledger.DefaultWindow
	}
	if clock == nil {
		clock = time.Now
	}
	return &Engine{registry: reg, window: window, now: clock}
}

// Window returns the lookback used for price calculation.
func (e *Engine) Window() time.Duration {
	return e.window
}

// Price returns the volume weighted price over the window, in pennies:
// Σ(totalPrice × quantity) / Σ(quantity), truncated.
func (e *Engine) Price(symbol string) (int64, error) {
	_, l, err := e.registry.Lookup(symbol)
	if err != nil {
		return 0, err
	}
	return e.priceOf(l)
}

func (e *Engine) priceOf(l *ledger.TradeLedger) (int64, error) {
	trades := l.RecentTrades(e.window, e.now())
	if len(trades) == 0 {
		return 0, domain.NewInsufficientData("price", l.Symbol(), "no trades in the last "+e.window.String())
	}

	weighted := decimal.Zero
	quantity := decimal.Zero
	for _, trade := range trades {
		q := decimal.NewFromInt(trade.Quantity())
		weighted = weighted.Add(decimal.NewFromInt(trade.TotalPrice()).Mul(q))
		quantity = quantity.Add(q)
	}

	return weighted.Div(quantity).Truncate(0).IntPart(), nil
}

// DividendYield returns fixedDividendRate% × parValue / price for Preferred
// securities and lastTrade.dividendPaid / price for Common ones.
func (e *Engine) DividendYield(symbol string) (decimal.Decimal, error) {
	sec, l, err := e.registry.Lookup(symbol)
	if err != nil {
		return decimal.Zero, err
	}

	last, err := l.LastTrade()
	if err != nil {
		return decimal.Zero, err
	}

	price, err := e.priceOf(l)
	if err != nil {
		return decimal.Zero, err
	}
	if price == 0 {
		return decimal.Zero, domain.NewInsufficientData("dividend_yield", symbol, "price is zero")
	}
	p := decimal.NewFromInt(price)

	switch sec.Classification() {
	case domain.Preferred:
		dividend := decimal.NewFromInt(sec.FixedDividendRate()).Mul(decimal.NewFromInt(sec.ParValue()))
		return dividend.Div(p.Mul(hundred)), nil
	default:
		return decimal.NewFromInt(last.DividendPaid()).Div(p), nil
	}
}

// PERatio returns price / lastTrade.dividendPaid.
func (e *Engine) PERatio(symbol string) (decimal.Decimal, error) {
	_, l, err := e.registry.Lookup(symbol)
	if err != nil {
		return decimal.Zero, err
	}

	last, err := l.LastTrade()
	if err != nil {
		return decimal.Zero, err
	}

	price, err := e.priceOf(l)
	if err != nil {
		return decimal.Zero, err
	}

	if last.DividendPaid() == 0 {
		return decimal.Zero, domain.NewInsufficientData("pe_ratio", symbol, "dividend is zero")
	}
	return decimal.NewFromInt(price).Div(decimal.NewFromInt(last.DividendPaid())), nil
}

// AllSharesIndex returns the geometric mean of the prices of every security
// with trades in the window. Securities without recent trades are skipped; an
// index over no securities is 0, and so is an index including a zero price.
//
// Symbols are snapshotted first and looked up one by one, so a security
// registered concurrently may or may not be included.
func (e *Engine) AllSharesIndex() (decimal.Decimal, error) {
	var (
		logSum float64
		n      int
	)

	for symbol := range e.registry.AllIdentifiers() {
		price, err := e.Price(symbol)
		if errors.Is(err, domain.ErrInsufficientData) || errors.Is(err, domain.ErrSecurityNotFound) {
			continue
		}
		if err != nil {
			return decimal.Zero, err
		}
		if price == 0 {
			return decimal.Zero, nil
		}
		logSum += math.Log(float64(price))
		n++
	}

	if n == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromFloat(math.Exp(logSum / float64(n))).Round(indexPrecision), nil
}
