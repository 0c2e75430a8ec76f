// Package report turns service metrics into a Markdown summary for the terminal.
package report

import (
	"fmt"
	"strings"

	"stock_ledger/internal/domain"
	"stock_ledger/internal/service"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
)

// Row is the report line of one security.
type Row struct {
	Symbol         string
	Classification string
	ParValue       string
	Trades         int
	LastTrade      string
	Price          string
	DividendYield  string
	PERatio        string
}

// Report is a point-in-time view of every registered security.
type Report struct {
	Currency string
	Window   string
	Rows     []Row
	Index    string
}

// Source is the part of the service a report reads.
type Source interface {
	Quote(symbol string) (service.Quote, error)
	AllSharesIndex() (decimal.Decimal, error)
}

// Build collects a quote for every symbol and the all-shares index.
// Symbols that disappear while building are left out.
func Build(svc *service.StockService, currency string) (*Report, error) {
	symbols := make([]string, 0, svc.Registry().Len())
	for symbol := range svc.Registry().AllIdentifiers() {
		symbols = append(symbols, symbol)
	}
	rep, err := build(svc, symbols, currency)
	if err != nil {
		return nil, err
	}
	rep.Window = svc.Window().String()
	return rep, nil
}

// BuildFor reports a single security. Unlike Build, an unknown symbol is an error.
func BuildFor(svc *service.StockService, currency, symbol string) (*Report, error) {
	if _, err := svc.GetSecurity(symbol); err != nil {
		return nil, err
	}
	rep, err := build(svc, []string{symbol}, currency)
	if err != nil {
		return nil, err
	}
	rep.Window = svc.Window().String()
	return rep, nil
}

func build(src Source, symbols []string, currency string) (*Report, error) {
	rep := &Report{Currency: currency, Rows: make([]Row, 0, len(symbols))}

	for _, symbol := range symbols {
		q, err := src.Quote(symbol)
		if err != nil {
			if domain.KindOf(err) == domain.KindSecurityNotFound {
				continue
			}
			return nil, err
		}
		rep.Rows = append(rep.Rows, rowFromQuote(q, currency))
	}

	index, err := src.AllSharesIndex()
	if err != nil {
		return nil, err
	}
	rep.Index = FormatPennies(index.Round(0).IntPart(), currency)
	if !index.IsZero() {
		rep.Index += fmt.Sprintf(" (%s)", index.StringFixed(2))
	}
	return rep, nil
}

func rowFromQuote(q service.Quote, currency string) Row {
	row := Row{
		Symbol:         q.Security.Symbol(),
		Classification: q.Security.Classification().String(),
		ParValue:       FormatPennies(q.Security.ParValue(), currency),
		Trades:         q.Trades,
		LastTrade:      "-",
		Price:          valueOrReason(q.PriceErr, func() string { return FormatPennies(q.Price, currency) }),
		DividendYield:  valueOrReason(q.YieldErr, func() string { return q.DividendYield.Mul(decimal.NewFromInt(100)).StringFixed(4) + "%" }),
		PERatio:        valueOrReason(q.PEErr, func() string { return q.PERatio.StringFixed(2) }),
	}
	if q.Security.Classification() == domain.Preferred {
		row.Classification += fmt.Sprintf(" %d%%", q.Security.FixedDividendRate())
	}
	if q.LastTrade != nil {
		row.LastTrade = fmt.Sprintf("%s %d @ %s", q.LastTrade.Type(), q.LastTrade.Quantity(),
			FormatPennies(q.LastTrade.SinglePrice(), currency))
	}
	return row
}

func valueOrReason(err error, value func() string) string {
	if err != nil {
		return "n/a (" + strings.ReplaceAll(domain.KindOf(err).String(), "_", " ") + ")"
	}
	return value()
}

// FormatPennies renders an amount in the smallest currency unit, e.g. £1.50.
func FormatPennies(amount int64, currency string) string {
	return money.New(amount, currency).Display()
}

// Markdown renders the report as a Markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("# Stock Ledger Report\n\n")
	if r.Window != "" {
		fmt.Fprintf(&b, "Prices are volume weighted over the last %s.\n\n", r.Window)
	}

	if len(r.Rows) == 0 {
		b.WriteString("_No securities registered._\n\n")
	} else {
		b.WriteString("| Symbol | Type | Par | Trades | Last trade | Price | Dividend yield | P/E |\n")
		b.WriteString("|---|---|---:|---:|---|---:|---:|---:|\n")
		for _, row := range r.Rows {
			fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s | %s | %s |\n",
				row.Symbol, row.Classification, row.ParValue, row.Trades, row.LastTrade,
				row.Price, row.DividendYield, row.PERatio)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "**All-Shares Index:** %s\n", r.Index)
	return b.String()
}

// Render pretty-prints the Markdown for a terminal. style is a glamour
// style name ("dark", "light", "notty", ...); "notty" is the safe choice for pipes.
func (r *Report) Render(style string) (string, error) {
	if style == "" {
		style = "notty"
	}
	return glamour.Render(r.Markdown(), style)
}
