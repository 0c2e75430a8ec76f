package report

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"stock_ledger/internal/domain"
	"stock_ledger/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *service.StockService {
	t.Helper()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := service.NewStockService(
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		service.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, svc.UpsertSecurity("TEA", domain.Common, 100, 0))
	require.NoError(t, svc.UpsertSecurity("GIN", domain.Preferred, 100, 2))
	return svc
}

func TestBuild(t *testing.T) {
	svc := newService(t)
	_, err := svc.SubmitTrade(domain.TradeRequest{Symbol: "GIN", Type: domain.Buy, Quantity: 2, TotalPrice: 500, DividendPaid: 10})
	require.NoError(t, err)

	rep, err := Build(svc, "GBP")
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)
	assert.Equal(t, "15m0s", rep.Window)

	gin := rep.Rows[0]
	assert.Equal(t, "GIN", gin.Symbol)
	assert.Equal(t, "PREFERRED 2%", gin.Classification)
	assert.Equal(t, "£1.00", gin.ParValue)
	assert.Equal(t, 1, gin.Trades)
	assert.Equal(t, "BUY 2 @ £2.50", gin.LastTrade)
	assert.Equal(t, "£5.00", gin.Price)
	assert.Equal(t, "0.4000%", gin.DividendYield)
	assert.Equal(t, "50.00", gin.PERatio)

	tea := rep.Rows[1]
	assert.Equal(t, "TEA", tea.Symbol)
	assert.Equal(t, "-", tea.LastTrade)
	assert.Equal(t, "n/a (insufficient data)", tea.Price)
	assert.Equal(t, "n/a (no trades recorded)", tea.DividendYield)
	assert.Equal(t, "n/a (no trades recorded)", tea.PERatio)

	assert.Equal(t, "£5.00 (500.00)", rep.Index)
}

func TestBuild_EmptyRegistry(t *testing.T) {
	svc := service.NewStockService(service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	rep, err := Build(svc, "GBP")
	require.NoError(t, err)
	assert.Empty(t, rep.Rows)
	assert.Equal(t, "£0.00", rep.Index)
	assert.Contains(t, rep.Markdown(), "_No securities registered._")
}

type stubSource struct {
	quotes   map[string]service.Quote
	indexErr error
}

func (s stubSource) Quote(symbol string) (service.Quote, error) {
	q, ok := s.quotes[symbol]
	if !ok {
		return service.Quote{}, domain.NewSecurityNotFound("quote", symbol)
	}
	return q, nil
}

func (s stubSource) AllSharesIndex() (decimal.Decimal, error) {
	return decimal.Zero, s.indexErr
}

func TestBuild_SkipsVanishedSymbols(t *testing.T) {
	sec, err := domain.NewSecurity("ALE", domain.Common, 60, 23)
	require.NoError(t, err)
	src := stubSource{quotes: map[string]service.Quote{
		"ALE": {Security: sec, PriceErr: domain.NewInsufficientData("price", "ALE", "")},
	}}

	rep, err := build(src, []string{"ALE", "GONE"}, "GBP")
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "ALE", rep.Rows[0].Symbol)
	assert.Equal(t, "£0.60", rep.Rows[0].ParValue)
}

func TestBuild_IndexError(t *testing.T) {
	boom := errors.New("boom")
	_, err := build(stubSource{indexErr: boom}, nil, "GBP")
	assert.ErrorIs(t, err, boom)
}

func TestMarkdown(t *testing.T) {
	svc := newService(t)
	svc.SubmitTrade(domain.TradeRequest{Symbol: "TEA", Type: domain.Sell, Quantity: 1, TotalPrice: 120, DividendPaid: 3})

	rep, err := Build(svc, "GBP")
	require.NoError(t, err)

	md := rep.Markdown()
	assert.Contains(t, md, "# Stock Ledger Report")
	assert.Contains(t, md, "last 15m0s")
	assert.Contains(t, md, "| TEA | COMMON | £1.00 | 1 | SELL 1 @ £1.20 | £1.20 | 2.5000% | 40.00 |")
	assert.Contains(t, md, "**All-Shares Index:** £1.20 (120.00)")
}

func TestRender(t *testing.T) {
	svc := newService(t)
	rep, err := Build(svc, "GBP")
	require.NoError(t, err)

	out, err := rep.Render("notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Stock Ledger Report")
	assert.Contains(t, out, "TEA")
}

func TestFormatPennies(t *testing.T) {
	assert.Equal(t, "£12.34", FormatPennies(1234, "GBP"))
	assert.Equal(t, "$0.05", FormatPennies(5, "USD"))
}

func TestBuildFor(t *testing.T) {
	svc := newService(t)

	rep, err := BuildFor(svc, "GBP", "TEA")
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "TEA", rep.Rows[0].Symbol)

	_, err = BuildFor(svc, "GBP", "XYZ")
	assert.ErrorIs(t, err, domain.ErrSecurityNotFound)
}
