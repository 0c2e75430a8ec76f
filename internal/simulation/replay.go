package simulation

import (
	"fmt"
	"io"
	"log/slog"

	"stock_ledger/internal/domain"

	"gopkg.in/yaml.v3"
)

// Script is a recorded session: securities to register, then trades in order.
type Script struct {
	Securities []domain.SecurityListing `yaml:"securities"`
	Trades     []ScriptTrade            `yaml:"trades"`
}

// ScriptTrade is one trade line of a script.
type ScriptTrade struct {
	Symbol       string `yaml:"symbol"`
	Type         string `yaml:"type"`
	Quantity     int64  `yaml:"quantity"`
	TotalPrice   int64  `yaml:"total_price"`
	DividendPaid int64  `yaml:"dividend_paid"`
}

// Request converts the line into a trade request.
func (t ScriptTrade) Request() (domain.TradeRequest, error) {
	side, err := domain.ParseTradeType(t.Type)
	if err != nil {
		return domain.TradeRequest{}, err
	}
	return domain.TradeRequest{
		Symbol:       t.Symbol,
		Type:         side,
		Quantity:     t.Quantity,
		TotalPrice:   t.TotalPrice,
		DividendPaid: t.DividendPaid,
	}, nil
}

// ParseScript decodes a YAML script. Unknown fields are rejected.
func ParseScript(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	return &s, nil
}

// Ledger is what a replay drives. *service.StockService satisfies it.
type Ledger interface {
	Submitter
	UpsertSecurity(symbol string, class domain.Classification, parValue, fixedDividendRate int64) error
}

// ReplayResult counts what a replay applied.
type ReplayResult struct {
	Securities int
	Trades     int
	Rejected   []error
}

// Replay applies the script in order. An invalid security aborts the replay;
// a rejected trade is collected and the replay continues.
func Replay(l Ledger, s *Script) (ReplayResult, error) {
	var res ReplayResult

	for _, listing := range s.Securities {
		sec, err := listing.Security()
		if err != nil {
			return res, err
		}
		if err := l.UpsertSecurity(sec.Symbol(), sec.Classification(), sec.ParValue(), sec.FixedDividendRate()); err != nil {
			return res, err
		}
		res.Securities++
	}

	for i, line := range s.Trades {
		req, err := line.Request()
		if err == nil {
			_, err = l.SubmitTrade(req)
		}
		if err != nil {
			slog.Warn("Replay trade rejected", slog.Int("line", i+1), slog.Any("error", err))
			res.Rejected = append(res.Rejected, fmt.Errorf("trade %d: %w", i+1, err))
			continue
		}
		res.Trades++
	}

	return res, nil
}
