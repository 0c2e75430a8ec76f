// Package simulation generates random trade load against the ledger.
package simulation

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"stock_ledger/internal/domain"

	"golang.org/x/sync/errgroup"
)

// Submitter records trades. *service.StockService satisfies it.
type Submitter interface {
	SubmitTrade(req domain.TradeRequest) (domain.Trade, error)
}

// Config controls a simulation run.
type Config struct {
	Symbols []string
	Trades  int
	Workers int
	Seed    uint64
}

// Result summarizes a run.
type Result struct {
	Submitted int64
	Rejected  int64
	Elapsed   time.Duration
}

// Generator produces random trade requests. It is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	symbols []string
}

// NewGenerator creates a generator drawing from symbols with a fixed seed.
func NewGenerator(symbols []string, seed uint64) *Generator {
	return &Generator{
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		symbols: append([]string(nil), symbols...),
	}
}

// Next returns a random request: quantity in [1,100], total price in [1,300]
// and a dividend of 1% to 20% of the total price plus one penny.
func (g *Generator) Next() domain.TradeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()

	side := domain.Buy
	if g.rng.IntN(2) == 1 {
		side = domain.Sell
	}
	total := g.rng.Int64N(300) + 1
	return domain.TradeRequest{
		Symbol:       g.symbols[g.rng.IntN(len(g.symbols))],
		Type:         side,
		Quantity:     g.rng.Int64N(100) + 1,
		TotalPrice:   total,
		DividendPaid: total*(g.rng.Int64N(20)+1)/100 + 1,
	}
}

// Run submits cfg.Trades random trades from cfg.Workers goroutines. Rejected
// trades are counted, not fatal; the run stops early when ctx is cancelled.
func Run(ctx context.Context, sub Submitter, cfg Config) (Result, error) {
	if len(cfg.Symbols) == 0 {
		return Result{}, domain.NewInvalidArgument("simulate", "", "no symbols to trade")
	}
	if cfg.Trades < 0 {
		return Result{}, domain.NewInvalidArgument("simulate", "", "trade count must not be negative")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	gen := NewGenerator(cfg.Symbols, cfg.Seed)
	var submitted, rejected atomic.Int64

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for i := 0; i < cfg.Trades && gctx.Err() == nil; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := sub.SubmitTrade(gen.Next()); err != nil {
				rejected.Add(1)
				return nil
			}
			submitted.Add(1)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	res := Result{Submitted: submitted.Load(), Rejected: rejected.Load(), Elapsed: time.Since(start)}
	if err != nil {
		slog.Warn("Simulation interrupted", slog.Int64("submitted", res.Submitted), slog.Any("error", err))
		return res, err
	}

	slog.Info("Simulation completed",
		slog.Int64("submitted", res.Submitted),
		slog.Int64("rejected", res.Rejected),
		slog.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}
