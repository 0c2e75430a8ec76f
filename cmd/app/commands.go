package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"stock_ledger/internal/app"
	"stock_ledger/internal/report"
	"stock_ledger/internal/simulation"

	"github.com/google/subcommands"
)

var commands = []subcommands.Command{
	&simulateCmd{},
	&replayCmd{},
	&quoteCmd{},
}

// output selects how reports are printed.
type output struct {
	style string
	raw   bool
}

func (o *output) setFlags(f *flag.FlagSet) {
	f.StringVar(&o.style, "style", "dark", "glamour style (dark, light, notty)")
	f.BoolVar(&o.raw, "markdown", false, "print raw Markdown")
}

func (o *output) print(b *app.Bootstrap) error {
	rep, err := report.Build(b.Service, b.Config.Market.Currency)
	if err != nil {
		return err
	}
	return printMarkdown(rep, o)
}

func printMarkdown(rep *report.Report, o *output) error {
	if o.raw {
		fmt.Print(rep.Markdown())
		return nil
	}
	out, err := rep.Render(o.style)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// start bootstraps the application and serves metrics in the background.
func start(ctx context.Context) (*app.Bootstrap, bool) {
	b := app.NewBootstrap(*configPath)
	if err := b.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		b.Close()
		return nil, false
	}
	go func() {
		if err := b.ServeMetrics(ctx); err != nil {
			slog.Error("Metrics server failed", slog.Any("error", err))
		}
	}()
	return b, true
}

type simulateCmd struct {
	trades  int
	workers int
	seed    uint64
	out     output
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "record random trades and print the resulting metrics" }
func (*simulateCmd) Usage() string {
	return `simulate [-trades n] [-workers n] [-seed n] [-markdown]

  Submits random trades on every configured security from concurrent
  workers, then prints a report.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.trades, "trades", 1000, "number of trades to submit")
	f.IntVar(&c.workers, "workers", 8, "number of concurrent submitters")
	f.Uint64Var(&c.seed, "seed", 1, "random seed")
	c.out.setFlags(f)
}

func (c *simulateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, ok := start(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer b.Close()

	symbols := make([]string, 0, b.Service.Registry().Len())
	for symbol := range b.Service.Registry().AllIdentifiers() {
		symbols = append(symbols, symbol)
	}

	res, err := simulation.Run(ctx, b.Service, simulation.Config{
		Symbols: symbols,
		Trades:  c.trades,
		Workers: c.workers,
		Seed:    c.seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Submitted %d trades (%d rejected) in %s\n\n", res.Submitted, res.Rejected, res.Elapsed)

	if err := c.out.print(b); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type replayCmd struct {
	file string
	out  output
}

func (*replayCmd) Name() string     { return "replay" }
func (*replayCmd) Synopsis() string { return "apply a YAML script of securities and trades" }
func (*replayCmd) Usage() string {
	return `replay -file <script.yaml> [-markdown]

  Registers the script's securities, submits its trades in order and
  prints a report. Rejected trades are listed on stderr.
`
}

func (c *replayCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "script to replay")
	c.out.setFlags(f)
}

func (c *replayCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		return subcommands.ExitUsageError
	}

	b, ok := start(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer b.Close()

	if err := replayFile(b, c.file); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := c.out.print(b); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func replayFile(b *app.Bootstrap, file string) error {
	fh, err := os.Open(file)
	if err != nil {
		return err
	}
	defer fh.Close()

	script, err := simulation.ParseScript(fh)
	if err != nil {
		return err
	}
	res, err := simulation.Replay(b.Service, script)
	if err != nil {
		return err
	}
	for _, rejected := range res.Rejected {
		fmt.Fprintf(os.Stderr, "rejected: %v\n", rejected)
	}
	fmt.Printf("Replayed %d securities and %d trades\n\n", res.Securities, res.Trades)
	return nil
}

type quoteCmd struct {
	symbol string
	file   string
	out    output
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "print the metrics of one security" }
func (*quoteCmd) Usage() string {
	return `quote -symbol <SYM> [-file <script.yaml>] [-markdown]

  Prints the metrics of one security, optionally after replaying a script.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "security identifier")
	f.StringVar(&c.file, "file", "", "script to replay first")
	c.out.setFlags(f)
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: -symbol is required")
		return subcommands.ExitUsageError
	}

	b, ok := start(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer b.Close()

	if c.file != "" {
		if err := replayFile(b, c.file); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	rep, err := report.BuildFor(b.Service, b.Config.Market.Currency, c.symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := printMarkdown(rep, &c.out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
