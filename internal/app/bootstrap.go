package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"stock_ledger/internal/infra"
	"stock_ledger/internal/infra/storage"
	"stock_ledger/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	ConfigPath string
	Config     *infra.Config
	Storage    *storage.Storage
	Metrics    *infra.Metrics
	Service    *service.StockService
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap(configPath string) *Bootstrap {
	if configPath == "" {
		configPath = infra.DefaultConfigPath
	}
	return &Bootstrap{ConfigPath: configPath}
}

// Initialize performs core system initialization (config, logger, catalog, service)
func (b *Bootstrap) Initialize() error {
	// 1. Load Config
	cfg, err := infra.LoadConfig(b.ConfigPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("🚀 Bootstrapping Stock Ledger...", slog.String("config", b.ConfigPath))

	// 3. Initialize Storage (catalog)
	store, err := storage.NewStorage(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Catalog initialized", slog.Bool("in_memory", cfg.Catalog.Path == ""))

	// 4. Service
	b.Metrics = infra.NewMetrics()
	b.Service = service.NewStockService(
		service.WithCatalog(store),
		service.WithMetrics(b.Metrics),
		service.WithLogger(logger),
		service.WithWindow(cfg.Market.Window),
	)

	return b.SyncListings()
}

// SyncListings registers the configured securities, which writes them through
// to the catalog, then loads the whole catalog into the registry. Configured
// values win over stored ones.
func (b *Bootstrap) SyncListings() error {
	for _, listing := range b.Config.Market.Securities {
		sec, err := listing.Security()
		if err != nil {
			return err
		}
		if err := b.Service.UpsertSecurity(sec.Symbol(), sec.Classification(), sec.ParValue(), sec.FixedDividendRate()); err != nil {
			return err
		}
	}

	listings, err := b.Storage.AllListings()
	if err != nil {
		return err
	}
	if err := b.Service.LoadListings(listings); err != nil {
		return err
	}

	slog.Info("✨ Securities loaded", slog.Int("count", len(listings)))
	return nil
}

// ServeMetrics exposes /metrics until ctx is done. It returns immediately when
// no metrics address is configured.
func (b *Bootstrap) ServeMetrics(ctx context.Context) error {
	addr := b.Config.Metrics.Addr
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", b.Metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Metrics server shutdown failed", slog.Any("error", err))
		}
	}()

	slog.Info("📈 Metrics server started", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the catalog.
func (b *Bootstrap) Close() error {
	if b.Storage == nil {
		return nil
	}
	return b.Storage.Close()
}
