package service

import (
	"log/slog"
	"time"

	"stock_ledger/internal/analytics"
	"stock_ledger/internal/domain"
	"stock_ledger/internal/infra"
	"stock_ledger/internal/registry"

	"github.com/shopspring/decimal"
)

// Metric names used for instrumentation.
const (
	MetricPrice          = "price"
	MetricDividendYield  = "dividend_yield"
	MetricPERatio        = "pe_ratio"
	MetricAllSharesIndex = "all_shares_index"
)

// StockService is the call surface of the trade ledger: security upserts,
// trade submission and on-demand metrics. It is safe for concurrent use.
type StockService struct {
	registry *registry.SecurityRegistry
	engine   *analytics.Engine
	catalog  domain.ListingRepository
	metrics  *infra.Metrics
	logger   *slog.Logger
	now      domain.Clock
	window   time.Duration
}

// Option configures a StockService.
type Option func(*StockService)

// WithCatalog writes every successful upsert through to the catalog.
func WithCatalog(catalog domain.ListingRepository) Option {
	return func(s *StockService) { s.catalog = catalog }
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *infra.Metrics) Option {
	return func(s *StockService) { s.metrics = m }
}

// WithLogger sets the logger (slog.Default otherwise).
func WithLogger(l *slog.Logger) Option {
	return func(s *StockService) { s.logger = l }
}

// WithClock sets the clock used to stamp trades and evaluate the window.
func WithClock(c domain.Clock) Option {
	return func(s *StockService) { s.now = c }
}

// WithWindow sets the price calculation window.
func WithWindow(w time.Duration) Option {
	return func(s *StockService) { s.window = w }
}

// NewStockService creates a new StockService over an empty registry.
func NewStockService(opts ...Option) *StockService {
	s := &StockService{
		registry: registry.New(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = infra.NewMetrics()
	}
	// The engine must read the same clock trades are stamped with
	s.engine = analytics.NewEngine(s.registry, s.window, s.now)
	return s
}

// Registry returns the underlying registry.
func (s *StockService) Registry() *registry.SecurityRegistry {
	return s.registry
}

// Metrics returns the Prometheus collectors.
func (s *StockService) Metrics() *infra.Metrics {
	return s.metrics
}

// Window returns the price calculation window.
func (s *StockService) Window() time.Duration {
	return s.engine.Window()
}

// UpsertSecurity registers a security or replaces its metadata, keeping its trades.
func (s *StockService) UpsertSecurity(symbol string, class domain.Classification, parValue, fixedDividendRate int64) error {
	sec, err := domain.NewSecurity(symbol, class, parValue, fixedDividendRate)
	if err != nil {
		s.logger.Warn("Security rejected", slog.String("symbol", symbol), slog.Any("error", err))
		return err
	}

	created := s.registry.Put(sec)
	s.metrics.RecordUpsert(s.registry.Len())

	if s.catalog != nil {
		if err := s.storeListing(sec); err != nil {
			// The registry stays authoritative for this process
			s.logger.Error("Failed to store listing", slog.String("symbol", symbol), slog.Any("error", err))
		}
	}

	s.logger.Info("Security upserted",
		slog.String("symbol", symbol),
		slog.String("classification", class.String()),
		slog.Int64("par_value", parValue),
		slog.Bool("created", created),
	)
	return nil
}

// storeListing writes sec to the catalog, keeping the creation time of an
// existing listing.
func (s *StockService) storeListing(sec domain.Security) error {
	listing := domain.ListingFromSecurity(sec)
	existing, err := s.catalog.GetListing(sec.Symbol())
	if err != nil {
		return err
	}
	if existing != nil {
		listing.CreatedAt = existing.CreatedAt
	}
	return s.catalog.UpsertListing(&listing)
}

// SubmitTrade validates the request, stamps it with the current time and
// records it in the security's ledger.
func (s *StockService) SubmitTrade(req domain.TradeRequest) (domain.Trade, error) {
	trade, err := domain.NewTrade(req, s.now())
	if err != nil {
		return domain.Trade{}, s.reject(req.Symbol, err)
	}

	// Registry read lock is released before the ledger write lock is taken
	_, l, err := s.registry.Lookup(req.Symbol)
	if err != nil {
		return domain.Trade{}, s.reject(req.Symbol, err)
	}
	l.Record(trade)

	s.metrics.RecordTrade(trade.Symbol(), trade.Type().String())
	s.logger.Debug("Trade recorded",
		slog.String("symbol", trade.Symbol()),
		slog.String("trade_id", trade.ID().String()),
		slog.String("side", trade.Type().String()),
		slog.Int64("quantity", trade.Quantity()),
		slog.Int64("total_price", trade.TotalPrice()),
	)
	return trade, nil
}

func (s *StockService) reject(symbol string, err error) error {
	s.metrics.RecordRejection(domain.KindOf(err).String())
	s.logger.Warn("Trade rejected", slog.String("symbol", symbol), slog.Any("error", err))
	return err
}

// GetSecurity returns the current metadata of a security.
func (s *StockService) GetSecurity(symbol string) (domain.Security, error) {
	sec, _, err := s.registry.Lookup(symbol)
	return sec, err
}

// LastTrade returns the most recent trade of a security.
func (s *StockService) LastTrade(symbol string) (domain.Trade, error) {
	_, l, err := s.registry.Lookup(symbol)
	if err != nil {
		return domain.Trade{}, err
	}
	return l.LastTrade()
}

// Price returns the volume weighted price over the window, in pennies.
func (s *StockService) Price(symbol string) (int64, error) {
	start := time.Now()
	price, err := s.engine.Price(symbol)
	s.metrics.RecordQuery(MetricPrice, err, time.Since(start))
	return price, err
}

// DividendYield returns the dividend yield of a security.
func (s *StockService) DividendYield(symbol string) (decimal.Decimal, error) {
	start := time.Now()
	yield, err := s.engine.DividendYield(symbol)
	s.metrics.RecordQuery(MetricDividendYield, err, time.Since(start))
	return yield, err
}

// PERatio returns the price / dividend ratio of a security.
func (s *StockService) PERatio(symbol string) (decimal.Decimal, error) {
	start := time.Now()
	pe, err := s.engine.PERatio(symbol)
	s.metrics.RecordQuery(MetricPERatio, err, time.Since(start))
	return pe, err
}

// AllSharesIndex returns the geometric mean of the current prices.
func (s *StockService) AllSharesIndex() (decimal.Decimal, error) {
	start := time.Now()
	index, err := s.engine.AllSharesIndex()
	s.metrics.RecordQuery(MetricAllSharesIndex, err, time.Since(start))
	return index, err
}

// Quote bundles the metrics of one security. Metric failures are reported in
// the quote rather than aborting it; only an unknown symbol fails the call.
type Quote struct {
	Security      domain.Security
	Trades        int
	LastTrade     *domain.Trade
	Price         int64
	PriceErr      error
	DividendYield decimal.Decimal
	YieldErr      error
	PERatio       decimal.Decimal
	PEErr         error
}

// Quote computes every per-security metric for symbol.
func (s *StockService) Quote(symbol string) (Quote, error) {
	sec, l, err := s.registry.Lookup(symbol)
	if err != nil {
		return Quote{}, err
	}

	q := Quote{Security: sec, Trades: l.Len()}
	if last, err := l.LastTrade(); err == nil {
		q.LastTrade = &last
	}
	q.Price, q.PriceErr = s.Price(symbol)
	q.DividendYield, q.YieldErr = s.DividendYield(symbol)
	q.PERatio, q.PEErr = s.PERatio(symbol)
	return q, nil
}

// LoadListings registers every listing of the catalog. It is used at startup.
// Nothing is registered unless every listing is valid.
func (s *StockService) LoadListings(listings []domain.SecurityListing) error {
	secs := make([]domain.Security, 0, len(listings))
	for _, listing := range listings {
		sec, err := listing.Security()
		if err != nil {
			return err
		}
		secs = append(secs, sec)
	}

	for _, sec := range secs {
		s.registry.Put(sec)
		s.metrics.RecordUpsert(s.registry.Len())
	}
	return nil
}
