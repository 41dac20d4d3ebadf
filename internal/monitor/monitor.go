package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/rickgao/kalshi-orderflow/internal/metrics"
	"github.com/rickgao/kalshi-orderflow/internal/model"
	"github.com/rickgao/kalshi-orderflow/internal/store"
)

// Venue provides market data to poll.
type Venue interface {
	MarketSummaries(ctx context.Context, limit int) ([]model.MarketSummary, error)
	TradeEvents(ctx context.Context, ticker string, limit int) ([]model.OrderFlowEvent, error)
	BookEvents(ctx context.Context, ticker string) ([]model.OrderFlowEvent, error)
}

// EventStore persists events and exposes the recency window used for
// trade deduplication.
type EventStore interface {
	Insert(ctx context.Context, ev model.OrderFlowEvent) (int64, error)
	Recent(ctx context.Context, limit int, ticker string) ([]model.OrderFlowEvent, error)
}

// Publisher receives every stored event.
type Publisher interface {
	Publish(ev model.OrderFlowEvent)
}

// Config holds monitor configuration.
type Config struct {
	Interval    time.Duration // Poll cycle interval (default: 5s)
	PollTimeout time.Duration // Per-request timeout for upstream calls (default: 10s)
	Concurrency int           // Max concurrent market polls (default: 8)
	TradeLimit  int           // Trades fetched per market per cycle (default: 10)
	DedupWindow int           // Recent stored events scanned for duplicates (default: 1000)
	SeedLimit   int           // Markets discovered when none configured (default: 20)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    5 * time.Second,
		PollTimeout: 10 * time.Second,
		Concurrency: 8,
		TradeLimit:  10,
		DedupWindow: 1000,
		SeedLimit:   20,
	}
}

// Monitor periodically polls the watched markets for order flow.
type Monitor struct {
	cfg     Config
	venue   Venue
	store   EventStore
	pub     Publisher
	logger  *slog.Logger
	metrics *metrics.Collector

	mu      sync.Mutex
	watched map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Monitor. logger and collector may be nil.
func New(cfg Config, venue Venue, st EventStore, pub Publisher, logger *slog.Logger, collector *metrics.Collector) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		cfg:     cfg,
		venue:   venue,
		store:   st,
		pub:     pub,
		logger:  logger,
		metrics: collector,
		watched: make(map[string]struct{}),
	}
}

// Start seeds the watched set and begins the polling loop. When markets is
// empty it discovers active markets from the venue; discovery failure is
// logged and polling starts with an empty set.
func (m *Monitor) Start(ctx context.Context, markets []string) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if len(markets) == 0 {
		markets = m.seedMarkets(m.ctx)
	}

	m.mu.Lock()
	for _, ticker := range markets {
		if ticker != "" {
			m.watched[ticker] = struct{}{}
		}
	}
	n := len(m.watched)
	m.mu.Unlock()
	m.metrics.SetWatchedMarkets(n)

	m.wg.Add(1)
	go m.run()

	m.logger.Info("order flow monitor started",
		"markets", n,
		"interval", m.cfg.Interval,
		"concurrency", m.cfg.Concurrency,
	)

	return nil
}

// Stop gracefully shuts down the monitor.
func (m *Monitor) Stop(ctx context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("order flow monitor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddMarket puts a market into the watched set. It takes effect on the
// next poll cycle. Returns false if already watched.
func (m *Monitor) AddMarket(ticker string) bool {
	m.mu.Lock()
	_, exists := m.watched[ticker]
	if !exists {
		m.watched[ticker] = struct{}{}
	}
	n := len(m.watched)
	m.mu.Unlock()

	if exists {
		return false
	}
	m.metrics.SetWatchedMarkets(n)
	m.logger.Info("market added", "ticker", ticker, "watched", n)
	return true
}

// RemoveMarket drops a market from the watched set. Returns false if it
// was not watched.
func (m *Monitor) RemoveMarket(ticker string) bool {
	m.mu.Lock()
	_, exists := m.watched[ticker]
	delete(m.watched, ticker)
	n := len(m.watched)
	m.mu.Unlock()

	if !exists {
		return false
	}
	m.metrics.SetWatchedMarkets(n)
	m.logger.Info("market removed", "ticker", ticker, "watched", n)
	return true
}

// ListMonitored returns the watched tickers in sorted order.
func (m *Monitor) ListMonitored() []string {
	m.mu.Lock()
	tickers := make([]string, 0, len(m.watched))
	for ticker := range m.watched {
		tickers = append(tickers, ticker)
	}
	m.mu.Unlock()

	sort.Strings(tickers)
	return tickers
}

// seedMarkets discovers active markets when none were configured.
func (m *Monitor) seedMarkets(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.PollTimeout)
	defer cancel()

	summaries, err := m.venue.MarketSummaries(ctx, m.cfg.SeedLimit)
	if err != nil {
		m.logger.Warn("market discovery failed, starting with empty set", "err", err)
		return nil
	}

	tickers := make([]string, 0, len(summaries))
	for _, s := range summaries {
		tickers = append(tickers, s.Ticker)
	}
	m.logger.Info("seeded watched set from venue", "markets", len(tickers))
	return tickers
}

// run is the main polling loop.
func (m *Monitor) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	m.pollCycle()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.pollCycle()
		}
	}
}

// pollCycle polls every watched market concurrently. Failures are isolated
// per market; one bad ticker never blocks the rest of the cycle.
func (m *Monitor) pollCycle() {
	start := time.Now()

	tickers := m.ListMonitored()
	if len(tickers) == 0 {
		m.logger.Debug("no markets to poll")
		return
	}

	sem := semaphore.NewWeighted(int64(m.cfg.Concurrency))
	var wg sync.WaitGroup
	var polled, errs atomic.Int64

	for _, ticker := range tickers {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()

			if err := sem.Acquire(m.ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			if err := m.pollMarket(ticker); err != nil {
				m.logger.Warn("failed to poll market", "ticker", ticker, "err", err)
				m.metrics.PollError()
				errs.Add(1)
				return
			}
			polled.Add(1)
		}(ticker)
	}

	wg.Wait()

	m.metrics.PollCycle(time.Since(start))
	m.logger.Debug("poll cycle complete",
		"markets", len(tickers),
		"polled", polled.Load(),
		"errors", errs.Load(),
		"duration", time.Since(start),
	)
}

// pollMarket fetches trades and the order book for one market.
func (m *Monitor) pollMarket(ticker string) error {
	ctx, cancel := context.WithTimeout(m.ctx, m.cfg.PollTimeout)
	defer cancel()

	tradesErr := m.pollTrades(ctx, ticker)
	bookErr := m.pollBook(ctx, ticker)

	return errors.Join(tradesErr, bookErr)
}

// pollTrades ingests recent trades, skipping any already stored. Trades
// without an order identifier cannot be deduplicated and are dropped.
func (m *Monitor) pollTrades(ctx context.Context, ticker string) error {
	events, err := m.venue.TradeEvents(ctx, ticker, m.cfg.TradeLimit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	recent, err := m.store.Recent(ctx, m.cfg.DedupWindow, ticker)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(recent))
	for _, ev := range recent {
		if ev.Action == model.ActionFill && ev.OrderID != "" {
			seen[ev.OrderID] = struct{}{}
		}
	}

	for _, ev := range events {
		if ev.OrderID == "" {
			m.metrics.InvalidDropped()
			continue
		}
		if _, dup := seen[ev.OrderID]; dup {
			m.metrics.DuplicateSkipped()
			continue
		}
		seen[ev.OrderID] = struct{}{}

		m.persistAndPublish(ctx, ev)
	}

	return nil
}

// pollBook snapshots the current order book as synthetic bid rows.
func (m *Monitor) pollBook(ctx context.Context, ticker string) error {
	events, err := m.venue.BookEvents(ctx, ticker)
	if err != nil {
		return err
	}

	for _, ev := range events {
		m.persistAndPublish(ctx, ev)
	}
	return nil
}

// persistAndPublish stores one event and broadcasts it. Validation
// failures drop the event; other store errors are logged but do not abort
// the cycle.
func (m *Monitor) persistAndPublish(ctx context.Context, ev model.OrderFlowEvent) {
	id, err := m.store.Insert(ctx, ev)
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			m.metrics.InvalidDropped()
			m.logger.Warn("dropping invalid event",
				"ticker", ev.MarketTicker,
				"field", verr.Field,
				"reason", verr.Reason,
			)
			return
		}
		m.logger.Error("failed to store event", "ticker", ev.MarketTicker, "err", err)
		return
	}

	ev.ID = id
	m.metrics.EventIngested(string(ev.Action))
	if m.pub != nil {
		m.pub.Publish(ev)
	}
}
