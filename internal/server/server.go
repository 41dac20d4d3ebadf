// Package server exposes the HTTP API, WebSocket stream, and health and
// metrics endpoints.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/rickgao/kalshi-orderflow/internal/hub"
	"github.com/rickgao/kalshi-orderflow/internal/metrics"
	"github.com/rickgao/kalshi-orderflow/internal/model"
	"github.com/rickgao/kalshi-orderflow/internal/venue"
)

// EventReader serves stored order-flow queries.
type EventReader interface {
	Recent(ctx context.Context, limit int, ticker string) ([]model.OrderFlowEvent, error)
	Range(ctx context.Context, start, end int64, ticker string) ([]model.OrderFlowEvent, error)
	Stats(ctx context.Context, ticker string, windowMinutes int) ([]model.ActionStats, error)
}

// Venue proxies live market data requests upstream.
type Venue interface {
	State() venue.ConnectionState
	MarketSummaries(ctx context.Context, limit int) ([]model.MarketSummary, error)
	Market(ctx context.Context, ticker string) (*venue.APIMarket, error)
	Orderbook(ctx context.Context, ticker string) (*venue.APIOrderbook, error)
	TradeEvents(ctx context.Context, ticker string, limit int) ([]model.OrderFlowEvent, error)
}

// Watcher manages the monitored market set.
type Watcher interface {
	AddMarket(ticker string) bool
	RemoveMarket(ticker string) bool
	ListMonitored() []string
}

// Broadcaster hands out event subscriptions for the WebSocket stream.
type Broadcaster interface {
	Subscribe() *hub.Subscriber
	Unsubscribe(sub *hub.Subscriber)
}

// Config holds server configuration.
type Config struct {
	Addr        string   // Listen address (default: ":3001")
	CORSOrigins []string // Allowed browser origins
	MetricsPath string   // Prometheus scrape path (default: "/metrics")
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:        ":3001",
		CORSOrigins: []string{"http://localhost:5173"},
		MetricsPath: "/metrics",
	}
}

// Server is the HTTP front end.
type Server struct {
	cfg     Config
	events  EventReader
	venue   Venue
	watcher Watcher
	hub     Broadcaster
	logger  *slog.Logger

	httpSrv *http.Server
}

// New wires the routes and returns a Server ready to start. collector may
// be nil, in which case the default Prometheus handler is mounted.
func New(cfg Config, events EventReader, v Venue, watcher Watcher, broadcaster Broadcaster, collector *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		events:  events,
		venue:   v,
		watcher: watcher,
		hub:     broadcaster,
		logger:  logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	r.Handle(cfg.MetricsPath, collector.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/order-flows", s.handleOrderFlows).Methods(http.MethodGet)
	api.HandleFunc("/order-flows/range", s.handleOrderFlowRange).Methods(http.MethodGet)
	api.HandleFunc("/markets", s.handleMarkets).Methods(http.MethodGet)
	api.HandleFunc("/markets/{ticker}", s.handleMarket).Methods(http.MethodGet)
	api.HandleFunc("/markets/{ticker}/stats", s.handleMarketStats).Methods(http.MethodGet)
	api.HandleFunc("/markets/{ticker}/orderbook", s.handleMarketOrderbook).Methods(http.MethodGet)
	api.HandleFunc("/markets/{ticker}/trades", s.handleMarketTrades).Methods(http.MethodGet)
	api.HandleFunc("/monitor/markets", s.handleListMonitored).Methods(http.MethodGet)
	api.HandleFunc("/monitor/markets", s.handleAddMarket).Methods(http.MethodPost)
	api.HandleFunc("/monitor/markets/{ticker}", s.handleRemoveMarket).Methods(http.MethodDelete)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the root handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start listens in a background goroutine until Stop or a listener error.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.cfg.Addr)

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server failed", "err", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server stopping")
	return s.httpSrv.Shutdown(ctx)
}
