package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/kalshi-orderflow/internal/config"
	"github.com/rickgao/kalshi-orderflow/internal/database"
	"github.com/rickgao/kalshi-orderflow/internal/model"
)

// Store persists order-flow events in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// Open connects to the database, bootstraps the schema, and returns a Store.
func Open(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*Store, error) {
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return New(pool, logger), nil
}

// New wraps an existing pool. The schema must already exist.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		pool:   pool,
		logger: logger,
	}
}

// validate enforces the event invariants at the store boundary.
func validate(ev model.OrderFlowEvent) error {
	if !ev.Side.Valid() {
		return &ValidationError{Field: "side", Reason: fmt.Sprintf("%q not in {yes, no}", ev.Side)}
	}
	if !ev.Action.Valid() {
		return &ValidationError{Field: "action", Reason: fmt.Sprintf("%q not in {bid, ask, fill}", ev.Action)}
	}
	if ev.Size < 0 {
		return &ValidationError{Field: "size", Reason: fmt.Sprintf("%d is negative", ev.Size)}
	}
	if ev.MarketTicker == "" {
		return &ValidationError{Field: "market_ticker", Reason: "empty"}
	}
	return nil
}

// Insert validates and persists an event, returning the assigned id.
// The row is visible to all subsequent reads on return.
func (s *Store) Insert(ctx context.Context, ev model.OrderFlowEvent) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	if err := validate(ev); err != nil {
		return 0, err
	}

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO order_flows (ts, market_ticker, side, action, price, size, order_id, raw_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, ev.Timestamp, ev.MarketTicker, string(ev.Side), string(ev.Action),
		ev.Price, ev.Size, nullable(ev.OrderID), nullable(ev.RawData),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	return id, nil
}

// Recent returns up to limit events ordered by timestamp descending,
// optionally filtered to one market (empty ticker means global).
func (s *Store) Recent(ctx context.Context, limit int, ticker string) ([]model.OrderFlowEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	if limit < 1 {
		return nil, &ValidationError{Field: "limit", Reason: fmt.Sprintf("%d must be >= 1", limit)}
	}

	var rows pgx.Rows
	var err error
	if ticker == "" {
		rows, err = s.pool.Query(ctx, `
			SELECT id, ts, market_ticker, side, action, price, size, order_id, raw_data
			FROM order_flows
			ORDER BY ts DESC, id DESC
			LIMIT $1
		`, limit)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT id, ts, market_ticker, side, action, price, size, order_id, raw_data
			FROM order_flows
			WHERE market_ticker = $1
			ORDER BY ts DESC, id DESC
			LIMIT $2
		`, ticker, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}

	return scanEvents(rows)
}

// Range returns events with start <= ts <= end in descending time order,
// optionally filtered to one market.
func (s *Store) Range(ctx context.Context, start, end int64, ticker string) ([]model.OrderFlowEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	if start > end {
		return nil, &InvalidRangeError{Start: start, End: end}
	}

	var rows pgx.Rows
	var err error
	if ticker == "" {
		rows, err = s.pool.Query(ctx, `
			SELECT id, ts, market_ticker, side, action, price, size, order_id, raw_data
			FROM order_flows
			WHERE ts >= $1 AND ts <= $2
			ORDER BY ts DESC, id DESC
		`, start, end)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT id, ts, market_ticker, side, action, price, size, order_id, raw_data
			FROM order_flows
			WHERE ts >= $1 AND ts <= $2 AND market_ticker = $3
			ORDER BY ts DESC, id DESC
		`, start, end, ticker)
	}
	if err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}

	return scanEvents(rows)
}

// Stats computes rolling aggregates grouped by (action, side) over the window
// [now - windowMinutes, now]. An empty result is not an error.
func (s *Store) Stats(ctx context.Context, ticker string, windowMinutes int) ([]model.ActionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	now := time.Now().UnixMilli()
	start := now - int64(windowMinutes)*60_000

	rows, err := s.pool.Query(ctx, `
		SELECT action, side, COUNT(*), COALESCE(SUM(size), 0),
		       AVG(price), MIN(price), MAX(price)
		FROM order_flows
		WHERE market_ticker = $1 AND ts >= $2 AND ts <= $3
		GROUP BY action, side
		ORDER BY action, side
	`, ticker, start, now)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := make([]model.ActionStats, 0, 6)
	for rows.Next() {
		var st model.ActionStats
		var action, side string
		if err := rows.Scan(&action, &side, &st.Count, &st.TotalSize, &st.AvgPrice, &st.MinPrice, &st.MaxPrice); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		st.Action = model.Action(action)
		st.Side = model.Side(side)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read stats rows: %w", err)
	}

	return stats, nil
}

// Close releases the underlying pool. Subsequent operations fail with
// ErrClosed. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func scanEvents(rows pgx.Rows) ([]model.OrderFlowEvent, error) {
	defer rows.Close()

	var events []model.OrderFlowEvent
	for rows.Next() {
		var ev model.OrderFlowEvent
		var side, action string
		var orderID, rawData *string
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &ev.MarketTicker, &side, &action,
			&ev.Price, &ev.Size, &orderID, &rawData); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		ev.Side = model.Side(side)
		ev.Action = model.Action(action)
		if orderID != nil {
			ev.OrderID = *orderID
		}
		if rawData != nil {
			ev.RawData = *rawData
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read event rows: %w", err)
	}

	return events, nil
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
