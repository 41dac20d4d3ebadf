package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema for the append-only order_flows table. The ts and market_ticker
// indexes back the monitor's per-cycle "recent N for market" query, which is
// the hot path.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS order_flows (
	id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	ts            BIGINT NOT NULL,
	market_ticker TEXT NOT NULL,
	side          TEXT NOT NULL CHECK (side IN ('yes', 'no')),
	action        TEXT NOT NULL CHECK (action IN ('bid', 'ask', 'fill')),
	price         DOUBLE PRECISION NOT NULL,
	size          BIGINT NOT NULL CHECK (size >= 0),
	order_id      TEXT,
	raw_data      TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_order_flows_ts ON order_flows (ts DESC);
CREATE INDEX IF NOT EXISTS idx_order_flows_market_ts ON order_flows (market_ticker, ts DESC);
CREATE INDEX IF NOT EXISTS idx_order_flows_action ON order_flows (action);
`

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
