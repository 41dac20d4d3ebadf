package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rickgao/kalshi-orderflow/internal/model"
)

// NormalizeTrade maps a raw venue trade record to a canonical FILL event.
//
// Field fallback orders (first present wins):
//   - timestamp: created_time (ISO 8601), ts (ms since epoch), ingestion time
//   - side: taker_side, side, "yes" (lower-cased)
//   - price: yes_price, price, 0
//   - size: count, 1
//
// The trade's unique identifier becomes OrderID; it is the deduplication key
// and is preserved byte-for-byte. The raw payload is retained in RawData.
func NormalizeTrade(raw json.RawMessage, ticker string) (model.OrderFlowEvent, error) {
	var t APITrade
	if err := json.Unmarshal(raw, &t); err != nil {
		return model.OrderFlowEvent{}, fmt.Errorf("decode trade: %w", err)
	}

	ts := parseTimestampMillis(t.CreatedTime)
	if ts == 0 {
		ts = t.Ts
	}
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	side := t.TakerSide
	if side == "" {
		side = t.Side
	}
	if side == "" {
		side = string(model.SideYes)
	}

	price := t.YesPrice
	if price == 0 {
		price = t.Price
	}

	size := t.Count
	if size == 0 {
		size = 1
	}

	return model.OrderFlowEvent{
		Timestamp:    ts,
		MarketTicker: ticker,
		Side:         model.Side(strings.ToLower(side)),
		Action:       model.ActionFill,
		Price:        price,
		Size:         size,
		OrderID:      t.TradeID,
		RawData:      string(raw),
	}, nil
}

// NormalizeBookLevels maps book levels to synthetic events with the given
// side and action. Book levels carry no identifier or venue timestamp, so
// OrderID stays empty and ts (ingestion time, ms) is supplied by the caller.
func NormalizeBookLevels(levels []BookLevel, ticker string, side model.Side, action model.Action, ts int64) []model.OrderFlowEvent {
	events := make([]model.OrderFlowEvent, 0, len(levels))
	for _, l := range levels {
		raw, _ := json.Marshal(l.asRaw())
		events = append(events, model.OrderFlowEvent{
			Timestamp:    ts,
			MarketTicker: ticker,
			Side:         side,
			Action:       action,
			Price:        l.Price,
			Size:         l.Size,
			RawData:      string(raw),
		})
	}
	return events
}

// NormalizeBookUpdate maps a bids/asks-shaped book payload for one side to
// BID and ASK events.
func NormalizeBookUpdate(u BookUpdate, ticker string, side model.Side, ts int64) []model.OrderFlowEvent {
	events := NormalizeBookLevels(u.Bids, ticker, side, model.ActionBid, ts)
	return append(events, NormalizeBookLevels(u.Asks, ticker, side, model.ActionAsk, ts)...)
}

func (l BookLevel) asRaw() [2]float64 {
	return [2]float64{l.Price, float64(l.Size)}
}

// parseTimestampMillis parses an ISO 8601 timestamp to milliseconds since
// epoch. Returns 0 for empty or invalid input.
func parseTimestampMillis(iso string) int64 {
	if iso == "" {
		return 0
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		// Try without timezone
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return 0
		}
	}

	return t.UnixMilli()
}

// TradeEvents fetches and normalizes recent trades for a market.
func (c *Client) TradeEvents(ctx context.Context, ticker string, limit int) ([]model.OrderFlowEvent, error) {
	raws, err := c.Trades(ctx, ticker, limit)
	if err != nil {
		return nil, err
	}

	events := make([]model.OrderFlowEvent, 0, len(raws))
	for _, raw := range raws {
		ev, err := NormalizeTrade(raw, ticker)
		if err != nil {
			c.logger.Warn("skipping undecodable trade", "ticker", ticker, "err", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// BookEvents fetches the order book for a market and normalizes it into
// synthetic bid rows: YES levels as (yes, bid), NO levels as (no, bid).
// The venue book carries two bid arrays; asks are implied by the other side.
func (c *Client) BookEvents(ctx context.Context, ticker string) ([]model.OrderFlowEvent, error) {
	book, err := c.Orderbook(ctx, ticker)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	events := NormalizeBookLevels(book.Yes, ticker, model.SideYes, model.ActionBid, now)
	return append(events, NormalizeBookLevels(book.No, ticker, model.SideNo, model.ActionBid, now)...), nil
}

// MarketSummaries fetches up to limit markets as canonical summaries.
func (c *Client) MarketSummaries(ctx context.Context, limit int) ([]model.MarketSummary, error) {
	markets, err := c.Markets(ctx, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.MarketSummary, 0, len(markets))
	for i := range markets {
		summaries = append(summaries, markets[i].Summary())
	}
	return summaries, nil
}
