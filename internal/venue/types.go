package venue

import (
	"encoding/json"
	"fmt"

	"github.com/rickgao/kalshi-orderflow/internal/model"
)

// ExchangeStatusResponse from GET /exchange/status
type ExchangeStatusResponse struct {
	ExchangeActive bool `json:"exchange_active"`
	TradingActive  bool `json:"trading_active"`
}

// BalanceResponse from GET /portfolio/balance (credentialed)
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// MarketsResponse from GET /markets
type MarketsResponse struct {
	Markets []APIMarket `json:"markets"`
	Cursor  string      `json:"cursor"`
}

// APIMarket represents a market from the Kalshi API.
type APIMarket struct {
	Ticker     string `json:"ticker"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Status     string `json:"status"`
	MarketType string `json:"market_type"`

	// Prices in cents
	YesBid    int `json:"yes_bid"`
	YesAsk    int `json:"yes_ask"`
	LastPrice int `json:"last_price"`

	Volume    int64 `json:"volume"`
	Volume24h int64 `json:"volume_24h"`
}

// Summary converts an APIMarket to the canonical market summary.
func (m *APIMarket) Summary() model.MarketSummary {
	return model.MarketSummary{
		Ticker:    m.Ticker,
		Title:     m.Title,
		Status:    m.Status,
		YesBid:    m.YesBid,
		YesAsk:    m.YesAsk,
		LastPrice: m.LastPrice,
		Volume24h: m.Volume24h,
	}
}

// SingleMarketResponse from GET /markets/{ticker}
type SingleMarketResponse struct {
	Market APIMarket `json:"market"`
}

// TradesResponse from GET /markets/trades. Trade records are kept raw so the
// original payload can be retained on the normalized event for audit.
type TradesResponse struct {
	Trades []json.RawMessage `json:"trades"`
	Cursor string            `json:"cursor"`
}

// APITrade represents a trade record from the Kalshi API. Field names vary
// across API versions; NormalizeTrade documents the fallback order.
type APITrade struct {
	TradeID     string  `json:"trade_id"`
	Ticker      string  `json:"ticker"`
	CreatedTime string  `json:"created_time"` // ISO 8601
	Ts          int64   `json:"ts"`           // ms since epoch (older versions)
	TakerSide   string  `json:"taker_side"`
	Side        string  `json:"side"` // older versions
	YesPrice    float64 `json:"yes_price"`
	Price       float64 `json:"price"` // older versions
	Count       int64   `json:"count"`
}

// OrderbookResponse from GET /markets/{ticker}/orderbook
type OrderbookResponse struct {
	Orderbook APIOrderbook `json:"orderbook"`
}

// APIOrderbook is the Kalshi order book: two arrays of resting bids, one per
// side. Asks are implied (a NO bid at p is a YES ask at 100-p).
type APIOrderbook struct {
	Yes []BookLevel `json:"yes"`
	No  []BookLevel `json:"no"`
}

// BookUpdate is the bids/asks-shaped book payload used by delta streams and
// older API versions.
type BookUpdate struct {
	Bids []BookLevel `json:"bids"`
	Asks []BookLevel `json:"asks"`
}

// BookLevel is one price/size pair. The venue represents levels either as a
// positional [price, size] pair or as an object with named fields; decoding
// tries, in order: positional pair, then price with count, then quantity.
type BookLevel struct {
	Price float64
	Size  int64
}

func (l *BookLevel) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) < 2 {
			return fmt.Errorf("book level pair has %d elements, want 2", len(pair))
		}
		l.Price = pair[0]
		l.Size = int64(pair[1])
		return nil
	}

	var named struct {
		Price    *float64 `json:"price"`
		Count    *int64   `json:"count"`
		Quantity *int64   `json:"quantity"`
	}
	if err := json.Unmarshal(data, &named); err != nil {
		return fmt.Errorf("decode book level: %w", err)
	}

	if named.Price != nil {
		l.Price = *named.Price
	}
	switch {
	case named.Count != nil:
		l.Size = *named.Count
	case named.Quantity != nil:
		l.Size = *named.Quantity
	}
	return nil
}
