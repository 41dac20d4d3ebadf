package model

// Side is the binary outcome an order or trade concerns.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Valid reports whether s is a recognized side.
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// Action is the kind of order-flow event.
type Action string

const (
	ActionBid  Action = "bid"
	ActionAsk  Action = "ask"
	ActionFill Action = "fill"
)

// Valid reports whether a is a recognized action.
func (a Action) Valid() bool {
	return a == ActionBid || a == ActionAsk || a == ActionFill
}

// OrderFlowEvent is the canonical unit of order flow.
//
// FILL events derive from executed trades and carry the venue trade ID in
// OrderID; it is the deduplication key and is preserved byte-for-byte.
// BID/ASK events are synthetic rows derived from order-book snapshots and
// have no OrderID.
type OrderFlowEvent struct {
	ID           int64   `json:"id,omitempty"` // Store-assigned surrogate key; 0 until persisted
	Timestamp    int64   `json:"timestamp"`    // Event time (ms since epoch)
	MarketTicker string  `json:"market_ticker"`
	Side         Side    `json:"side"`
	Action       Action  `json:"action"`
	Price        float64 `json:"price"` // Venue-native units (cents)
	Size         int64   `json:"size"`  // Contract count, >= 0
	OrderID      string  `json:"order_id,omitempty"`
	RawData      string  `json:"raw_data,omitempty"` // Original payload, retained for audit
}

// MarketSummary is a slim view of a tradeable market, used for discovery
// and catalog passthrough.
type MarketSummary struct {
	Ticker    string `json:"ticker"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	YesBid    int    `json:"yes_bid"`    // Cents
	YesAsk    int    `json:"yes_ask"`    // Cents
	LastPrice int    `json:"last_price"` // Cents
	Volume24h int64  `json:"volume_24h"`
}

// ActionStats is one (action, side) group of rolling aggregate statistics
// over a market's order flow.
type ActionStats struct {
	Action    Action  `json:"action"`
	Side      Side    `json:"side"`
	Count     int64   `json:"count"`
	TotalSize int64   `json:"total_size"`
	AvgPrice  float64 `json:"avg_price"`
	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
}
