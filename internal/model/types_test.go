package model

import (
	"encoding/json"
	"testing"
)

func TestSideValid(t *testing.T) {
	tests := []struct {
		side Side
		want bool
	}{
		{SideYes, true},
		{SideNo, true},
		{Side(""), false},
		{Side("YES"), false},
		{Side("maybe"), false},
	}

	for _, tt := range tests {
		if got := tt.side.Valid(); got != tt.want {
			t.Errorf("Side(%q).Valid() = %v, want %v", tt.side, got, tt.want)
		}
	}
}

func TestActionValid(t *testing.T) {
	tests := []struct {
		action Action
		want   bool
	}{
		{ActionBid, true},
		{ActionAsk, true},
		{ActionFill, true},
		{Action(""), false},
		{Action("FILL"), false},
		{Action("trade"), false},
	}

	for _, tt := range tests {
		if got := tt.action.Valid(); got != tt.want {
			t.Errorf("Action(%q).Valid() = %v, want %v", tt.action, got, tt.want)
		}
	}
}

func TestOrderFlowEventJSON(t *testing.T) {
	ev := OrderFlowEvent{
		ID:           42,
		Timestamp:    1705321845000,
		MarketTicker: "PRES-2024-DEM",
		Side:         SideYes,
		Action:       ActionFill,
		Price:        52,
		Size:         10,
		OrderID:      "trade-abc-123",
	}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got["side"] != "yes" {
		t.Errorf("side = %v, want yes", got["side"])
	}
	if got["action"] != "fill" {
		t.Errorf("action = %v, want fill", got["action"])
	}
	if got["market_ticker"] != "PRES-2024-DEM" {
		t.Errorf("market_ticker = %v, want PRES-2024-DEM", got["market_ticker"])
	}
	if got["order_id"] != "trade-abc-123" {
		t.Errorf("order_id = %v, want trade-abc-123", got["order_id"])
	}
	if _, present := got["raw_data"]; present {
		t.Error("raw_data should be omitted when empty")
	}
}

func TestOrderFlowEventJSON_SnapshotRow(t *testing.T) {
	// Synthetic book rows have no order ID; it must not appear on the wire.
	ev := OrderFlowEvent{
		Timestamp:    1705321845000,
		MarketTicker: "PRES-2024-DEM",
		Side:         SideNo,
		Action:       ActionBid,
		Price:        48,
		Size:         150,
	}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if _, present := got["order_id"]; present {
		t.Error("order_id should be omitted for snapshot rows")
	}
	if _, present := got["id"]; present {
		t.Error("id should be omitted before persistence")
	}
}
