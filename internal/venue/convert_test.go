package venue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rickgao/kalshi-orderflow/internal/model"
)

func TestNormalizeTrade(t *testing.T) {
	raw := json.RawMessage(`{
		"trade_id": "a1b2c3-d4",
		"ticker": "PRES-2024-DEM",
		"created_time": "2024-01-15T12:00:00Z",
		"taker_side": "NO",
		"yes_price": 52,
		"count": 10
	}`)

	ev, err := NormalizeTrade(raw, "PRES-2024-DEM")
	if err != nil {
		t.Fatalf("NormalizeTrade() error = %v", err)
	}

	want := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC).UnixMilli()
	if ev.Timestamp != want {
		t.Errorf("Timestamp = %d, want %d", ev.Timestamp, want)
	}
	if ev.Action != model.ActionFill {
		t.Errorf("Action = %q, want fill", ev.Action)
	}
	if ev.Side != model.SideNo {
		t.Errorf("Side = %q, want no (lower-cased taker_side)", ev.Side)
	}
	if ev.Price != 52 {
		t.Errorf("Price = %v, want 52", ev.Price)
	}
	if ev.Size != 10 {
		t.Errorf("Size = %d, want 10", ev.Size)
	}
	if ev.OrderID != "a1b2c3-d4" {
		t.Errorf("OrderID = %q, want a1b2c3-d4", ev.OrderID)
	}
	if ev.RawData != string(raw) {
		t.Error("RawData should retain the original payload")
	}
}

func TestNormalizeTrade_FieldFallbacks(t *testing.T) {
	// Older API versions use ts / side / price instead of
	// created_time / taker_side / yes_price.
	raw := json.RawMessage(`{
		"trade_id": "legacy-1",
		"ts": 1705320000000,
		"side": "Yes",
		"price": 48
	}`)

	ev, err := NormalizeTrade(raw, "X")
	if err != nil {
		t.Fatalf("NormalizeTrade() error = %v", err)
	}

	if ev.Timestamp != 1705320000000 {
		t.Errorf("Timestamp = %d, want 1705320000000", ev.Timestamp)
	}
	if ev.Side != model.SideYes {
		t.Errorf("Side = %q, want yes", ev.Side)
	}
	if ev.Price != 48 {
		t.Errorf("Price = %v, want 48 (price fallback)", ev.Price)
	}
	if ev.Size != 1 {
		t.Errorf("Size = %d, want 1 (count fallback)", ev.Size)
	}
}

func TestNormalizeTrade_Defaults(t *testing.T) {
	before := time.Now().UnixMilli()
	ev, err := NormalizeTrade(json.RawMessage(`{"trade_id": "t-1"}`), "X")
	if err != nil {
		t.Fatalf("NormalizeTrade() error = %v", err)
	}
	after := time.Now().UnixMilli()

	if ev.Timestamp < before || ev.Timestamp > after {
		t.Errorf("Timestamp = %d, want ingestion time in [%d, %d]", ev.Timestamp, before, after)
	}
	if ev.Side != model.SideYes {
		t.Errorf("Side = %q, want yes default", ev.Side)
	}
	if ev.Price != 0 {
		t.Errorf("Price = %v, want 0 default", ev.Price)
	}
	if ev.Size != 1 {
		t.Errorf("Size = %d, want 1 default", ev.Size)
	}
}

func TestNormalizeTrade_MissingID(t *testing.T) {
	// Absent trade ID yields an empty OrderID; the monitor never persists
	// such events.
	ev, err := NormalizeTrade(json.RawMessage(`{"count": 3}`), "X")
	if err != nil {
		t.Fatalf("NormalizeTrade() error = %v", err)
	}
	if ev.OrderID != "" {
		t.Errorf("OrderID = %q, want empty", ev.OrderID)
	}
}

func TestBookLevelUnmarshal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantPrice float64
		wantSize  int64
		wantErr   bool
	}{
		{"positional pair", `[52, 100]`, 52, 100, false},
		{"named price and count", `{"price": 48, "count": 150}`, 48, 150, false},
		{"named price and quantity", `{"price": 47, "quantity": 75}`, 47, 75, false},
		{"count wins over quantity", `{"price": 45, "count": 10, "quantity": 99}`, 45, 10, false},
		{"short pair", `[52]`, 0, 0, true},
		{"garbage", `"nope"`, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l BookLevel
			err := json.Unmarshal([]byte(tt.input), &l)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Unmarshal() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if l.Price != tt.wantPrice || l.Size != tt.wantSize {
				t.Errorf("level = {%v, %d}, want {%v, %d}", l.Price, l.Size, tt.wantPrice, tt.wantSize)
			}
		})
	}
}

func TestNormalizeBookLevels(t *testing.T) {
	levels := []BookLevel{{Price: 52, Size: 100}, {Price: 51, Size: 200}}

	events := NormalizeBookLevels(levels, "X", model.SideYes, model.ActionBid, 1705320000000)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	for i, ev := range events {
		if ev.Side != model.SideYes || ev.Action != model.ActionBid {
			t.Errorf("event %d = (%s, %s), want (yes, bid)", i, ev.Side, ev.Action)
		}
		if ev.OrderID != "" {
			t.Errorf("event %d OrderID = %q, want empty for book rows", i, ev.OrderID)
		}
		if ev.Timestamp != 1705320000000 {
			t.Errorf("event %d Timestamp = %d, want caller-supplied ts", i, ev.Timestamp)
		}
	}
	if events[0].Price != 52 || events[0].Size != 100 {
		t.Errorf("event 0 = {%v, %d}, want {52, 100}", events[0].Price, events[0].Size)
	}
}

func TestNormalizeBookUpdate(t *testing.T) {
	u := BookUpdate{
		Bids: []BookLevel{{Price: 52, Size: 100}},
		Asks: []BookLevel{{Price: 55, Size: 40}, {Price: 56, Size: 10}},
	}

	events := NormalizeBookUpdate(u, "X", model.SideNo, 1705320000000)

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Action != model.ActionBid {
		t.Errorf("events[0].Action = %q, want bid", events[0].Action)
	}
	if events[1].Action != model.ActionAsk || events[2].Action != model.ActionAsk {
		t.Error("ask levels should map to ask events")
	}
	for _, ev := range events {
		if ev.Side != model.SideNo {
			t.Errorf("Side = %q, want no", ev.Side)
		}
	}
}

func TestParseTimestampMillis(t *testing.T) {
	if got := parseTimestampMillis(""); got != 0 {
		t.Errorf("parseTimestampMillis(\"\") = %d, want 0", got)
	}
	if got := parseTimestampMillis("invalid"); got != 0 {
		t.Errorf("parseTimestampMillis(invalid) = %d, want 0", got)
	}

	want := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC).UnixMilli()
	if got := parseTimestampMillis("2024-01-15T12:00:00Z"); got != want {
		t.Errorf("parseTimestampMillis(RFC3339) = %d, want %d", got, want)
	}
	if got := parseTimestampMillis("2024-01-15T12:00:00"); got != want {
		t.Errorf("parseTimestampMillis(no tz) = %d, want %d", got, want)
	}
}
