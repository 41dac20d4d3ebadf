package venue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/kalshi-orderflow/internal/model"
)

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://api.example.com")

		if c.baseURL != "https://api.example.com" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "https://api.example.com")
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 30*time.Second)
		}
		if c.maxRetries != 3 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 3)
		}
		if c.State() != StateDisconnected {
			t.Errorf("State() = %q, want disconnected", c.State())
		}
	})

	t.Run("with options", func(t *testing.T) {
		c := NewClient("https://api.example.com",
			WithTimeout(5*time.Second),
			WithRetries(5, 2*time.Second),
		)
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
		if c.maxRetries != 5 || c.retryBackoff != 2*time.Second {
			t.Errorf("retries = (%d, %v), want (5, 2s)", c.maxRetries, c.retryBackoff)
		}
	})
}

func TestClient_Markets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("path = %q, want /markets", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "20" {
			t.Errorf("limit = %q, want 20", r.URL.Query().Get("limit"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"markets": []map[string]any{
				{"ticker": "MARKET-1", "title": "Market one", "status": "active", "yes_bid": 52},
				{"ticker": "MARKET-2", "title": "Market two", "status": "active", "yes_bid": 30},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL)

	markets, err := c.Markets(context.Background(), 20)
	if err != nil {
		t.Fatalf("Markets() error = %v", err)
	}
	if len(markets) != 2 {
		t.Fatalf("got %d markets, want 2", len(markets))
	}
	if markets[0].Ticker != "MARKET-1" || markets[0].YesBid != 52 {
		t.Errorf("markets[0] = %+v", markets[0])
	}
}

func TestClient_TradeEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/trades" {
			t.Errorf("path = %q, want /markets/trades", r.URL.Path)
		}
		if r.URL.Query().Get("ticker") != "MARKET-1" {
			t.Errorf("ticker = %q, want MARKET-1", r.URL.Query().Get("ticker"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"trades": []map[string]any{
				{"trade_id": "t-1", "taker_side": "yes", "yes_price": 52, "count": 5, "created_time": "2024-01-15T12:00:00Z"},
				{"trade_id": "t-2", "taker_side": "no", "yes_price": 48, "count": 3, "created_time": "2024-01-15T12:00:01Z"},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL)

	events, err := c.TradeEvents(context.Background(), "MARKET-1", 10)
	if err != nil {
		t.Fatalf("TradeEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].OrderID != "t-1" || events[0].Action != model.ActionFill {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[1].Side != model.SideNo {
		t.Errorf("events[1].Side = %q, want no", events[1].Side)
	}
}

func TestClient_BookEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"orderbook": map[string]any{
				"yes": [][]int{{52, 100}, {51, 200}},
				"no":  [][]int{{48, 150}},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL)

	events, err := c.BookEvents(context.Background(), "MARKET-1")
	if err != nil {
		t.Fatalf("BookEvents() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	var yes, no int
	for _, ev := range events {
		if ev.Action != model.ActionBid {
			t.Errorf("Action = %q, want bid", ev.Action)
		}
		if ev.OrderID != "" {
			t.Errorf("OrderID = %q, want empty for book rows", ev.OrderID)
		}
		switch ev.Side {
		case model.SideYes:
			yes++
		case model.SideNo:
			no++
		}
	}
	if yes != 2 || no != 1 {
		t.Errorf("side split = (%d yes, %d no), want (2, 1)", yes, no)
	}
}

func TestClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL)

	_, err := c.Trades(context.Background(), "MISSING", 10)
	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("Trades() error = %v, want UpstreamError", err)
	}
	if uerr.Ticker != "MISSING" {
		t.Errorf("UpstreamError.Ticker = %q, want MISSING", uerr.Ticker)
	}

	var aerr *APIError
	if !errors.As(err, &aerr) {
		t.Fatalf("UpstreamError should wrap APIError, got %v", err)
	}
	if aerr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", aerr.StatusCode)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"markets": []any{}})
	}))
	defer server.Close()

	c := NewClient(server.URL, WithRetries(3, 10*time.Millisecond))

	if _, err := c.Markets(context.Background(), 10); err != nil {
		t.Fatalf("Markets() error = %v, want success after retries", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(server.URL, WithRetries(3, 10*time.Millisecond))

	if _, err := c.Markets(context.Background(), 10); err == nil {
		t.Fatal("Markets() error = nil, want error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1 (4xx is not retryable)", got)
	}
}

func TestClient_Connect_DegradedWithoutCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"exchange_active": true, "trading_active": true})
	}))
	defer server.Close()

	c := NewClient(server.URL)

	if state := c.Connect(context.Background()); state != StateDegraded {
		t.Errorf("Connect() = %q, want degraded without credentials", state)
	}
	if c.State() != StateDegraded {
		t.Errorf("State() = %q, want degraded", c.State())
	}
}

func TestClient_Connect_DegradedOnUnreachableVenue(t *testing.T) {
	// Degraded is a state, not a failure: the system keeps polling and the
	// cycle interval is the retry mechanism.
	c := NewClient("http://127.0.0.1:1", WithTimeout(100*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if state := c.Connect(ctx); state != StateDegraded {
		t.Errorf("Connect() = %q, want degraded", state)
	}
}
