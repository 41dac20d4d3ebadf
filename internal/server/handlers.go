package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/rickgao/kalshi-orderflow/internal/store"
	"github.com/rickgao/kalshi-orderflow/internal/venue"
)

const (
	defaultFlowLimit   = 100
	defaultMarketLimit = 50
	defaultStatsWindow = 60 // minutes
	defaultTradeLimit  = 20
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var verr *store.ValidationError
	var rerr *store.InvalidRangeError
	var uerr *venue.UpstreamError
	switch {
	case errors.As(err, &verr), errors.As(err, &rerr):
		status = http.StatusBadRequest
	case errors.As(err, &uerr):
		status = http.StatusBadGateway
	case errors.Is(err, store.ErrClosed):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.venue.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"timestamp":         time.Now().UnixMilli(),
		"venue_connected":   state == venue.StateConnected,
		"venue_state":       state,
		"monitored_markets": len(s.watcher.ListMonitored()),
	})
}

func (s *Server) handleOrderFlows(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultFlowLimit)
	if err != nil {
		badRequest(w, "limit must be an integer")
		return
	}

	events, err := s.events.Recent(r.Context(), limit, r.URL.Query().Get("market"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleOrderFlowRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("startTime") == "" || q.Get("endTime") == "" {
		badRequest(w, "startTime and endTime are required")
		return
	}

	start, err := strconv.ParseInt(q.Get("startTime"), 10, 64)
	if err != nil {
		badRequest(w, "startTime must be epoch milliseconds")
		return
	}
	end, err := strconv.ParseInt(q.Get("endTime"), 10, 64)
	if err != nil {
		badRequest(w, "endTime must be epoch milliseconds")
		return
	}

	events, err := s.events.Range(r.Context(), start, end, q.Get("market"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultMarketLimit)
	if err != nil {
		badRequest(w, "limit must be an integer")
		return
	}

	markets, err := s.venue.MarketSummaries(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, markets)
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	market, err := s.venue.Market(r.Context(), ticker)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, market.Summary())
}

func (s *Server) handleMarketStats(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	window, err := queryInt(r, "timeRange", defaultStatsWindow)
	if err != nil || window <= 0 {
		badRequest(w, "timeRange must be a positive number of minutes")
		return
	}

	stats, err := s.events.Stats(r.Context(), ticker, window)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"market_ticker":      ticker,
		"time_range_minutes": window,
		"stats":              stats,
	})
}

func (s *Server) handleMarketOrderbook(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	book, err := s.venue.Orderbook(r.Context(), ticker)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleMarketTrades(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	limit, err := queryInt(r, "limit", defaultTradeLimit)
	if err != nil {
		badRequest(w, "limit must be an integer")
		return
	}

	trades, err := s.venue.TradeEvents(r.Context(), ticker, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleListMonitored(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"markets": s.watcher.ListMonitored(),
	})
}

func (s *Server) handleAddMarket(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Ticker string `json:"ticker"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Ticker == "" {
		badRequest(w, "body must be a JSON object with a non-empty ticker")
		return
	}

	added := s.watcher.AddMarket(body.Ticker)
	writeJSON(w, http.StatusOK, map[string]any{
		"ticker": body.Ticker,
		"added":  added,
	})
}

func (s *Server) handleRemoveMarket(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	removed := s.watcher.RemoveMarket(ticker)
	if !removed {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "market is not monitored"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ticker":  ticker,
		"removed": true,
	})
}
