package venue

import (
	"fmt"
	"net/http"
)

// APIError represents a non-2xx response from the Kalshi API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kalshi api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// UpstreamError reports a failed or timed-out venue call. It is per-market
// and non-fatal: the caller decides retry policy (the poll cycle itself is
// the retry mechanism).
type UpstreamError struct {
	Op     string // e.g. "list trades"
	Ticker string // empty for market-independent calls
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Ticker != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Ticker, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstreamErr(op, ticker string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Ticker: ticker, Err: err}
}
