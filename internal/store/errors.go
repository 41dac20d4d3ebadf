package store

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by all operations issued after Close.
var ErrClosed = errors.New("store is closed")

// ValidationError reports an event or query argument rejected at the store
// boundary. Offending data is never persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidRangeError reports a time-range query with start after end.
type InvalidRangeError struct {
	Start int64
	End   int64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid time range: start %d > end %d", e.Start, e.End)
}
