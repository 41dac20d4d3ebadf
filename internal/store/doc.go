// Package store implements the durable event store for order-flow events.
//
// The store is append-only: events are immutable once persisted, and the only
// operations are inserts and recency/time-range reads. Inserts are validated
// at the boundary (side, action, size) and assigned a monotonic surrogate id.
// Reads issued after a successful insert observe that insert; the monitor's
// deduplication check depends on this.
package store
