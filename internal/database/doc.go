// Package database provides PostgreSQL connection pool management for the
// event store.
//
// A single pool backs the append-only order_flows table; the store layer
// (internal/store) owns schema bootstrap and all queries.
package database
