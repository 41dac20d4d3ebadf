// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Events ingested by action, duplicates and invalid events dropped
//   - Poll cycle counts, durations, and per-market errors
//   - Broadcast subscriber count and publish drops
//   - Venue connectivity state
package metrics
