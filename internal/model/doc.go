// Package model defines the canonical data types shared across the order-flow engine.
//
// Conventions:
//   - Timestamps: int64 milliseconds since Unix epoch
//   - Prices: venue-native units (Kalshi cents), not normalized to currency
//   - Sides and actions: lowercase wire strings ("yes"/"no", "bid"/"ask"/"fill")
package model
