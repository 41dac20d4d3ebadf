// Package venue wraps the Kalshi trading API behind the canonical event shape.
//
// The client isolates all upstream-specific payload shapes: trades and
// order-book levels are normalized into model.OrderFlowEvent with explicit
// field-name fallback orders for variants across API versions. Requests are
// signed with RSA-PSS when credentials are configured; without valid
// credentials the client runs in a degraded public-data-only state.
//
// REST endpoints:
//   - Production: https://api.elections.kalshi.com/trade-api/v2
//   - Demo: https://demo-api.kalshi.co/trade-api/v2
package venue
