package venue

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// connectMaxElapsed bounds the total time spent probing at startup.
const connectMaxElapsed = 30 * time.Second

// Connect attempts the authenticated handshake and records the resulting
// connectivity state. A failed or missing credential never fails hard: the
// client falls back to the degraded public-data-only state so read-only
// polling keeps working.
func (c *Client) Connect(ctx context.Context) ConnectionState {
	policy := backoff.WithContext(
		backoff.NewExponentialBackOff(backoff.WithMaxElapsedTime(connectMaxElapsed)), ctx)

	if c.signer != nil {
		err := backoff.Retry(func() error {
			_, err := c.Balance(ctx)
			var apiErr *APIError
			if errors.As(err, &apiErr) && !apiErr.IsRetryable() {
				// Rejected credentials will not heal on retry.
				return backoff.Permanent(err)
			}
			return err
		}, policy)
		if err == nil {
			c.setState(StateConnected)
			c.logger.Info("connected to venue", "state", StateConnected)
			return StateConnected
		}
		c.logger.Warn("authenticated handshake failed, falling back to public data", "err", err)
	} else {
		c.logger.Info("no credentials configured, using public data only")
	}

	// Probe a public endpoint so degraded mode is reported accurately; even
	// if it fails, the poll cycle retries on its own schedule.
	if _, err := c.ExchangeStatus(ctx); err != nil {
		c.logger.Warn("exchange status probe failed", "err", err)
	}

	c.setState(StateDegraded)
	return StateDegraded
}
