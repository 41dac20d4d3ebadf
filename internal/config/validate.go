package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	if c.API.RestURL == "" {
		return errors.New("api.rest_url is required")
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must be >= 0")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Monitor.Interval <= 0 {
		return errors.New("monitor.interval must be > 0")
	}
	if c.Monitor.PollTimeout <= 0 {
		return errors.New("monitor.poll_timeout must be > 0")
	}
	if c.Monitor.Concurrency < 1 {
		return errors.New("monitor.concurrency must be >= 1")
	}
	if c.Monitor.TradeLimit < 1 {
		return errors.New("monitor.trade_limit must be >= 1")
	}
	if c.Monitor.DedupWindow < 1 {
		return errors.New("monitor.dedup_window must be >= 1")
	}
	if c.Monitor.SeedLimit < 1 {
		return errors.New("monitor.seed_limit must be >= 1")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
