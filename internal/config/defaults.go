package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultServerAddr   = ":3001"
	DefaultRestURL      = "https://api.elections.kalshi.com/trade-api/v2"
	DefaultAPITimeout   = 30 * time.Second
	DefaultMaxRetries   = 3
	DefaultDBPort       = 5432
	DefaultDBSSLMode    = "prefer"
	DefaultMaxConns     = 10
	DefaultMinConns     = 2
	DefaultPollInterval = 5 * time.Second
	DefaultPollTimeout  = 10 * time.Second
	DefaultConcurrency  = 8
	DefaultTradeLimit   = 10
	DefaultDedupWindow  = 1000
	DefaultSeedLimit    = 20
	DefaultMetricsPath  = "/metrics"
)

// DefaultCORSOrigin matches the local dashboard dev server.
const DefaultCORSOrigin = "http://localhost:5173"

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{DefaultCORSOrigin}
	}

	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Monitor defaults
	if c.Monitor.Interval == 0 {
		c.Monitor.Interval = DefaultPollInterval
	}
	if c.Monitor.PollTimeout == 0 {
		c.Monitor.PollTimeout = DefaultPollTimeout
	}
	if c.Monitor.Concurrency == 0 {
		c.Monitor.Concurrency = DefaultConcurrency
	}
	if c.Monitor.TradeLimit == 0 {
		c.Monitor.TradeLimit = DefaultTradeLimit
	}
	if c.Monitor.DedupWindow == 0 {
		c.Monitor.DedupWindow = DefaultDedupWindow
	}
	if c.Monitor.SeedLimit == 0 {
		c.Monitor.SeedLimit = DefaultSeedLimit
	}

	// Metrics defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
