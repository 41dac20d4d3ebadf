package config

import "time"

// Config is the root configuration for the order-flow engine.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	API      APIConfig     `yaml:"api"`
	Database DBConfig      `yaml:"database"`
	Monitor  MonitorConfig `yaml:"monitor"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds HTTP/WebSocket transport settings.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// APIConfig holds Kalshi API settings.
type APIConfig struct {
	RestURL        string        `yaml:"rest_url"`
	APIKey         string        `yaml:"api_key"`          // API key ID (for KALSHI-ACCESS-KEY header)
	PrivateKeyPath string        `yaml:"private_key_path"` // Path to RSA private key PEM file
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
}

// DBConfig holds the PostgreSQL connection for the event store.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// MonitorConfig holds poll-cycle settings.
type MonitorConfig struct {
	Interval    time.Duration `yaml:"interval"`     // Poll cycle interval
	PollTimeout time.Duration `yaml:"poll_timeout"` // Per-request timeout for upstream calls
	Concurrency int           `yaml:"concurrency"`  // Max concurrent market polls per cycle
	TradeLimit  int           `yaml:"trade_limit"`  // Trades fetched per market per cycle
	DedupWindow int           `yaml:"dedup_window"` // Recent stored events scanned for duplicates
	SeedLimit   int           `yaml:"seed_limit"`   // Markets discovered when none configured
	Markets     []string      `yaml:"markets"`      // Initial watched set (optional)
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Path string `yaml:"path"`
}
