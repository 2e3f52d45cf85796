package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultServerPort       = 8080
	DefaultReadTimeout      = 15 * time.Second
	DefaultWriteTimeout     = 15 * time.Second
	DefaultIdleTimeout      = 60 * time.Second
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultStoreDriver      = StoreMemory
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "disable"
	DefaultMaxConns         = 20
	DefaultMinConns         = 2
	DefaultConnectAttempts  = 5
	DefaultCurrencyDecimals = 9
	DefaultTransferDriver   = TransferLedger
	DefaultTransferTimeout  = 30 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

// Default returns a configuration with every default applied and the
// purchase gate enabled, suitable for local development.
func Default() *Config {
	cfg := &Config{Market: MarketConfig{Suspend: SuspendConfig{Purchases: true}}}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = DefaultIdleTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if c.Store.Driver == "" {
		c.Store.Driver = DefaultStoreDriver
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
	if c.Database.ConnectAttempts == 0 {
		c.Database.ConnectAttempts = DefaultConnectAttempts
	}

	if c.Market.CurrencyDecimals == nil {
		d := int32(DefaultCurrencyDecimals)
		c.Market.CurrencyDecimals = &d
	}

	// Transfer defaults
	if c.Transfer.Driver == "" {
		c.Transfer.Driver = DefaultTransferDriver
	}
	if c.Transfer.Timeout == 0 {
		c.Transfer.Timeout = DefaultTransferTimeout
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
