package config

import "time"

// Config is the root configuration for a marketplace server.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Database DBConfig       `yaml:"database"`
	Market   MarketConfig   `yaml:"market"`
	Transfer TransferConfig `yaml:"transfer"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`
}

// DBConfig holds a PostgreSQL connection.
type DBConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Name            string `yaml:"name"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"ssl_mode"`
	MaxConns        int    `yaml:"max_conns"`
	MinConns        int    `yaml:"min_conns"`
	ConnectAttempts int    `yaml:"connect_attempts"`
}

// MarketConfig holds the marketplace rules.
type MarketConfig struct {
	// Owner is fixed the first time the store is bootstrapped.
	Owner string `yaml:"owner"`
	// CurrencyDecimals is nil when unset so that an explicit 0 survives
	// defaulting.
	CurrencyDecimals *int32        `yaml:"currency_decimals"`
	Suspend          SuspendConfig `yaml:"suspend"`
}

// Decimals returns the configured currency precision, or
// DefaultCurrencyDecimals when unset.
func (m MarketConfig) Decimals() int32 {
	if m.CurrencyDecimals == nil {
		return DefaultCurrencyDecimals
	}
	return *m.CurrencyDecimals
}

// SuspendConfig lists which operation groups are frozen while the market is
// suspended. Club-owner role grants are always frozen.
type SuspendConfig struct {
	Purchases bool `yaml:"purchases"`
	Inventory bool `yaml:"inventory"`
	Clubs     bool `yaml:"clubs"`
}

// Transfer drivers.
const (
	TransferLedger = "ledger"
	TransferHTTP   = "http"
)

// TransferConfig configures the outbound value-transfer primitive.
type TransferConfig struct {
	Driver  string        `yaml:"driver"`
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
