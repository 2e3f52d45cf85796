package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Market.Owner) == "" {
		return errors.New("market.owner is required")
	}
	if d := c.Market.Decimals(); d < 0 || d > 18 {
		return fmt.Errorf("market.currency_decimals must be between 0 and 18, got %d", d)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StorePostgres:
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", StoreMemory, StorePostgres, c.Store.Driver)
	}

	switch c.Transfer.Driver {
	case TransferLedger:
	case TransferHTTP:
		if c.Transfer.URL == "" {
			return errors.New("transfer.url is required")
		}
		if u, err := url.Parse(c.Transfer.URL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("transfer.url %q is not an absolute URL", c.Transfer.URL)
		}
	default:
		return fmt.Errorf("transfer.driver must be %q or %q, got %q", TransferLedger, TransferHTTP, c.Transfer.Driver)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
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
	if db.ConnectAttempts < 1 {
		return fmt.Errorf("%s.connect_attempts must be >= 1", prefix)
	}
	return nil
}

// ValidateDatabase checks only the database section, for commands that
// touch the schema without serving the market.
func (c *Config) ValidateDatabase() error {
	return c.Database.validate("database")
}
