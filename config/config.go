// Package config loads and validates the TOML configuration of a
// palletberry node.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/blockberries/palletberry/types"
)

// Config is the main configuration for a palletberry node.
type Config struct {
	Chain   ChainConfig   `toml:"chain"`
	Genesis GenesisConfig `toml:"genesis"`
	Server  ServerConfig  `toml:"server"`
	Metrics MetricsConfig `toml:"metrics"`
	Logging LoggingConfig `toml:"logging"`
}

// ChainConfig identifies the chain.
type ChainConfig struct {
	// ChainID is the unique identifier of the chain.
	ChainID string `toml:"chain_id"`
}

// GenesisConfig holds the initial runtime state.
type GenesisConfig struct {
	Balances []GenesisBalance `toml:"balances"`
}

// GenesisBalance is one initial balance assignment.
type GenesisBalance struct {
	Account string `toml:"account"`
	Amount  uint64 `toml:"amount"`
}

// ServerConfig contains gRPC server configuration.
type ServerConfig struct {
	// ListenAddr is the address to serve gRPC on (e.g., "127.0.0.1:26658").
	ListenAddr string `toml:"listen_addr"`

	// ShutdownTimeout bounds graceful shutdown before connections are
	// cut.
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Enabled determines whether metrics collection is active.
	Enabled bool `toml:"enabled"`

	// Namespace is the Prometheus metrics namespace prefix.
	Namespace string `toml:"namespace"`

	// ListenAddr is the address to serve metrics on (e.g., ":9090").
	ListenAddr string `toml:"listen_addr"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `toml:"level"`

	// Format is the log output format ("text" or "json").
	Format string `toml:"format"`

	// Output is the log output destination ("stdout", "stderr", or a file path).
	Output string `toml:"output"`
}

// Duration is a wrapper around time.Duration for TOML unmarshaling.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns a Config with sensible default values. The
// default genesis funds alice with 100.
func DefaultConfig() *Config {
	return &Config{
		Chain: ChainConfig{
			ChainID: "palletberry-devnet-1",
		},
		Genesis: GenesisConfig{
			Balances: []GenesisBalance{{Account: "alice", Amount: 100}},
		},
		Server: ServerConfig{
			ListenAddr:      "127.0.0.1:26658",
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			Namespace:  "palletberry",
			ListenAddr: ":9090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// LoadConfig loads configuration from a TOML file.
// Missing values are filled with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Explicit genesis balances replace the default ones.
	cfg.Genesis.Balances = nil
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if !md.IsDefined("genesis", "balances") {
		cfg.Genesis = DefaultConfig().Genesis
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validation errors.
var (
	ErrEmptyChainID            = errors.New("chain_id cannot be empty")
	ErrEmptyGenesisAccount     = errors.New("genesis balance account cannot be empty")
	ErrDuplicateGenesisAccount = errors.New("genesis balance account listed twice")
	ErrEmptyListenAddr         = errors.New("server listen_addr cannot be empty")
	ErrInvalidShutdownTimeout  = errors.New("server shutdown_timeout must be positive")
	ErrEmptyMetricsNamespace   = errors.New("metrics namespace cannot be empty when enabled")
	ErrEmptyMetricsListenAddr  = errors.New("metrics listen_addr cannot be empty when enabled")
	ErrInvalidLogLevel         = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat        = errors.New("log format must be 'text' or 'json'")
	ErrEmptyLogOutput          = errors.New("log output cannot be empty")
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Chain.Validate(); err != nil {
		return fmt.Errorf("chain config: %w", err)
	}
	if err := c.Genesis.Validate(); err != nil {
		return fmt.Errorf("genesis config: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate checks the chain configuration for errors.
func (c *ChainConfig) Validate() error {
	if c.ChainID == "" {
		return ErrEmptyChainID
	}
	return nil
}

// Validate checks the genesis configuration for errors.
func (c *GenesisConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.Balances))
	for i, b := range c.Balances {
		if b.Account == "" {
			return fmt.Errorf("balance %d: %w", i, ErrEmptyGenesisAccount)
		}
		if _, dup := seen[b.Account]; dup {
			return fmt.Errorf("balance %d (%s): %w", i, b.Account, ErrDuplicateGenesisAccount)
		}
		seen[b.Account] = struct{}{}
	}
	return nil
}

// Validate checks the server configuration for errors.
func (c *ServerConfig) Validate() error {
	if c.ListenAddr == "" {
		return ErrEmptyListenAddr
	}
	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}
	return nil
}

// Validate checks the metrics configuration for errors.
func (c *MetricsConfig) Validate() error {
	if c.Enabled {
		if c.Namespace == "" {
			return ErrEmptyMetricsNamespace
		}
		if c.ListenAddr == "" {
			return ErrEmptyMetricsListenAddr
		}
	}
	return nil
}

// Validate checks the logging configuration for errors.
func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return ErrInvalidLogLevel
	}

	switch c.Format {
	case "text", "json":
		// Valid formats
	default:
		return ErrInvalidLogFormat
	}

	if c.Output == "" {
		return ErrEmptyLogOutput
	}

	return nil
}

// GenesisDoc converts the chain and genesis sections into the document
// applied at handshake.
func (c *Config) GenesisDoc() types.GenesisDoc {
	doc := types.GenesisDoc{
		ChainID:  c.Chain.ChainID,
		Balances: make([]types.GenesisBalance, len(c.Genesis.Balances)),
	}
	for i, b := range c.Genesis.Balances {
		doc.Balances[i] = types.GenesisBalance{
			Account: types.AccountID(b.Account),
			Amount:  types.Balance(b.Amount),
		}
	}
	return doc
}

// WriteConfigFile writes the configuration to a TOML file.
func WriteConfigFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}
