package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Storage drivers for corpus snapshots.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageBadger = "badger"
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port string `toml:"port"`
}

// StorageConfig selects where corpus snapshots are persisted.
type StorageConfig struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// Config is the process configuration, usually read from a TOML file.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Index   IndexSettings `toml:"index"`
	Log     LogConfig     `toml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageFile
	}
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	if c.Storage.Path == "" {
		c.Storage.Path = "./search_data"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Index.ApplyDefaults()
}

// Validate returns one message per invalid field.
func (c *Config) Validate() []string {
	var problems []string
	switch c.Storage.Driver {
	case StorageFile, StorageSQLite, StorageBadger:
	default:
		problems = append(problems, fmt.Sprintf("storage.driver must be one of %s, %s, %s, got '%s'",
			StorageFile, StorageSQLite, StorageBadger, c.Storage.Driver))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level must be one of debug, info, warn, error, got '%s'", c.Log.Level))
	}
	return append(problems, c.Index.Validate()...)
}

// LoadFile reads a TOML configuration file and applies defaults.
// A missing file yields os.ErrNotExist.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, os.ErrNotExist
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML configuration and applies defaults.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.ApplyDefaults()
	if problems := cfg.Validate(); len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// Marshal encodes cfg as TOML.
func Marshal(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}
