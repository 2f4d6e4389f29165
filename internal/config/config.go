package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file kept at the root of a book.
const FileName = "tally.yaml"

// Storage drivers.
const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
)

// Environment variables that override the file.
const (
	EnvStorageDriver = "TALLY_STORAGE_DRIVER"
	EnvStoragePath   = "TALLY_STORAGE_PATH"
	EnvLogLevel      = "TALLY_LOG_LEVEL"
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Import  ImportConfig  `yaml:"import"`
	Log     LogConfig     `yaml:"log"`
	Git     GitConfig     `yaml:"git"`
}

// StorageConfig selects the ledger backend. Path is relative to the book
// unless absolute: a directory for csv, a database file for sqlite.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// ImportConfig controls the import command.
type ImportConfig struct {
	DefaultBank   string `yaml:"default_bank,omitempty"`
	MoveProcessed bool   `yaml:"move_processed"`
}

// LogConfig controls logger output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tally.yaml file from disk. Missing sections keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new book.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: DriverCSV,
			Path:   "ledger",
		},
		Import: ImportConfig{
			MoveProcessed: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Tally",
			AuthorEmail: "tally@localhost",
		},
	}
}

// Validate reports settings the program cannot act on.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverCSV, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q (want %s or %s)", c.Storage.Driver, DriverCSV, DriverSQLite)
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage path is empty")
	}
	return nil
}

// LoadDotEnv loads variables from a .env file into the process
// environment without replacing ones already set. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// ApplyEnv overrides file settings with TALLY_* variables found by lookup,
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvStorageDriver); ok && v != "" {
		c.Storage.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvStoragePath); ok && v != "" {
		c.Storage.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	return c.Validate()
}
