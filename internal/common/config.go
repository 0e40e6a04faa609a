// Package common provides shared configuration, logging and path utilities.
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageTypeSQLite = "sqlite"
	StorageTypeBadger = "badger"
)

// Storage modes
const (
	StorageModeMemory = "memory"
	StorageModeFile   = "file"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment" yaml:"environment"` // "development" or "production"
	Storage     StorageConfig   `toml:"storage" yaml:"storage"`
	Ingestion   IngestionConfig `toml:"ingestion" yaml:"ingestion"`
	Logging     LoggingConfig   `toml:"logging" yaml:"logging"`
}

type StorageConfig struct {
	Type   string       `toml:"type" yaml:"type" validate:"oneof=sqlite badger"` // sqlite (default) or badger
	Mode   string       `toml:"mode" yaml:"mode" validate:"oneof=memory file"`   // memory (ephemeral) or file
	SQLite SQLiteConfig `toml:"sqlite" yaml:"sqlite"`
	Badger BadgerConfig `toml:"badger" yaml:"badger"`
}

// SQLiteConfig represents SQLite-specific configuration
type SQLiteConfig struct {
	Path          string `toml:"path" yaml:"path"`                                                  // Database file; empty resolves to the config directory
	BusyTimeoutMS int    `toml:"busy_timeout_ms" yaml:"busy_timeout_ms" validate:"gte=0"`           // Wait on a locked database before failing
	MaxOpenConns  int    `toml:"max_open_conns" yaml:"max_open_conns" validate:"gte=1"`             // Reader pool size in file mode (memory mode is always 1)
	WALMode       bool   `toml:"wal_mode" yaml:"wal_mode"`                                          // journal_mode=WAL
	Synchronous   string `toml:"synchronous" yaml:"synchronous" validate:"oneof=OFF NORMAL FULL"` // synchronous pragma
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path string `toml:"path" yaml:"path"` // Database directory; empty resolves to the config directory
}

// IngestionConfig controls which files are accepted and how failed extraction is treated
type IngestionConfig struct {
	AuthorizedTypes   []string `toml:"authorized_types" yaml:"authorized_types" validate:"min=1,dive,required"`
	LenientTranscript bool     `toml:"lenient_transcript" yaml:"lenient_transcript"` // Store transcript=null instead of failing when extraction errors
}

type LoggingConfig struct {
	Level      string   `toml:"level" yaml:"level" validate:"oneof=trace debug info warn error"`
	Output     []string `toml:"output" yaml:"output" validate:"dive,oneof=stdout console file"`
	FilePath   string   `toml:"file_path" yaml:"file_path"` // Log file when "file" output is enabled; empty uses the config directory
	TimeFormat string   `toml:"time_format" yaml:"time_format"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Type: StorageTypeSQLite,
			Mode: StorageModeFile,
			SQLite: SQLiteConfig{
				BusyTimeoutMS: 5000,
				MaxOpenConns:  4,
				WALMode:       true,
				Synchronous:   "NORMAL", // reduced but safe: no fsync per write in WAL mode
			},
		},
		Ingestion: IngestionConfig{
			AuthorizedTypes:   []string{"application/pdf"},
			LenientTranscript: false,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. Files ending in .yaml/.yml are parsed as YAML, everything else as TOML.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, config)
		default:
			err = toml.Unmarshal(data, config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FYDE_ENV"); env != "" {
		config.Environment = env
	}

	// Storage configuration
	if storageType := os.Getenv("FYDE_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = strings.ToLower(storageType)
	}
	if mode := os.Getenv("FYDE_STORAGE_MODE"); mode != "" {
		config.Storage.Mode = strings.ToLower(mode)
	}
	if sqlitePath := os.Getenv("FYDE_SQLITE_PATH"); sqlitePath != "" {
		config.Storage.SQLite.Path = sqlitePath
	}
	if busyTimeout := os.Getenv("FYDE_SQLITE_BUSY_TIMEOUT_MS"); busyTimeout != "" {
		if bt, err := strconv.Atoi(busyTimeout); err == nil {
			config.Storage.SQLite.BusyTimeoutMS = bt
		}
	}
	if maxOpen := os.Getenv("FYDE_SQLITE_MAX_OPEN_CONNS"); maxOpen != "" {
		if mo, err := strconv.Atoi(maxOpen); err == nil {
			config.Storage.SQLite.MaxOpenConns = mo
		}
	}
	if badgerPath := os.Getenv("FYDE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Ingestion configuration
	if types := os.Getenv("FYDE_AUTHORIZED_TYPES"); types != "" {
		authorized := []string{}
		for _, t := range strings.Split(types, ",") {
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				authorized = append(authorized, strings.ToLower(trimmed))
			}
		}
		if len(authorized) > 0 {
			config.Ingestion.AuthorizedTypes = authorized
		}
	}
	if lenient := os.Getenv("FYDE_LENIENT_TRANSCRIPT"); lenient != "" {
		if l, err := strconv.ParseBool(lenient); err == nil {
			config.Ingestion.LenientTranscript = l
		}
	}

	// Logging configuration
	if level := os.Getenv("FYDE_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}
	if output := os.Getenv("FYDE_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, storageMode string, dbPath string) {
	if storageMode != "" {
		config.Storage.Mode = strings.ToLower(storageMode)
	}
	if dbPath != "" {
		switch config.Storage.Type {
		case StorageTypeBadger:
			config.Storage.Badger.Path = dbPath
		default:
			config.Storage.SQLite.Path = dbPath
		}
	}
}

// Validate checks the configuration against its struct constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// IsMemory reports whether storage is ephemeral
func (c *Config) IsMemory() bool {
	return c.Storage.Mode == StorageModeMemory
}

// DeepCloneConfig creates a deep copy of the Config struct
func DeepCloneConfig(c *Config) *Config {
	if c == nil {
		return nil
	}

	clone := *c

	if len(c.Ingestion.AuthorizedTypes) > 0 {
		clone.Ingestion.AuthorizedTypes = make([]string, len(c.Ingestion.AuthorizedTypes))
		copy(clone.Ingestion.AuthorizedTypes, c.Ingestion.AuthorizedTypes)
	}

	if len(c.Logging.Output) > 0 {
		clone.Logging.Output = make([]string, len(c.Logging.Output))
		copy(clone.Logging.Output, c.Logging.Output)
	}

	return &clone
}
