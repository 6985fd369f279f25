// Package config loads arffstats settings from TOML files and the environment.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"arffstats/internal/analyzer"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	EnvConfig   = "ARFFSTATS_CONFIG"
	EnvLogLevel = "ARFFSTATS_LOG_LEVEL"
	EnvFormat   = "ARFFSTATS_FORMAT"
	EnvAddr     = "ARFFSTATS_ADDR"
)

var ErrMissingInput = errors.New("input folder is needed")

//go:embed defaults.toml
var defaults string

// Config is the complete arffstats configuration
type Config struct {
	LogLevel string
	Extended bool
	Format   string

	// Compressed also reads <id>.arff.gz, .arff.zst and .arff.lz4 datasets
	Compressed bool

	Dataset DatasetConfig
	Server  ServerConfig

	// Input is the dataset directory, taken from the command line
	Input string `toml:"-"`
}

// DatasetConfig names the attributes and class value the statistics are built from
type DatasetConfig struct {
	SentinelClass     string
	CharPrefix        string
	PosPrefix         string
	WordCountName     string
	AverageLengthName string
	ClassName         string
}

type ServerConfig struct {
	Addr          string
	MaxUploadSize int64
	CacheSize     int
}

// Default returns the embedded default configuration
func Default() (*Config, error) {
	var cfg Config

	_, err := toml.Decode(defaults, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}

	return &cfg, nil
}

// Load reads the defaults, then the optional TOML file at path, then environment
// overrides. A .env file in the working directory is loaded first and never
// overrides variables that are already set.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	if path != "" {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}

		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			slog.Warn("Unknown config keys ignored", "file", path, "keys", undecoded)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		cfg.Format = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		cfg.Server.Addr = v
	}

	return cfg, nil
}

// Validate checks the values that would otherwise fail late or silently
func (c *Config) Validate() error {
	if c.Format != "csv" && c.Format != "json" {
		return fmt.Errorf("unknown output format: %s", c.Format)
	}

	_, err := c.SlogLevel()
	if err != nil {
		return err
	}

	fields := map[string]string{
		"SentinelClass":     c.Dataset.SentinelClass,
		"CharPrefix":        c.Dataset.CharPrefix,
		"PosPrefix":         c.Dataset.PosPrefix,
		"WordCountName":     c.Dataset.WordCountName,
		"AverageLengthName": c.Dataset.AverageLengthName,
		"ClassName":         c.Dataset.ClassName,
	}

	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("dataset setting %s cannot be empty", name)
		}
	}

	if c.Server.CacheSize <= 0 {
		return fmt.Errorf("server cache size must be positive, got %d", c.Server.CacheSize)
	}

	if c.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("server upload size must be positive, got %d", c.Server.MaxUploadSize)
	}

	return nil
}

// ValidateInput reports ErrMissingInput when no dataset directory was given
func (c *Config) ValidateInput() error {
	if strings.TrimSpace(c.Input) == "" {
		return ErrMissingInput
	}

	return nil
}

// SlogLevel maps LogLevel to a slog level
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.LogLevel))
	if err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	return level, nil
}

// AnalyzerOptions converts the dataset settings for the analyzer
func (c *Config) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		Extended:          c.Extended,
		SentinelClass:     c.Dataset.SentinelClass,
		CharPrefix:        c.Dataset.CharPrefix,
		PosPrefix:         c.Dataset.PosPrefix,
		WordCountName:     c.Dataset.WordCountName,
		AverageLengthName: c.Dataset.AverageLengthName,
		ClassName:         c.Dataset.ClassName,
	}
}
