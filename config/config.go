package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

const (
	ConfigFileName = "imgmeta.yaml"
	EnvPrefix      = "IMGMETA_"

	minCompressLevel = 0
	maxCompressLevel = 9
)

type Config struct {
	InputDir      string `yaml:"input_dir"`
	OutputDir     string `yaml:"output_dir"`
	TempDir       string `yaml:"temp_dir"`
	LogLevel      string `yaml:"log_level"`
	CompressLevel int    `yaml:"compress_level"`
	HistoryDb     string `yaml:"history_db,omitempty"`
}

func Default() *Config {
	return &Config{
		InputDir:      "input",
		OutputDir:     "output",
		TempDir:       "temp",
		LogLevel:      "INFO",
		CompressLevel: 4,
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, ErrConfigNotFound
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnvironment overrides values from IMGMETA_* variables.
func (c *Config) ApplyEnvironment(lookup func(string) (string, bool)) error {
	stringValues := map[string]*string{
		"INPUT_DIR":  &c.InputDir,
		"OUTPUT_DIR": &c.OutputDir,
		"TEMP_DIR":   &c.TempDir,
		"LOG_LEVEL":  &c.LogLevel,
		"HISTORY_DB": &c.HistoryDb,
	}
	for name, target := range stringValues {
		if value, ok := lookup(EnvPrefix + name); ok {
			*target = value
		}
	}

	if value, ok := lookup(EnvPrefix + "COMPRESS_LEVEL"); ok {
		level, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%sCOMPRESS_LEVEL: %w", EnvPrefix, err)
		}
		c.CompressLevel = level
	}
	return nil
}

func (c *Config) Validate() error {
	if c.CompressLevel < minCompressLevel || c.CompressLevel > maxCompressLevel {
		return fmt.Errorf("compress_level must be between %d and %d, got %d",
			minCompressLevel, maxCompressLevel, c.CompressLevel)
	}
	if c.InputDir == "" {
		return errors.New("input_dir must be set")
	}
	if c.OutputDir == "" {
		return errors.New("output_dir must be set")
	}
	return nil
}
