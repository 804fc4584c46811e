package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/wildlife-park-etl/internal/domain"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from PARK_* environment variables.
type Config struct {
	DataPath       string `envconfig:"DATA_PATH" default:"ALLDATA.csv"`
	DataSheet      string `envconfig:"DATA_SHEET"`
	MissingToken   string `envconfig:"MISSING_TOKEN" default:"na"`
	AirTempAgg     string `envconfig:"AIR_TEMPERATURE_AGG" default:"max"`
	VariantPath    string `envconfig:"VARIANT_PATH"`
	ServeDashboard bool   `envconfig:"SERVE_DASHBOARD" default:"true"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8050"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Rendered chart cache configuration.
	ChartCacheSize int `envconfig:"CHART_CACHE_SIZE" default:"32"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("PARK", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express in tags.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return errors.New("PARK_DATA_PATH is required")
	}
	switch c.InputFormat() {
	case FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("PARK_DATA_PATH %q: unsupported extension (want .csv or .xlsx)", c.DataPath)
	}
	if c.MissingToken == "" {
		return errors.New("PARK_MISSING_TOKEN must not be empty")
	}
	if _, err := c.AirTemperatureReduction(); err != nil {
		return err
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("invalid PARK_SHUTDOWN_TIMEOUT: must be positive")
	}
	if c.ChartCacheSize <= 0 {
		return errors.New("invalid PARK_CHART_CACHE_SIZE: must be positive")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid PARK_LOG_FORMAT %q (want json or text)", c.LogFormat)
	}
	return nil
}

// AirTemperatureReduction returns the daily air temperature policy. Only max
// and mean are meaningful for a temperature.
func (c *Config) AirTemperatureReduction() (domain.Reduction, error) {
	switch r := domain.Reduction(strings.ToLower(c.AirTempAgg)); r {
	case domain.ReduceMax, domain.ReduceMean:
		return r, nil
	default:
		return "", fmt.Errorf("invalid PARK_AIR_TEMPERATURE_AGG %q (want max or mean)", c.AirTempAgg)
	}
}

// Input formats, chosen by file extension.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// InputFormat returns the format implied by DataPath's extension.
func (c *Config) InputFormat() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(c.DataPath)), ".")
}

// Variant resolves the pipeline variant: the YAML file when VariantPath is
// set, otherwise the default variant with the configured air temperature
// policy and missing token.
func (c *Config) Variant() (domain.Variant, error) {
	airTemp, err := c.AirTemperatureReduction()
	if err != nil {
		return domain.Variant{}, err
	}
	if c.VariantPath != "" {
		v, err := LoadVariant(c.VariantPath, airTemp)
		if err != nil {
			return domain.Variant{}, err
		}
		if v.Clean.MissingToken == "" {
			v.Clean.MissingToken = c.MissingToken
		}
		return v, nil
	}
	v := domain.DefaultVariant(airTemp)
	v.Clean.MissingToken = c.MissingToken
	return v, nil
}
