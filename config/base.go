package config

import (
	"fmt"

	"github.com/kbukum/sawmill/logger"
	"github.com/kbukum/sawmill/validation"
)

// Config is the complete sawmill configuration.
type Config struct {
	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Logs          LogsConfig          `yaml:"logs" mapstructure:"logs"`
	Report        ReportConfig        `yaml:"report" mapstructure:"report"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// LogsConfig selects the access-log directory the recipes read from.
type LogsConfig struct {
	// Preset is a named default directory ("apache" or "nginx").
	Preset string `yaml:"preset" mapstructure:"preset" json:"preset" validate:"omitempty,oneof=apache nginx"`
	// Dir overrides the preset directory.
	Dir string `yaml:"dir" mapstructure:"dir" json:"dir"`
	// Filter is the substring a file path must contain to be read.
	Filter string `yaml:"filter" mapstructure:"filter" json:"filter"`
}

// ReportConfig controls frequency report output.
type ReportConfig struct {
	// Limit truncates reports to the top N entries. Zero means no limit.
	Limit int `yaml:"limit" mapstructure:"limit" json:"limit" validate:"gte=0"`
	// Color is one of auto, always, never.
	Color string `yaml:"color" mapstructure:"color" json:"color" validate:"oneof=auto always never"`
}

// ObservabilityConfig configures OTLP export. An empty endpoint disables it.
type ObservabilityConfig struct {
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" json:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure" json:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" json:"sample_rate" validate:"gte=0,lte=1"`
}

// Default returns the configuration used when nothing is configured.
func Default() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults applies default values to every section.
func (c *Config) ApplyDefaults() {
	c.Logging.ApplyDefaults()
	if c.Logs.Preset == "" && c.Logs.Dir == "" {
		c.Logs.Preset = "apache"
	}
	if c.Logs.Filter == "" {
		c.Logs.Filter = "access"
	}
	if c.Report.Color == "" {
		c.Report.Color = "auto"
	}
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c.Logs); err != nil {
		return fmt.Errorf("logs: %w", err)
	}
	if err := validation.Validate(c.Report); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := validation.Validate(c.Observability); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	return nil
}
