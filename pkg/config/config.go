// Package config loads the az-fda run presets from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/linesd/az-fda/pkg/analysis"
	"github.com/linesd/az-fda/pkg/logging"
	"github.com/linesd/az-fda/pkg/pagination"
	"github.com/linesd/az-fda/pkg/query"
	"github.com/linesd/az-fda/pkg/render"
	"gopkg.in/yaml.v3"
)

// DefaultManufacturer is the manufacturer analysed when none is configured.
const DefaultManufacturer = "AstraZeneca Pharmaceuticals LP"

// Config holds the preset values for a run. Command-line flags override them.
type Config struct {
	// Query
	BaseURL      string `yaml:"base_url"`
	Manufacturer string `yaml:"manufacturer"`
	PageSize     int    `yaml:"page_size"`
	UserAgent    string `yaml:"user_agent"`
	Timeout      string `yaml:"timeout"`

	// Analysis and output
	AnalysisType string `yaml:"analysis_type"` // generic, route
	PlotType     string `yaml:"plot_type"`     // bar, line
	SaveFig      bool   `yaml:"save_fig"`
	FiguresDir   string `yaml:"figures_dir"`

	Logging LoggingConfig `yaml:"logging"`
	Store   StoreConfig   `yaml:"store"`

	// MetricsFile, when set, receives a Prometheus textfile dump after the run.
	MetricsFile string `yaml:"metrics_file"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// StoreConfig configures the optional result sinks. Empty values disable a sink.
type StoreConfig struct {
	RedisAddr  string `yaml:"redis_addr"`
	RedisTTL   string `yaml:"redis_ttl"`
	SQLitePath string `yaml:"sqlite_path"`
}

// DefaultConfig returns the built-in presets.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      query.DefaultBaseURL,
		Manufacturer: DefaultManufacturer,
		PageSize:     pagination.MaxPageSize,
		UserAgent:    "az-fda/1.0",
		Timeout:      "30s",
		AnalysisType: string(analysis.Generic),
		PlotType:     string(render.Bar),
		SaveFig:      true,
		FiguresDir:   "figures",
		Logging: LoggingConfig{
			Level: string(logging.LevelInfo),
		},
		Store: StoreConfig{
			RedisTTL: "24h",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies AZFDA_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AZFDA_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("AZFDA_MANUFACTURER"); v != "" {
		c.Manufacturer = v
	}
	if v := os.Getenv("AZFDA_ANALYSIS_TYPE"); v != "" {
		c.AnalysisType = v
	}
	if v := os.Getenv("AZFDA_PLOT_TYPE"); v != "" {
		c.PlotType = v
	}
	if v := os.Getenv("AZFDA_SAVE_FIG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SaveFig = b
		}
	}
	if v := os.Getenv("AZFDA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("AZFDA_REDIS_ADDR"); v != "" {
		c.Store.RedisAddr = v
	}
	if v := os.Getenv("AZFDA_SQLITE_PATH"); v != "" {
		c.Store.SQLitePath = v
	}
}

// GetTimeout returns the request timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetRedisTTL returns the lifetime of published results.
func (c *Config) GetRedisTTL() time.Duration {
	d, err := time.ParseDuration(c.Store.RedisTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// Validate rejects presets that would fail later in the run. It performs no I/O.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url not configured")
	}
	if c.Manufacturer == "" {
		return fmt.Errorf("manufacturer not configured")
	}
	if _, err := analysis.ParseKind(c.AnalysisType); err != nil {
		return err
	}
	if _, err := render.ParseChartKind(c.PlotType); err != nil {
		return err
	}
	if c.PageSize < 1 || c.PageSize > pagination.MaxPageSize {
		return fmt.Errorf("invalid page size: %d (valid: 1-%d)", c.PageSize, pagination.MaxPageSize)
	}
	if _, err := logging.ParseLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
	}
	if c.Store.RedisTTL != "" {
		if _, err := time.ParseDuration(c.Store.RedisTTL); err != nil {
			return fmt.Errorf("invalid redis ttl %q: %w", c.Store.RedisTTL, err)
		}
	}
	return nil
}
