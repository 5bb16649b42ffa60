package authflow

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape of a Config. Durations are plain integers
// in the unit the field name says, so a config file never needs Go
// duration syntax.
type fileConfig struct {
	Service struct {
		BaseURL          string `yaml:"base_url"`
		RequestTimeoutMS int    `yaml:"request_timeout_ms"`
	} `yaml:"service"`
	Lockout struct {
		MaxAttempts    int `yaml:"max_attempts"`
		WindowSeconds  int `yaml:"window_seconds"`
		TickIntervalMS int `yaml:"tick_interval_ms"`
	} `yaml:"lockout"`
	Password struct {
		MinLength        int  `yaml:"min_length"`
		RequireUppercase bool `yaml:"require_uppercase"`
		RequireDigit     bool `yaml:"require_digit"`
	} `yaml:"password"`
	UX struct {
		LoginRedirectDelayMS int `yaml:"login_redirect_delay_ms"`
		SignupResetDelayMS   int `yaml:"signup_reset_delay_ms"`
	} `yaml:"ux"`
	Storage struct {
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"storage"`
	Events struct {
		Enabled    bool `yaml:"enabled"`
		BufferSize int  `yaml:"buffer_size"`
		DropIfFull bool `yaml:"drop_if_full"`
	} `yaml:"events"`
	Metrics struct {
		Enabled                 bool `yaml:"enabled"`
		EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
	} `yaml:"metrics"`
}

// LoadConfig reads a YAML file and merges it over the defaults. The
// PLANNER_BASE_URL environment variable overrides the service URL. The
// result is validated before it is returned.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	applyFileConfig(&cfg, fc)

	if v := os.Getenv("PLANNER_BASE_URL"); v != "" {
		cfg.Service.BaseURL = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Service.BaseURL != "" {
		cfg.Service.BaseURL = fc.Service.BaseURL
	}
	if fc.Service.RequestTimeoutMS > 0 {
		cfg.Service.RequestTimeout = time.Duration(fc.Service.RequestTimeoutMS) * time.Millisecond
	}

	if fc.Lockout.MaxAttempts > 0 {
		cfg.Lockout.MaxAttempts = fc.Lockout.MaxAttempts
	}
	if fc.Lockout.WindowSeconds > 0 {
		cfg.Lockout.Window = time.Duration(fc.Lockout.WindowSeconds) * time.Second
	}
	if fc.Lockout.TickIntervalMS > 0 {
		cfg.Lockout.TickInterval = time.Duration(fc.Lockout.TickIntervalMS) * time.Millisecond
	}

	if fc.Password.MinLength > 0 {
		cfg.Password.MinLength = fc.Password.MinLength
		cfg.Password.RequireUppercase = fc.Password.RequireUppercase
		cfg.Password.RequireDigit = fc.Password.RequireDigit
	}

	if fc.UX.LoginRedirectDelayMS > 0 {
		cfg.UX.LoginRedirectDelay = time.Duration(fc.UX.LoginRedirectDelayMS) * time.Millisecond
	}
	if fc.UX.SignupResetDelayMS > 0 {
		cfg.UX.SignupResetDelay = time.Duration(fc.UX.SignupResetDelayMS) * time.Millisecond
	}

	if fc.Storage.KeyPrefix != "" {
		cfg.Storage.KeyPrefix = fc.Storage.KeyPrefix
	}

	cfg.Events.Enabled = fc.Events.Enabled
	if fc.Events.BufferSize > 0 {
		cfg.Events.BufferSize = fc.Events.BufferSize
	}
	if fc.Events.Enabled {
		cfg.Events.DropIfFull = fc.Events.DropIfFull
	}

	cfg.Metrics.Enabled = fc.Metrics.Enabled
	cfg.Metrics.EnableLatencyHistograms = fc.Metrics.EnableLatencyHistograms
}
