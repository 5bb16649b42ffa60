package authflow

import (
	"errors"
	"net/url"
	"time"
)

// Config carries every tunable of the auth flow. Build a Config through
// the Builder; a Config handed to Build is cloned and treated as
// immutable afterwards.
type Config struct {
	Service  ServiceConfig
	Lockout  LockoutConfig
	Password PasswordPolicy
	UX       UXConfig
	Storage  StorageConfig
	Events   EventsConfig
	Metrics  MetricsConfig
}

/*
====================================
SERVICE CONFIG
====================================
*/

// ServiceConfig locates the planner service.
type ServiceConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig controls the failed-attempt guard on the login form.
type LockoutConfig struct {
	MaxAttempts  int
	Window       time.Duration
	TickInterval time.Duration
}

/*
====================================
PASSWORD POLICY
====================================
*/

// PasswordPolicy is the signup-side password rule set. It only gates new
// passwords; login accepts whatever the user types.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireDigit     bool
}

/*
====================================
UX CONFIG
====================================
*/

// UXConfig holds the timing of user-visible transitions.
type UXConfig struct {
	LoginRedirectDelay time.Duration
	SignupResetDelay   time.Duration
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig names the session store keyspace.
type StorageConfig struct {
	KeyPrefix string
}

// EventsConfig controls the async event dispatcher.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the counter set.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the stock configuration. BaseURL is left empty
// and must be filled in before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			RequestTimeout: 10 * time.Second,
		},
		Lockout: LockoutConfig{
			MaxAttempts:  5,
			Window:       30 * time.Second,
			TickInterval: time.Second,
		},
		Password: PasswordPolicy{
			MinLength:        8,
			RequireUppercase: true,
			RequireDigit:     true,
		},
		UX: UXConfig{
			LoginRedirectDelay: 1800 * time.Millisecond,
			SignupResetDelay:   2200 * time.Millisecond,
		},
		Storage: StorageConfig{
			KeyPrefix: "planner",
		},
		Events: EventsConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate rejects configurations the controller cannot run with.
func (c *Config) Validate() error {
	// Service
	if c.Service.BaseURL == "" {
		return errors.New("Service BaseURL is required")
	}
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("Service BaseURL must be an absolute URL")
	}
	if c.Service.RequestTimeout <= 0 {
		return errors.New("Service RequestTimeout must be > 0")
	}

	// Lockout
	if c.Lockout.MaxAttempts < 1 {
		return errors.New("Lockout MaxAttempts must be >= 1")
	}
	if c.Lockout.Window <= 0 {
		return errors.New("Lockout Window must be > 0")
	}
	if c.Lockout.TickInterval <= 0 {
		return errors.New("Lockout TickInterval must be > 0")
	}

	// Password
	if c.Password.MinLength < 1 {
		return errors.New("Password MinLength must be >= 1")
	}

	// UX
	if c.UX.LoginRedirectDelay < 0 {
		return errors.New("UX LoginRedirectDelay must be >= 0")
	}
	if c.UX.SignupResetDelay < 0 {
		return errors.New("UX SignupResetDelay must be >= 0")
	}

	// Storage
	if c.Storage.KeyPrefix == "" {
		return errors.New("Storage KeyPrefix is required")
	}

	// Events
	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return errors.New("Events BufferSize must be > 0 when Events are enabled")
	}

	return nil
}
