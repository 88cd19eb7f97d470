package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Session    SessionConfig    `yaml:"session"`
	Simulation SimulationConfig `yaml:"simulation"`
	Uploads    UploadsConfig    `yaml:"uploads"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int           `yaml:"port"`
	Host         string        `yaml:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// SessionConfig holds browser session configuration
type SessionConfig struct {
	CookieName    string        `yaml:"cookie_name"`
	Secret        string        `yaml:"secret"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	SecureCookie  bool          `yaml:"secure_cookie"`
}

// SimulationConfig holds the fake latencies the views wait on
type SimulationConfig struct {
	AuthDelay      time.Duration `yaml:"auth_delay"`
	SubmitDelay    time.Duration `yaml:"submit_delay"`
	RefreshDelay   time.Duration `yaml:"refresh_delay"`
	DeliveredAfter time.Duration `yaml:"delivered_after"`
	ReadAfter      time.Duration `yaml:"read_after"`
	ReplyAfter     time.Duration `yaml:"reply_after"`
}

// UploadsConfig holds photo upload limits
type UploadsConfig struct {
	MaxPhotoBytes   int64 `yaml:"max_photo_bytes"`
	MaxRequestBytes int64 `yaml:"max_request_bytes"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file overrides a value
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Session: SessionConfig{
			CookieName:    "tc_session",
			IdleTTL:       2 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Simulation: SimulationConfig{
			AuthDelay:      time.Second,
			SubmitDelay:    2 * time.Second,
			RefreshDelay:   1500 * time.Millisecond,
			DeliveredAfter: time.Second,
			ReadAfter:      2500 * time.Millisecond,
			ReplyAfter:     5 * time.Second,
		},
		Uploads: UploadsConfig{
			MaxPhotoBytes:   5 << 20,
			MaxRequestBytes: 32 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads configuration from a YAML file on top of the defaults and
// applies TC_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("TC_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("TC_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TC_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("TC_SESSION_SECRET"); v != "" {
		c.Session.Secret = v
	}
	if v := os.Getenv("TC_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks value ranges and the strict ordering of the delivery
// delays
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Session.CookieName == "" {
		return errors.New("session.cookie_name is required")
	}
	if c.Session.IdleTTL <= 0 {
		return errors.New("session.idle_ttl must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return errors.New("session.sweep_interval must be positive")
	}

	s := c.Simulation
	for name, d := range map[string]time.Duration{
		"auth_delay":      s.AuthDelay,
		"submit_delay":    s.SubmitDelay,
		"refresh_delay":   s.RefreshDelay,
		"delivered_after": s.DeliveredAfter,
		"read_after":      s.ReadAfter,
		"reply_after":     s.ReplyAfter,
	} {
		if d < 0 {
			return fmt.Errorf("simulation.%s must not be negative", name)
		}
	}
	// receipts run on independent timers; equal delays would let read fire
	// before delivered
	if s.ReadAfter <= s.DeliveredAfter {
		return errors.New("simulation.read_after must be longer than delivered_after")
	}
	if s.ReplyAfter <= s.ReadAfter {
		return errors.New("simulation.reply_after must be longer than read_after")
	}

	if c.Uploads.MaxPhotoBytes <= 0 || c.Uploads.MaxRequestBytes <= 0 {
		return errors.New("uploads limits must be positive")
	}
	return nil
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
