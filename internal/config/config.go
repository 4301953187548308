package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"outreach/internal/schedule"
)

const FileName = "outreach.yml"

// Config models outreach.yml.
type Config struct {
	Schedule struct {
		BusinessStart int `yaml:"business_start" json:"business_start" validate:"gte=0,lte=23"`
		BusinessEnd   int `yaml:"business_end" json:"business_end" validate:"gte=1,lte=24"`
		SnoozeHours   int `yaml:"snooze_hours" json:"snooze_hours" validate:"gt=0"`
	} `yaml:"schedule" json:"schedule"`
	Server struct {
		Addr      string `yaml:"addr" json:"addr" validate:"required"`
		BasePath  string `yaml:"base_path" json:"base_path" validate:"required,startswith=/"`
		JWTSecret string `yaml:"jwt_secret" json:"jwt_secret,omitempty"`
	} `yaml:"server" json:"server"`
	Digest struct {
		Enabled bool   `yaml:"enabled" json:"enabled"`
		Cron    string `yaml:"cron" json:"cron"`
	} `yaml:"digest" json:"digest"`
	Log struct {
		Level string `yaml:"level" json:"level" validate:"omitempty,oneof=trace debug info warn error"`
	} `yaml:"log" json:"log"`
}

var validate = validator.New()

// Window returns the business-hours window the scheduler uses.
func (c *Config) Window() schedule.Window {
	return schedule.Window{Start: c.Schedule.BusinessStart, End: c.Schedule.BusinessEnd}
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Window().Validate(); err != nil {
		return fmt.Errorf("config.schedule: %w", err)
	}
	if c.Digest.Enabled {
		if c.Digest.Cron == "" {
			return fmt.Errorf("config.digest.cron is required when the digest is enabled")
		}
		if _, err := cron.ParseStandard(c.Digest.Cron); err != nil {
			return fmt.Errorf("config.digest.cron: %w", err)
		}
	}
	return nil
}

// Redacted returns a copy safe to print: the JWT secret is masked.
func (c Config) Redacted() Config {
	if c.Server.JWTSecret != "" {
		c.Server.JWTSecret = "********"
	}
	return c
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, FileName)
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Load reads the workspace config, falling back to defaults when the file
// does not exist.
func Load(workspace string) (*Config, error) {
	cfg, err := LoadOptional(workspace)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return Default(), nil
	}
	return cfg, nil
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	cfg, err := FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Keys missing
// from data keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `schedule:
  # tasks are due inside [business_start, business_end) local time
  business_start: 6
  business_end: 16
  snooze_hours: 24

server:
  addr: 127.0.0.1:8080
  base_path: /v0
  # set to require HS256 bearer tokens (see: ot token)
  jwt_secret: ""

digest:
  enabled: false
  cron: "0 7 * * 1-5"

log:
  level: warn
`
