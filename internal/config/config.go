package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

const (
	defaultBaseURL   = "http://localhost:5000"
	defaultAPIPrefix = "/api"
	defaultTimeout   = 45
	defaultLogLevel  = "warn"
	defaultLogFormat = "console"
	configDirName    = "timesheet-cli"
	configFileName   = "config.yaml"

	// PathEnv overrides the config file location.
	PathEnv = "TIMESHEET_CONFIG"
)

type OutputConfig struct {
	JSONDefault bool `yaml:"json_default,omitempty" json:"json_default"`
}

type LogConfig struct {
	Level  string `yaml:"level,omitempty" json:"level"`
	Format string `yaml:"format,omitempty" json:"format"`
}

type Config struct {
	BaseURL        string       `yaml:"base_url,omitempty" json:"base_url"`
	APIPrefix      string       `yaml:"api_prefix,omitempty" json:"api_prefix"`
	Email          string       `yaml:"email,omitempty" json:"email"`
	Timezone       string       `yaml:"timezone,omitempty" json:"timezone"`
	ShiftModel     string       `yaml:"shift_model,omitempty" json:"shift_model"`
	KeyFormat      string       `yaml:"key_format,omitempty" json:"key_format"`
	AuditPolicy    string       `yaml:"audit_policy,omitempty" json:"audit_policy"`
	Approvals      bool         `yaml:"approvals,omitempty" json:"approvals"`
	TimeoutSeconds int          `yaml:"timeout_seconds,omitempty" json:"timeout_seconds"`
	Log            LogConfig    `yaml:"log,omitempty" json:"log"`
	Output         OutputConfig `yaml:"output,omitempty" json:"output"`
}

func DefaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.APIPrefix == "" {
		c.APIPrefix = defaultAPIPrefix
	}
	if c.ShiftModel == "" {
		c.ShiftModel = string(weeklog.ShiftSingle)
	}
	if c.KeyFormat == "" {
		c.KeyFormat = string(weeklog.KeyFormatISO)
	}
	if c.AuditPolicy == "" {
		c.AuditPolicy = string(weeklog.AuditAlways)
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
}

// Validate checks the policy fields so a typo in the file fails at startup
// rather than in the middle of a save.
func (c Config) Validate() error {
	if _, err := weeklog.ParseShiftModel(c.ShiftModel); err != nil {
		return err
	}
	if _, err := weeklog.ParseKeyFormat(c.KeyFormat); err != nil {
		return err
	}
	if _, err := weeklog.ParseAuditPolicy(c.AuditPolicy); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (want console or json)", c.Log.Format)
	}
	return nil
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(PathEnv)); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, configDirName, configFileName), nil
}

// Dir is the directory holding the config file; other state files live
// next to it.
func Dir(path string) string {
	return filepath.Dir(path)
}

func Load() (Config, string, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, "", err
	}
	cfg, err := LoadFile(path)
	return cfg, path, err
}

func LoadFile(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(cfg Config, path string) error {
	cfg.applyDefaults()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func ResolveTimezone(cfg Config) (*time.Location, error) {
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid configured timezone %q: %w", cfg.Timezone, err)
		}
		return loc, nil
	}

	return time.Now().Location(), nil
}
