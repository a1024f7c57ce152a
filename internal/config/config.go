package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultBaseURL   = "https://api.netlify.com/api/v1"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "netlify-mcp-server"
)

// ErrMissingToken is returned by Load when no access token is configured.
var ErrMissingToken = errors.New("NETLIFY_ACCESS_TOKEN environment variable is required")

// Config is the process configuration. It is read once at startup and
// never mutated afterwards.
type Config struct {
	AccessToken string          `mapstructure:"access_token"`
	BaseURL     string          `mapstructure:"base_url"`
	Timeout     time.Duration   `mapstructure:"timeout"`
	UserAgent   string          `mapstructure:"user_agent"`
	Log         LogConfig       `mapstructure:"log"`
	Audit       AuditConfig     `mapstructure:"audit"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // trace, debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

type AuditConfig struct {
	Path string `mapstructure:"path"` // SQLite file; empty disables the audit log
}

type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration from an optional YAML file and the environment.
// Environment variables use the NETLIFY_ prefix with dots replaced by
// underscores, e.g. NETLIFY_ACCESS_TOKEN, NETLIFY_LOG_LEVEL, NETLIFY_AUDIT_PATH.
func Load(configPath string) (*Config, error) {
	cfg, err := load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithoutToken is Load minus the credential check, for commands that
// never reach the remote API.
func LoadWithoutToken(configPath string) (*Config, error) {
	return load(configPath)
}

func load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("netlify")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("access_token", "")
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("audit.path", "")
	v.SetDefault("telemetry.enabled", false)
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.AccessToken == "" {
		return ErrMissingToken
	}
	if c.BaseURL == "" {
		return errors.New("base_url must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
