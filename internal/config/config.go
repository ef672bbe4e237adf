package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	FileName  = "foreman.yml"
	EnvPrefix = "FOREMAN"
)

// Config models foreman.yml.
type Config struct {
	Database struct {
		Path          string `mapstructure:"path" yaml:"path"`
		BusyTimeoutMs int    `mapstructure:"busy_timeout_ms" yaml:"busy_timeout_ms"`
	} `mapstructure:"database" yaml:"database"`
	Server struct {
		Addr     string `mapstructure:"addr" yaml:"addr"`
		BasePath string `mapstructure:"base_path" yaml:"base_path"`
	} `mapstructure:"server" yaml:"server"`
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`
	Telemetry struct {
		Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
		Stdout      bool   `mapstructure:"stdout" yaml:"stdout"`
		ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	} `mapstructure:"telemetry" yaml:"telemetry"`
	Timeline struct {
		PageSize    int `mapstructure:"page_size" yaml:"page_size"`
		MaxPageSize int `mapstructure:"max_page_size" yaml:"max_page_size"`
	} `mapstructure:"timeline" yaml:"timeline"`
	Actions struct {
		ClaimTTL time.Duration `mapstructure:"claim_ttl" yaml:"claim_ttl"`
	} `mapstructure:"actions" yaml:"actions"`
	Terminals struct {
		Launcher string `mapstructure:"launcher" yaml:"launcher"`
	} `mapstructure:"terminals" yaml:"terminals"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Database.BusyTimeoutMs < 0 {
		return fmt.Errorf("database.busy_timeout_ms must not be negative")
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("server.base_path must start with /")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json")
	}
	if c.Timeline.PageSize <= 0 {
		return fmt.Errorf("timeline.page_size must be positive")
	}
	if c.Timeline.MaxPageSize < c.Timeline.PageSize {
		return fmt.Errorf("timeline.max_page_size must be >= timeline.page_size")
	}
	if c.Actions.ClaimTTL <= 0 {
		return fmt.Errorf("actions.claim_ttl must be positive")
	}
	switch c.Terminals.Launcher {
	case "none", "tmux":
	default:
		return fmt.Errorf("terminals.launcher must be none or tmux")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, FileName)
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	if err := yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg); err != nil {
		panic(fmt.Sprintf("default config template: %v", err))
	}
	return &cfg
}

// GenerateDefault returns the default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Load layers defaults, the workspace file (or explicit path) and
// FOREMAN_* environment variables, then validates the result. A missing
// file is not an error.
func Load(workspace, explicitPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := explicitPath
	if path == "" {
		path = Path(workspace)
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitPath != "" || !(errors.As(err, &notFound) || os.IsNotExist(err) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.busy_timeout_ms", d.Database.BusyTimeoutMs)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.base_path", d.Server.BasePath)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.stdout", d.Telemetry.Stdout)
	v.SetDefault("telemetry.service_name", d.Telemetry.ServiceName)
	v.SetDefault("timeline.page_size", d.Timeline.PageSize)
	v.SetDefault("timeline.max_page_size", d.Timeline.MaxPageSize)
	v.SetDefault("actions.claim_ttl", d.Actions.ClaimTTL)
	v.SetDefault("terminals.launcher", d.Terminals.Launcher)
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

const defaultTemplate = `database:
  # empty means <workspace>/.foreman/foreman.db
  path: ""
  busy_timeout_ms: 5000

server:
  addr: 127.0.0.1:8080
  base_path: /v1

log:
  level: info
  format: text

telemetry:
  enabled: false
  stdout: false
  service_name: foreman

timeline:
  page_size: 100
  max_page_size: 1000

actions:
  claim_ttl: 15m

terminals:
  # none or tmux
  launcher: none
`
