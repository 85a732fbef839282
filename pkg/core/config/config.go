// Package config loads the bridge configuration from a TOML file and
// SCENEBRIDGE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	mdwerror "github.com/msto63/scenebridge/foundation/core/error"
	mdwlog "github.com/msto63/scenebridge/foundation/core/log"
)

// EnvConfigPath names the variable pointing at the config file
const EnvConfigPath = "SCENEBRIDGE_CONFIG"

// ErrNoConfig is returned by LoadFromEnv when no config file exists
var ErrNoConfig = errors.New("no config file found")

// Journal modes
const (
	JournalSQLite = "sqlite"
	JournalMemory = "memory"
	JournalOff    = "off"
)

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general"`
	Bridge  BridgeConfig  `toml:"bridge"`
	Scene   SceneConfig   `toml:"scene"`
	Journal JournalConfig `toml:"journal"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment" env:"SCENEBRIDGE_ENVIRONMENT"`
	DataDir     string `toml:"data_dir" env:"SCENEBRIDGE_DATA_DIR"`
	LogLevel    string `toml:"log_level" env:"SCENEBRIDGE_LOG_LEVEL"`
	LogFormat   string `toml:"log_format" env:"SCENEBRIDGE_LOG_FORMAT"`
}

// BridgeConfig holds the transport settings
type BridgeConfig struct {
	Host             string   `toml:"host" env:"SCENEBRIDGE_HOST"`
	WebSocketPort    int      `toml:"websocket_port" env:"SCENEBRIDGE_WS_PORT"`
	GRPCPort         int      `toml:"grpc_port" env:"SCENEBRIDGE_GRPC_PORT"`
	ReadTimeout      Duration `toml:"read_timeout"`
	WriteTimeout     Duration `toml:"write_timeout"`
	MaxMessageSize   int64    `toml:"max_message_size"`
	AllowedOrigins   []string `toml:"allowed_origins" env:"SCENEBRIDGE_ALLOWED_ORIGINS" envSeparator:","`
	EnableReflection bool     `toml:"enable_reflection"`
}

// SceneConfig holds scene host settings
type SceneConfig struct {
	// CatalogPath is an optional YAML asset catalog; empty uses the built-in one
	CatalogPath   string `toml:"catalog_path" env:"SCENEBRIDGE_CATALOG"`
	WatchCatalog  bool   `toml:"watch_catalog"`
	GeneratedName string `toml:"generated_name" env:"SCENEBRIDGE_GENERATED_NAME"`
}

// JournalConfig holds command journal settings
type JournalConfig struct {
	Mode      string   `toml:"mode" env:"SCENEBRIDGE_JOURNAL_MODE"`
	Path      string   `toml:"path" env:"SCENEBRIDGE_JOURNAL_PATH"`
	Retention Duration `toml:"retention" env:"SCENEBRIDGE_JOURNAL_RETENTION"`
	Timeout   Duration `toml:"timeout"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration holding only default values
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, mdwerror.Newf("config file not found: %s", path).
			WithCode(mdwerror.CodeInvalidConfig).
			WithDetail("path", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config").
			WithCode(mdwerror.CodeInvalidConfig).
			WithDetail("path", path)
	}

	return finish(&cfg)
}

// LoadFromEnv loads configuration from the SCENEBRIDGE_CONFIG environment variable
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		// Try default locations
		defaultPaths := []string{
			"./configs/scenebridge.toml",
			"./scenebridge.toml",
			filepath.Join(os.Getenv("HOME"), ".config/scenebridge/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, fmt.Errorf("%w, set %s or create configs/scenebridge.toml", ErrNoConfig, EnvConfigPath)
	}

	return Load(path)
}

// Resolve loads path when given, otherwise the file LoadFromEnv finds.
// Without any file the defaults plus environment overrides are used.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg, err := LoadFromEnv()
	if errors.Is(err, ErrNoConfig) {
		return finish(&Config{})
	}
	return cfg, err
}

// finish applies overrides and defaults, then validates
func finish(cfg *Config) (*Config, error) {
	if err := env.Parse(cfg); err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse environment overrides").
			WithCode(mdwerror.CodeInvalidConfig)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "sceneBRIDGE"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Bridge
	if c.Bridge.Host == "" {
		c.Bridge.Host = "127.0.0.1"
	}
	if c.Bridge.WebSocketPort == 0 {
		c.Bridge.WebSocketPort = 9400
	}
	if c.Bridge.GRPCPort == 0 {
		c.Bridge.GRPCPort = 9410
	}
	if c.Bridge.ReadTimeout.Duration == 0 {
		c.Bridge.ReadTimeout.Duration = 60 * time.Second
	}
	if c.Bridge.WriteTimeout.Duration == 0 {
		c.Bridge.WriteTimeout.Duration = 10 * time.Second
	}
	if c.Bridge.MaxMessageSize == 0 {
		c.Bridge.MaxMessageSize = 4 * 1024 * 1024
	}

	// Scene
	if c.Scene.GeneratedName == "" {
		c.Scene.GeneratedName = "GeneratedName"
	}

	// Journal
	if c.Journal.Mode == "" {
		c.Journal.Mode = JournalSQLite
	}
	if c.Journal.Path == "" {
		c.Journal.Path = filepath.Join(c.General.DataDir, "journal.db")
	}
	if c.Journal.Retention.Duration == 0 {
		c.Journal.Retention.Duration = 30 * 24 * time.Hour
	}
	if c.Journal.Timeout.Duration == 0 {
		c.Journal.Timeout.Duration = 5 * time.Second
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Scene.CatalogPath = os.ExpandEnv(c.Scene.CatalogPath)
	c.Journal.Path = os.ExpandEnv(c.Journal.Path)
}

// Validate checks value ranges and combinations
func (c *Config) Validate() error {
	invalid := func(field string, value interface{}, reason string) error {
		return mdwerror.Newf("invalid %s: %s", field, reason).
			WithCode(mdwerror.CodeInvalidConfig).
			WithDetail("field", field).
			WithDetail("value", value)
	}

	for field, port := range map[string]int{
		"bridge.websocket_port": c.Bridge.WebSocketPort,
		"bridge.grpc_port":      c.Bridge.GRPCPort,
	} {
		if port < 1 || port > 65535 {
			return invalid(field, port, "port out of range")
		}
	}
	if c.Bridge.WebSocketPort == c.Bridge.GRPCPort {
		return invalid("bridge.grpc_port", c.Bridge.GRPCPort, "websocket and gRPC ports must differ")
	}
	if c.Bridge.MaxMessageSize < 0 {
		return invalid("bridge.max_message_size", c.Bridge.MaxMessageSize, "must not be negative")
	}
	if _, err := mdwlog.ParseLevel(c.General.LogLevel); err != nil {
		return invalid("general.log_level", c.General.LogLevel, err.Error())
	}
	switch strings.ToLower(c.General.LogFormat) {
	case "text", "json":
	default:
		return invalid("general.log_format", c.General.LogFormat, "must be text or json")
	}
	switch c.Journal.Mode {
	case JournalSQLite, JournalMemory, JournalOff:
	default:
		return invalid("journal.mode", c.Journal.Mode, "must be sqlite, memory or off")
	}
	return nil
}

// WebSocketAddress returns the websocket listen address
func (c *Config) WebSocketAddress() string {
	return fmt.Sprintf("%s:%d", c.Bridge.Host, c.Bridge.WebSocketPort)
}

// GRPCAddress returns the gRPC listen address
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Bridge.Host, c.Bridge.GRPCPort)
}
