// Package config provides configuration management for the demo application
// using Viper for flexible configuration loading from files, environment
// variables, and command-line flags.
//
// Values come from an optional .demoapp.yml file, DEMOAPP_ prefixed
// environment variables, and cobra flags bound into viper. Load applies
// defaults for anything unset and validates the result.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/demoapp/internal/validation"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Paths       PathsConfig       `yaml:"paths"`
	Site        SiteConfig        `yaml:"site"`
	Security    SecurityConfig    `yaml:"security"`
	Development DevelopmentConfig `yaml:"development"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	Host        string `yaml:"host"`
	BasePath    string `yaml:"base_path" mapstructure:"base_path"`
	Environment string `yaml:"environment"`
}

// PathsConfig locates the on-disk trees the dispatcher reads from.
type PathsConfig struct {
	Views  string `yaml:"views"`
	Docs   string `yaml:"docs"`
	Static string `yaml:"static"`
}

type SiteConfig struct {
	Title   string `yaml:"title"`
	Locale  string `yaml:"locale"`
	Version string `yaml:"version"`
}

type SecurityConfig struct {
	// CSP turns on nonce injection and the Content-Security-Policy header for
	// every response. A request can still force it with ?csp.
	CSP bool `yaml:"csp"`
}

type DevelopmentConfig struct {
	LiveReload     bool          `yaml:"live_reload" mapstructure:"live_reload"`
	ReloadDebounce time.Duration `yaml:"reload_debounce" mapstructure:"reload_debounce"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "" || c.Server.Environment == "development"
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg, func(string) bool { return false })
	return cfg
}

// Load builds the Config from viper, filling defaults, and validates it.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// viper leaves bools at false when unset, so explicit IsSet checks decide
	// whether a default applies.
	if viper.IsSet("security.csp") {
		config.Security.CSP = viper.GetBool("security.csp")
	}
	if viper.IsSet("development.live_reload") {
		config.Development.LiveReload = viper.GetBool("development.live_reload")
	}

	applyDefaults(&config, viper.IsSet)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config, isSet func(string) bool) {
	if config.Server.Port == 0 {
		config.Server.Port = 4000
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.BasePath == "" {
		config.Server.BasePath = "/"
	}
	if config.Server.Environment == "" {
		config.Server.Environment = "development"
	}

	if config.Paths.Views == "" {
		config.Paths.Views = "app/views"
	}
	if config.Paths.Docs == "" {
		config.Paths.Docs = "app/docs"
	}
	if config.Paths.Static == "" {
		config.Paths.Static = "app/www"
	}

	if config.Site.Title == "" {
		config.Site.Title = "SoHo XI"
	}
	if config.Site.Locale == "" {
		config.Site.Locale = "en-US"
	}

	if !isSet("security.csp") {
		config.Security.CSP = true
	}
	if !isSet("development.live_reload") {
		config.Development.LiveReload = config.IsDevelopment()
	}
	if config.Development.ReloadDebounce <= 0 {
		config.Development.ReloadDebounce = 300 * time.Millisecond
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validatePathsConfig(&config.Paths); err != nil {
		return fmt.Errorf("paths config: %w", err)
	}

	switch config.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log config: unsupported format %q", config.Log.Format)
	}

	return nil
}

func validateServerConfig(config *ServerConfig) error {
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d out of range", config.Port)
	}

	if !strings.HasPrefix(config.BasePath, "/") || !strings.HasSuffix(config.BasePath, "/") {
		return fmt.Errorf("base path %q must start and end with '/'", config.BasePath)
	}

	switch config.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("unknown environment %q", config.Environment)
	}

	return nil
}

func validatePathsConfig(config *PathsConfig) error {
	for name, p := range map[string]string{
		"views":  config.Views,
		"docs":   config.Docs,
		"static": config.Static,
	} {
		if err := validatePath(p); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

// validatePath rejects empty roots and roots that climb out of the working tree.
func validatePath(path string) error {
	return validation.ContentRoot(path)
}
