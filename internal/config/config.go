// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"firestige.xyz/protosy/internal/core"
	"firestige.xyz/protosy/internal/log"
)

// GlobalConfig maps to the `protosy:` root key in YAML.
type GlobalConfig struct {
	Log     log.LoggerConfig `mapstructure:"log" yaml:"log"`
	Plugins PluginsConfig    `mapstructure:"plugins" yaml:"plugins"`
	Metrics MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Console ConsoleConfig    `mapstructure:"console" yaml:"console"`
}

// PluginsConfig controls which libraries are loaded before the console
// starts. Preload entries are loaded first, in order, then the files in Dir
// matching Patterns when Autoload is set.
type PluginsConfig struct {
	Dir      string   `mapstructure:"dir" yaml:"dir"`
	Patterns []string `mapstructure:"patterns" yaml:"patterns"`
	Preload  []string `mapstructure:"preload" yaml:"preload"`
	Autoload bool     `mapstructure:"autoload" yaml:"autoload"`
}

// MetricsConfig contains Prometheus exposure settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// ConsoleConfig contains interactive console settings.
type ConsoleConfig struct {
	Prompt    string `mapstructure:"prompt" yaml:"prompt"`
	ArgPrompt string `mapstructure:"arg_prompt" yaml:"arg_prompt"`
	Color     bool   `mapstructure:"color" yaml:"color"`
}

type configRoot struct {
	Protosy GlobalConfig `mapstructure:"protosy"`
}

// Load loads configuration from path. An empty path yields the defaults
// plus environment overrides (PROTOSY_ prefix, e.g. PROTOSY_LOG_LEVEL).
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// key "protosy.log.level" -> env "PROTOSY_LOG_LEVEL"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Protosy

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("protosy.log.level", "info")
	v.SetDefault("protosy.log.pattern", log.DefaultPattern)
	v.SetDefault("protosy.log.time", log.DefaultTimeLayout)
	v.SetDefault("protosy.log.caller", false)
	v.SetDefault("protosy.log.appenders", []map[string]interface{}{
		{"type": "console", "options": map[string]interface{}{"target": "stderr"}},
	})

	// Plugin defaults
	v.SetDefault("protosy.plugins.dir", "")
	v.SetDefault("protosy.plugins.patterns", DefaultPatterns())
	v.SetDefault("protosy.plugins.preload", []string{})
	v.SetDefault("protosy.plugins.autoload", false)

	// Metrics defaults
	v.SetDefault("protosy.metrics.enabled", false)
	v.SetDefault("protosy.metrics.listen", "127.0.0.1:9091")
	v.SetDefault("protosy.metrics.path", "/metrics")

	// Console defaults
	v.SetDefault("protosy.console.prompt", "> ")
	v.SetDefault("protosy.console.arg_prompt", ">> ")
	v.SetDefault("protosy.console.color", true)
}

// DefaultPatterns returns the shared-library glob for the host platform.
func DefaultPatterns() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"*.dylib"}
	case "windows":
		return []string{"*.dll"}
	default:
		return []string{"*.so"}
	}
}

// ValidateAndApplyDefaults validates configuration and fills runtime
// defaults that cannot be expressed as viper defaults.
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("%w: log level %q (must be trace/debug/info/warn/error)", core.ErrConfigInvalid, cfg.Log.Level)
	}
	for i, appender := range cfg.Log.Appenders {
		if appender.Type == "" {
			return fmt.Errorf("%w: log.appenders[%d] has no type", core.ErrConfigInvalid, i)
		}
	}

	if len(cfg.Plugins.Patterns) == 0 {
		cfg.Plugins.Patterns = DefaultPatterns()
	}
	for _, pattern := range cfg.Plugins.Patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("%w: plugin pattern %q: %v", core.ErrConfigInvalid, pattern, err)
		}
	}
	if cfg.Plugins.Autoload && cfg.Plugins.Dir == "" {
		return fmt.Errorf("%w: plugins.dir is required when plugins.autoload=true", core.ErrConfigInvalid)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Listen == "" {
			return fmt.Errorf("%w: metrics.listen is required when metrics.enabled=true", core.ErrConfigInvalid)
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			return fmt.Errorf("%w: metrics.path must start with '/'", core.ErrConfigInvalid)
		}
	}

	return nil
}

// YAML renders the configuration under its root key.
func (cfg *GlobalConfig) YAML() ([]byte, error) {
	out, err := yaml.Marshal(map[string]*GlobalConfig{"protosy": cfg})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}
