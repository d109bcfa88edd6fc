package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"firestige.xyz/protosy/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	require.Len(t, cfg.Log.Appenders, 1)
	assert.Equal(t, "console", cfg.Log.Appenders[0].Type)
	assert.Equal(t, DefaultPatterns(), cfg.Plugins.Patterns)
	assert.False(t, cfg.Plugins.Autoload)
	assert.Empty(t, cfg.Plugins.Preload)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "> ", cfg.Console.Prompt)
	assert.Equal(t, ">> ", cfg.Console.ArgPrompt)
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
protosy:
  log:
    level: debug
    appenders:
      - type: file
        options:
          filename: /tmp/protosy.log
          max_size: 10
  plugins:
    dir: /opt/protosy/plugins
    patterns: ["lib*.so"]
    preload:
      - /opt/protosy/libupcase.so
    autoload: true
  metrics:
    enabled: true
    listen: "0.0.0.0:9100"
  console:
    prompt: "protosy> "
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	require.Len(t, cfg.Log.Appenders, 1)
	assert.Equal(t, "file", cfg.Log.Appenders[0].Type)
	assert.Equal(t, "/tmp/protosy.log", cfg.Log.Appenders[0].Options["filename"])
	assert.Equal(t, "/opt/protosy/plugins", cfg.Plugins.Dir)
	assert.Equal(t, []string{"lib*.so"}, cfg.Plugins.Patterns)
	assert.Equal(t, []string{"/opt/protosy/libupcase.so"}, cfg.Plugins.Preload)
	assert.True(t, cfg.Plugins.Autoload)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "0.0.0.0:9100", cfg.Metrics.Listen)
	assert.Equal(t, "protosy> ", cfg.Console.Prompt)
	assert.Equal(t, ">> ", cfg.Console.ArgPrompt)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PROTOSY_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"LogLevel", "protosy:\n  log:\n    level: loud\n"},
		{"AppenderWithoutType", "protosy:\n  log:\n    appenders:\n      - options: {}\n"},
		{"BadPattern", "protosy:\n  plugins:\n    patterns: [\"[\"]\n"},
		{"AutoloadWithoutDir", "protosy:\n  plugins:\n    autoload: true\n"},
		{"MetricsPath", "protosy:\n  metrics:\n    enabled: true\n    path: metrics\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrConfigInvalid), "got %v", err)
		})
	}
}

func TestYAMLRoundTripsRootKey(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	out, err := cfg.YAML()
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.Contains(t, decoded, "protosy")
	assert.Contains(t, decoded["protosy"], "plugins")
	assert.Contains(t, decoded["protosy"], "console")
}
