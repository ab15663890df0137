package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/fraudscope/internal/domain/analysis"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWhenOptionalFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Zero(t, cfg.Backend.Timeout, "no timeout unless configured")
	assert.Equal(t, InputSelect, cfg.Console.CustomerInput)
	assert.True(t, cfg.Console.CacheToggle)
	assert.True(t, cfg.Console.FenceStaleResponses)
	assert.Equal(t, analysis.FixedScore(3), cfg.Console.ScorePrecision.ScorePrecision)
}

func TestLoad_RequiredFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	assert.Error(t, err)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8088
  shutdown_timeout: 3s
backend:
  base_url: https://fraud.internal:9000
  timeout: 2m
console:
  customer_input: freetext
  cache_toggle: false
  score_precision: raw
  fence_stale_responses: false
log:
  level: debug
  format: console
`)
	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "https://fraud.internal:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 2*time.Minute, cfg.Backend.Timeout)
	assert.True(t, cfg.FreetextInput())
	assert.False(t, cfg.Console.CacheToggle)
	assert.True(t, cfg.Console.ScorePrecision.Raw)
	assert.False(t, cfg.Console.FenceStaleResponses)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, 5.0, cfg.Server.RateLimit)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "console:\n  score_precision: 2\n")
	t.Setenv("FRAUDSCOPE_PORT", "9999")
	t.Setenv("FRAUDSCOPE_BACKEND_URL", "http://10.0.0.5:8000")
	t.Setenv("FRAUDSCOPE_SCORE_PRECISION", "5")
	t.Setenv("FRAUDSCOPE_CORS_ORIGINS", "http://a, http://b ,")
	t.Setenv("FRAUDSCOPE_CACHE_TOGGLE", "false")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "http://10.0.0.5:8000", cfg.Backend.BaseURL)
	assert.Equal(t, analysis.FixedScore(5), cfg.Console.ScorePrecision.ScorePrecision)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Console.CacheToggle)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad precision":  "console:\n  score_precision: many\n",
		"bad input mode": "console:\n  customer_input: radio\n",
		"bad url":        "backend:\n  base_url: ftp://x\n",
		"bad port":       "server:\n  port: 70000\n",
		"bad log level":  "log:\n  level: loud\n",
		"negative wait":  "backend:\n  timeout: -1s\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body), true)
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("FRAUDSCOPE_PORT", "eighty")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	assert.ErrorContains(t, err, "FRAUDSCOPE_PORT")
}

func TestResolvePath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	p, required := ResolvePath("")
	assert.Equal(t, DefaultPath, p)
	assert.False(t, required)

	t.Setenv("CONFIG_PATH", "/etc/fraudscope.yaml")
	p, required = ResolvePath("")
	assert.Equal(t, "/etc/fraudscope.yaml", p)
	assert.True(t, required)

	p, required = ResolvePath("local.yaml")
	assert.Equal(t, "local.yaml", p)
	assert.True(t, required)
}

func TestScorePrecision_MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(map[string]ScorePrecision{
		"a": {analysis.RawScore},
		"b": {analysis.FixedScore(4)},
	})
	require.NoError(t, err)
	assert.Equal(t, "a: raw\nb: 4\n", string(out))
}
