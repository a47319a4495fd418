package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		"UXCREW_PROVIDER":        "Anthropic",
		"UXCREW_ADDR":            ":9000",
		"UXCREW_RUN_TIMEOUT":     "90s",
		"ANTHROPIC_API_KEY":      "key",
		"ANTHROPIC_API_BASE_URL": "http://localhost:1234",
		"OPENAI_API_KEY":         "ignored",
	}))
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider.Name)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 90*time.Second, cfg.RunTimeout)
	assert.Equal(t, "key", cfg.Provider.APIKey)
	assert.Equal(t, "http://localhost:1234", cfg.Provider.BaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvInvalidDuration(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{"UXCREW_RUN_TIMEOUT": "soon"}))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		wantErr    bool
		credential bool
	}{
		{name: "valid", mutate: func(c *Config) { c.Provider.APIKey = "k" }},
		{name: "missing credential", mutate: func(c *Config) {}, wantErr: true, credential: true},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider.Name = "llama"; c.Provider.APIKey = "k" }, wantErr: true},
		{name: "bad base url", mutate: func(c *Config) { c.Provider.BaseURL = "not a url"; c.Provider.APIKey = "k" }, wantErr: true},
		{name: "zero max runs", mutate: func(c *Config) { c.MaxRuns = 0; c.Provider.APIKey = "k" }, wantErr: true},
		{name: "stage temperature out of range", mutate: func(c *Config) {
			c.Provider.APIKey = "k"
			temperature := float32(3)
			c.Stages = map[string]Stage{"critique": {Temperature: &temperature}}
		}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.credential, errors.Is(err, ErrMissingCredential))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uxcrew.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":7000"
provider:
  name: cohere
  model: command-r
run_timeout: 2m
stages:
  mockup:
    model: command-r-plus
    temperature: 0.2
`), 0o600))
	t.Setenv("COHERE_API_KEY", "secret")
	t.Setenv("UXCREW_ADDR", "")
	t.Setenv("UXCREW_PROVIDER", "")
	t.Setenv("UXCREW_MODEL", "")
	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "cohere", cfg.Provider.Name)
	assert.Equal(t, "secret", cfg.Provider.APIKey)
	assert.Equal(t, 2*time.Minute, cfg.RunTimeout)
	require.Contains(t, cfg.Stages, "mockup")
	require.NotNil(t, cfg.Stages["mockup"].Temperature)
	assert.InDelta(t, 0.2, *cfg.Stages["mockup"].Temperature, 1e-6)
	assert.Equal(t, DefaultMaxRuns, cfg.MaxRuns)
}

func TestLoadDefaultModel(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("UXCREW_CONFIG", "")
	t.Setenv("UXCREW_MODEL", "")
	t.Setenv("UXCREW_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "secret")
	cfg, err := Load("", filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet-latest", cfg.Provider.Model)
	assert.Equal(t, DefaultModel, DefaultModelFor("openai"))
}
