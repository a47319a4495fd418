// Package config loads uxcrew settings from a YAML file, a .env file and the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is returned when the selected provider has no API key
var ErrMissingCredential = errors.New("missing API credential")

const (
	DefaultAddr              = ":8501"
	DefaultProvider          = "openai"
	DefaultModel             = "gpt-4o-mini"
	DefaultRunTimeout        = 10 * time.Minute
	DefaultMaxRuns           = 50
	DefaultMaxUploadBytes    = 10 << 20
	DefaultMaxImageDimension = 2048
)

// Provider holds the settings of the generation service
type Provider struct {
	// Name is one of openai, anthropic, cohere, gemini
	Name      string `yaml:"name" validate:"required,provider"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens" validate:"gte=0"`
}

// Stage overrides the settings of a single pipeline stage
type Stage struct {
	Model       string   `yaml:"model"`
	Temperature *float32 `yaml:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   int      `yaml:"max_tokens" validate:"gte=0"`
}

// Stories configures structured user story extraction
type Stories struct {
	// Structured enables JSON mode extraction, only available with the openai provider
	Structured bool   `yaml:"structured"`
	Model      string `yaml:"model"`
}

// Config is the whole application configuration
type Config struct {
	Addr     string           `yaml:"addr" validate:"required"`
	LogLevel string           `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Provider Provider         `yaml:"provider"`
	Stages   map[string]Stage `yaml:"stages" validate:"dive"`
	Stories  Stories          `yaml:"stories"`
	// TemplatesDir overrides the embedded prompt templates, stages without file keep the default
	TemplatesDir      string        `yaml:"templates_dir"`
	RunTimeout        time.Duration `yaml:"run_timeout" validate:"gte=0"`
	MaxRuns           int           `yaml:"max_runs" validate:"gte=1"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes" validate:"gte=1"`
	MaxImageDimension int           `yaml:"max_image_dimension" validate:"gte=0"`
	// TokenEncoding selects a tiktoken encoding for prompt token estimates, word count when empty
	TokenEncoding string `yaml:"token_encoding"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Addr:     DefaultAddr,
		LogLevel: "info",
		Provider: Provider{
			Name: DefaultProvider,
		},
		RunTimeout:        DefaultRunTimeout,
		MaxRuns:           DefaultMaxRuns,
		MaxUploadBytes:    DefaultMaxUploadBytes,
		MaxImageDimension: DefaultMaxImageDimension,
	}
}

// Load reads .env files (missing ones are ignored), the YAML file at path when not empty,
// then applies environment overrides and validates the result.
func Load(path string, envFiles ...string) (*Config, error) {
	loadDotEnv(envFiles...)
	cfg := Default()
	if path == "" {
		path = os.Getenv("UXCREW_CONFIG")
	}
	if path != "" {
		bs, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(bs, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = DefaultModelFor(cfg.Provider.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(files ...string) {
	if len(files) == 0 {
		// silently ignore if not found
		_ = godotenv.Load()
		return
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overrides settings from environment variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("UXCREW_ADDR"); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup("UXCREW_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup("UXCREW_PROVIDER"); ok && v != "" {
		c.Provider.Name = strings.ToLower(v)
	}
	if v, ok := lookup("UXCREW_MODEL"); ok && v != "" {
		c.Provider.Model = v
	}
	if v, ok := lookup("UXCREW_TEMPLATES_DIR"); ok && v != "" {
		c.TemplatesDir = v
	}
	if v, ok := lookup("UXCREW_TOKEN_ENCODING"); ok {
		c.TokenEncoding = v
	}
	if v, ok := lookup("UXCREW_RUN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("UXCREW_RUN_TIMEOUT: %w", err)
		}
		c.RunTimeout = d
	}
	if v, ok := lookup("UXCREW_MAX_RUNS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("UXCREW_MAX_RUNS: %w", err)
		}
		c.MaxRuns = n
	}
	prefix := EnvPrefix(c.Provider.Name)
	if prefix == "" {
		return nil
	}
	if v, ok := lookup(prefix + "_API_KEY"); ok && v != "" {
		c.Provider.APIKey = v
	}
	if v, ok := lookup(prefix + "_API_BASE_URL"); ok && v != "" {
		c.Provider.BaseURL = v
	}
	return nil
}

// EnvPrefix returns the environment variable prefix of a provider credential
func EnvPrefix(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI"
	case "anthropic":
		return "ANTHROPIC"
	case "cohere":
		return "COHERE"
	case "gemini":
		return "GEMINI"
	}
	return ""
}

// DefaultModelFor returns the model used when none is configured for a provider
func DefaultModelFor(provider string) string {
	switch provider {
	case "anthropic":
		return "claude-3-5-sonnet-latest"
	case "cohere":
		return "command-r-plus"
	case "gemini":
		return "gemini-1.5-flash"
	}
	return DefaultModel
}

// HasCredential reports whether the selected provider has an API key
func (c *Config) HasCredential() bool {
	return c.Provider.APIKey != ""
}

// Validate checks field constraints and the provider credential
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !c.HasCredential() {
		return fmt.Errorf("%w: set %s_API_KEY for provider %s", ErrMissingCredential, EnvPrefix(c.Provider.Name), c.Provider.Name)
	}
	return nil
}
