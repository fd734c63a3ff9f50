// Package config loads the process configuration for the imageedit CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mhpenta/imageedit"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv is read when the file does not set api_key.
const APIKeyEnv = "GEMINI_API_KEY"

const DefaultListen = ":8080"

var ErrMissingAPIKey = errors.New("no API key: set api_key or " + APIKeyEnv)

// Config is the on-disk configuration.
type Config struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Listen   string `yaml:"listen"`
	SaveDir  string `yaml:"save_dir"`
	LogLevel string `yaml:"log_level"`

	Generation Generation                `yaml:"generation"`
	Safety     []imageedit.SafetySetting `yaml:"safety"`
}

// Generation overrides the default sampling and image settings.
type Generation struct {
	Temperature     *float32      `yaml:"temperature"`
	TopP            *float32      `yaml:"top_p"`
	TopK            *float32      `yaml:"top_k"`
	AspectRatio     string        `yaml:"aspect_ratio"`
	Size            string        `yaml:"size"`
	EnableThinking  bool          `yaml:"enable_thinking"`
	WaitOnRateLimit bool          `yaml:"wait_on_rate_limit"`
	MaxWait         time.Duration `yaml:"max_wait"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Model:    string(imageedit.ModelDefault),
		Listen:   DefaultListen,
		LogLevel: "info",
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
// The API key falls back to GEMINI_API_KEY.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(APIKeyEnv)
	}

	return cfg, nil
}

var validSizes = map[string]bool{
	"":                            true,
	string(imageedit.ImageSize1K): true,
	string(imageedit.ImageSize2K): true,
	string(imageedit.ImageSize4K): true,
}

var validAspectRatios = map[string]bool{
	string(imageedit.AspectRatioAuto): true,
	string(imageedit.AspectRatio1x1):  true,
	string(imageedit.AspectRatio16x9): true,
	string(imageedit.AspectRatio9x16): true,
	string(imageedit.AspectRatio4x3):  true,
	string(imageedit.AspectRatio3x4):  true,
	string(imageedit.AspectRatio2x3):  true,
	string(imageedit.AspectRatio3x2):  true,
}

// Validate checks the values a provider cannot be built without, and the enums.
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if !validSizes[c.Generation.Size] {
		errs = append(errs, fmt.Errorf("generation.size: unsupported value %q", c.Generation.Size))
	}
	if !validAspectRatios[c.Generation.AspectRatio] {
		errs = append(errs, fmt.Errorf("generation.aspect_ratio: unsupported value %q", c.Generation.AspectRatio))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// GenerateConfig builds the per-turn config from the defaults and overrides.
func (c *Config) GenerateConfig() *imageedit.GenerateConfig {
	gc := imageedit.DefaultConfig()
	if c.Model != "" {
		gc.Model = imageedit.Model(c.Model)
	}

	g := c.Generation
	if g.Temperature != nil {
		gc.Temperature = g.Temperature
	}
	if g.TopP != nil {
		gc.TopP = g.TopP
	}
	if g.TopK != nil {
		gc.TopK = g.TopK
	}
	gc.AspectRatio = imageedit.AspectRatio(g.AspectRatio)
	gc.Size = imageedit.ImageSize(g.Size)
	gc.EnableThinking = g.EnableThinking
	gc.WaitOnRateLimit = g.WaitOnRateLimit
	gc.MaxWaitDuration = g.MaxWait
	gc.SafetySettings = c.Safety

	return gc
}

// ProviderConfig returns the provider settings.
func (c *Config) ProviderConfig() *imageedit.ProviderConfig {
	return &imageedit.ProviderConfig{
		Provider: imageedit.ProviderGeminiAPI,
		APIKey:   c.APIKey,
		BaseURL:  c.BaseURL,
	}
}
