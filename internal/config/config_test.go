package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mhpenta/imageedit"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imageedit.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	path := writeConfig(t, `
api_key: file-key
model: pro-image
listen: 127.0.0.1:9000
save_dir: /tmp/out
log_level: debug
generation:
  temperature: 0.5
  aspect_ratio: "16:9"
  size: 2K
  wait_on_rate_limit: true
  max_wait: 30s
safety:
  - category: HARM_CATEGORY_HATE_SPEECH
    threshold: BLOCK_LOW_AND_ABOVE
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.APIKey != "file-key" || cfg.Listen != "127.0.0.1:9000" || cfg.SaveDir != "/tmp/out" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Generation.MaxWait != 30*time.Second {
		t.Errorf("max_wait = %v", cfg.Generation.MaxWait)
	}
	if level, _ := cfg.Level(); level != slog.LevelDebug {
		t.Errorf("Level() = %v", level)
	}

	gc := cfg.GenerateConfig()
	if gc.Model != imageedit.ModelProImage {
		t.Errorf("model = %q", gc.Model)
	}
	if *gc.Temperature != 0.5 || *gc.TopP != 0.95 || *gc.TopK != 40 {
		t.Errorf("sampling = %v %v %v", *gc.Temperature, *gc.TopP, *gc.TopK)
	}
	if gc.AspectRatio != imageedit.AspectRatio16x9 || gc.Size != imageedit.ImageSize2K {
		t.Errorf("image config = %q %q", gc.AspectRatio, gc.Size)
	}
	if !gc.WaitOnRateLimit || gc.MaxWaitDuration != 30*time.Second {
		t.Errorf("rate limit policy = %v %v", gc.WaitOnRateLimit, gc.MaxWaitDuration)
	}
	want := []imageedit.SafetySetting{
		{Category: imageedit.SafetyCategoryHateSpeech, Threshold: imageedit.SafetyThresholdBlockLowAndUp},
	}
	if diff := cmp.Diff(want, gc.SafetySettings); diff != "" {
		t.Errorf("safety mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "env-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("api key should fall back to %s, got %q", APIKeyEnv, cfg.APIKey)
	}
	if cfg.Listen != DefaultListen || cfg.Model != string(imageedit.ModelDefault) {
		t.Errorf("unexpected defaults %+v", cfg)
	}

	pc := cfg.ProviderConfig()
	if pc.APIKey != "env-key" || pc.Provider != imageedit.ProviderGeminiAPI {
		t.Errorf("unexpected provider config %+v", pc)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if _, err := Load(writeConfig(t, "generation: [1, 2")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing key", mutate: func(c *Config) { c.APIKey = "" }, wantErr: true},
		{name: "bad size", mutate: func(c *Config) { c.Generation.Size = "8K" }, wantErr: true},
		{name: "bad aspect ratio", mutate: func(c *Config) { c.Generation.AspectRatio = "5:1" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "upper case log level", mutate: func(c *Config) { c.LogLevel = "WARN" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.APIKey = "key"
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	cfg := Default()
	if err := cfg.Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}
