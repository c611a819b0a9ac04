package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Provider != "memory" {
		t.Fatalf("expected memory storage provider, got %q", cfg.Storage.Provider)
	}
	if cfg.Storage.RacesKey != "races/marathons.json" {
		t.Fatalf("unexpected races key %q", cfg.Storage.RacesKey)
	}
	if cfg.Crawler.MaxPages != 25 {
		t.Fatalf("expected max pages 25, got %d", cfg.Crawler.MaxPages)
	}
	if len(cfg.Crawler.RaceSeeds) == 0 {
		t.Fatal("expected default race seeds")
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model %q", cfg.OpenAI.Model)
	}
	if cfg.Secrets.Name != "ChatGPTKey" {
		t.Fatalf("unexpected secret name %q", cfg.Secrets.Name)
	}
	if got := cfg.HTTPTimeout(); got != 20*time.Second {
		t.Fatalf("expected http timeout 20s, got %v", got)
	}
	if got := cfg.OpenAITimeout(); got != 30*time.Second {
		t.Fatalf("expected openai timeout 30s, got %v", got)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
auth:
  enabled: true
  api_key: secret
storage:
  provider: gcs
  bucket: custom-bucket
  project_id: my-project
  races_key: races/custom.json
  allowed_origins: ["https://example.com"]
crawler:
  race_seeds: ["https://races.example.com/calendar"]
  article_seeds: ["https://news.example.com/"]
  max_pages: 40
  user_agent: custom-agent
http:
  timeout_seconds: 45
openai:
  model: gpt-4.1
secrets:
  provider: gcpsm
  project_id: my-project
  name: openai-key
notify:
  provider: pubsub
  project_id: my-project
  topic: runscout-events
logging:
  development: false
  level: warn
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if !cfg.Auth.Enabled || cfg.Auth.APIKey != "secret" {
		t.Fatal("expected auth enabled with secret key")
	}
	if cfg.Storage.Provider != "gcs" || cfg.Storage.Bucket != "custom-bucket" {
		t.Fatalf("expected storage overrides to apply: %+v", cfg.Storage)
	}
	if len(cfg.Crawler.RaceSeeds) != 1 || cfg.Crawler.RaceSeeds[0] != "https://races.example.com/calendar" {
		t.Fatalf("expected race seed override: %+v", cfg.Crawler.RaceSeeds)
	}
	if cfg.OpenAI.Model != "gpt-4.1" {
		t.Fatalf("unexpected model %q", cfg.OpenAI.Model)
	}
	if cfg.Notify.Provider != "pubsub" || cfg.Notify.Topic != "runscout-events" {
		t.Fatalf("expected notify overrides: %+v", cfg.Notify)
	}
	if cfg.Logging.Development || cfg.Logging.Level != "warn" {
		t.Fatalf("expected logging overrides: %+v", cfg.Logging)
	}
	if got := cfg.HTTPTimeout(); got != 45*time.Second {
		t.Fatalf("expected http timeout 45s, got %v", got)
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	base := func() Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantSub: "server.port",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.HTTP.TimeoutSeconds = 0 },
			wantSub: "http.timeout_seconds",
		},
		{
			name:    "bad max pages",
			mutate:  func(c *Config) { c.Crawler.MaxPages = -1 },
			wantSub: "crawler.max_pages",
		},
		{
			name:    "unknown storage provider",
			mutate:  func(c *Config) { c.Storage.Provider = "s3" },
			wantSub: "storage.provider",
		},
		{
			name: "gcs without bucket",
			mutate: func(c *Config) {
				c.Storage.Provider = "gcs"
				c.Storage.Bucket = ""
			},
			wantSub: "storage.bucket",
		},
		{
			name:    "gcpsm without project",
			mutate:  func(c *Config) { c.Secrets.Provider = "gcpsm" },
			wantSub: "secrets.project_id",
		},
		{
			name:    "pubsub without topic",
			mutate:  func(c *Config) { c.Notify.Provider = "pubsub" },
			wantSub: "notify.project_id",
		},
		{
			name: "auth without key",
			mutate: func(c *Config) {
				c.Auth.Enabled = true
				c.Auth.APIKey = ""
			},
			wantSub: "auth.api_key",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
