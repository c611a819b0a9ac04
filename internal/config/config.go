// Package config loads and validates runscout configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Storage StorageConfig `mapstructure:"storage"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Secrets SecretsConfig `mapstructure:"secrets"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// StorageConfig selects the snapshot backend and its object keys.
type StorageConfig struct {
	Provider       string   `mapstructure:"provider"`
	Bucket         string   `mapstructure:"bucket"`
	ProjectID      string   `mapstructure:"project_id"`
	LocalDir       string   `mapstructure:"local_dir"`
	RacesKey       string   `mapstructure:"races_key"`
	ArticlesKey    string   `mapstructure:"articles_key"`
	TipsPrefix     string   `mapstructure:"tips_prefix"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CrawlerConfig governs the crawl frontier and fetcher identity.
type CrawlerConfig struct {
	RaceSeeds        []string `mapstructure:"race_seeds"`
	ArticleSeeds     []string `mapstructure:"article_seeds"`
	MaxPages         int      `mapstructure:"max_pages"`
	UserAgent        string   `mapstructure:"user_agent"`
	BrowserUserAgent string   `mapstructure:"browser_user_agent"`
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// OpenAIConfig configures the tip generator.
type OpenAIConfig struct {
	Model          string `mapstructure:"model"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SecretsConfig selects where the OpenAI API key comes from.
type SecretsConfig struct {
	Provider  string `mapstructure:"provider"`
	Name      string `mapstructure:"name"`
	ProjectID string `mapstructure:"project_id"`
}

// NotifyConfig holds metadata for publish-subscribe notifications.
type NotifyConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RUNSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.provider", "memory")
	v.SetDefault("storage.bucket", "runscout-data")
	v.SetDefault("storage.local_dir", "data")
	v.SetDefault("storage.races_key", "races/marathons.json")
	v.SetDefault("storage.articles_key", "news/articles.json")
	v.SetDefault("storage.tips_prefix", "running-tips/tip")
	v.SetDefault("storage.allowed_origins", []string{
		"https://runcalcs.com",
		"https://www.runcalcs.com",
	})
	v.SetDefault("crawler.race_seeds", []string{
		"https://aims-worldrunning.org/calendar.html",
		"https://www.worldmarathonmajors.com/",
	})
	v.SetDefault("crawler.article_seeds", []string{
		"https://www.runnersworld.com/news/",
	})
	v.SetDefault("crawler.max_pages", 25)
	v.SetDefault("crawler.user_agent", "runscout-bot/1.0 (+https://runcalcs.com)")
	v.SetDefault("http.timeout_seconds", 20)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout_seconds", 30)
	v.SetDefault("secrets.provider", "env")
	v.SetDefault("secrets.name", "ChatGPTKey")
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Crawler.MaxPages <= 0 {
		return fmt.Errorf("crawler.max_pages must be > 0")
	}
	switch c.Storage.Provider {
	case "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket must be set for the gcs provider")
		}
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir must be set for the local provider")
		}
	case "memory", "noop":
	default:
		return fmt.Errorf("unknown storage.provider %q (valid: gcs, local, memory, noop)", c.Storage.Provider)
	}
	switch c.Secrets.Provider {
	case "gcpsm":
		if c.Secrets.ProjectID == "" {
			return fmt.Errorf("secrets.project_id must be set for the gcpsm provider")
		}
	case "env":
	default:
		return fmt.Errorf("unknown secrets.provider %q (valid: gcpsm, env)", c.Secrets.Provider)
	}
	switch c.Notify.Provider {
	case "pubsub":
		if c.Notify.ProjectID == "" || c.Notify.Topic == "" {
			return fmt.Errorf("notify.project_id and notify.topic must be set for the pubsub provider")
		}
	case "noop":
	default:
		return fmt.Errorf("unknown notify.provider %q (valid: pubsub, noop)", c.Notify.Provider)
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	return nil
}

// HTTPTimeout converts the configured timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// OpenAITimeout converts the configured OpenAI timeout into a duration.
func (c Config) OpenAITimeout() time.Duration {
	return time.Duration(c.OpenAI.TimeoutSeconds) * time.Second
}
