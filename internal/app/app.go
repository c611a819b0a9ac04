// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"net/http"

	"cloud.google.com/go/pubsub"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	gcs "cloud.google.com/go/storage"
	"github.com/runcalcs/runscout/internal/clock/system"
	"github.com/runcalcs/runscout/internal/config"
	"github.com/runcalcs/runscout/internal/fetch"
	"github.com/runcalcs/runscout/internal/job"
	"github.com/runcalcs/runscout/internal/logging"
	"github.com/runcalcs/runscout/internal/metrics"
	"github.com/runcalcs/runscout/internal/notify"
	"github.com/runcalcs/runscout/internal/secrets"
	"github.com/runcalcs/runscout/internal/storage"
	"github.com/runcalcs/runscout/internal/tip"
	"go.uber.org/zap"
)

// App holds the shared, long-lived services for the application. It is
// initialized once at startup and passed to the components that need it.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Store     storage.Store
	Secrets   secrets.Provider
	Publisher notify.Publisher
	Clock     job.Clock
	Fetcher   *fetch.Fetcher
}

// New creates and initializes an App from configuration. It instantiates the
// configured providers and fails fast when any critical service cannot be
// initialized.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	metrics.Init()

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	secretProvider, err := newSecrets(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	publisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.New(fetch.Config{
		UserAgent:        cfg.Crawler.UserAgent,
		BrowserUserAgent: cfg.Crawler.BrowserUserAgent,
		Timeout:          cfg.HTTPTimeout(),
	}, logger)

	logger.Info("application services initialized",
		zap.String("storage", cfg.Storage.Provider),
		zap.String("secrets", cfg.Secrets.Provider),
		zap.String("notify", cfg.Notify.Provider))

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Secrets:   secretProvider,
		Publisher: publisher,
		Clock:     system.New(),
		Fetcher:   fetcher,
	}, nil
}

func newStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Storage.Provider {
	case "gcs":
		logger.Info("using GCS snapshot store", zap.String("bucket", cfg.Storage.Bucket))
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		return storage.NewGCS(client, storage.GCSConfig{
			Bucket:         cfg.Storage.Bucket,
			ProjectID:      cfg.Storage.ProjectID,
			AllowedOrigins: cfg.Storage.AllowedOrigins,
		})
	case "local":
		logger.Info("using local snapshot store", zap.String("dir", cfg.Storage.LocalDir))
		return storage.NewLocal(cfg.Storage.LocalDir)
	case "memory":
		logger.Info("using in-memory snapshot store; snapshots are lost on exit")
		return storage.NewMemory(), nil
	case "noop":
		logger.Info("using no-op snapshot store; nothing will be persisted")
		return storage.NoOp{}, nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}
}

func newSecrets(ctx context.Context, cfg config.Config, logger *zap.Logger) (secrets.Provider, error) {
	switch cfg.Secrets.Provider {
	case "gcpsm":
		logger.Info("using GCP Secret Manager", zap.String("project", cfg.Secrets.ProjectID))
		client, err := secretmanager.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create secret manager client: %w", err)
		}
		return secrets.NewGCPSM(client, cfg.Secrets.ProjectID)
	case "env":
		return secrets.Env{}, nil
	default:
		return nil, fmt.Errorf("unknown secrets provider: %s", cfg.Secrets.Provider)
	}
}

func newPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (notify.Publisher, error) {
	switch cfg.Notify.Provider {
	case "pubsub":
		logger.Info("publishing job summaries to Pub/Sub", zap.String("topic", cfg.Notify.Topic))
		client, err := pubsub.NewClient(ctx, cfg.Notify.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("create pubsub client: %w", err)
		}
		return notify.NewPubSub(ctx, client, cfg.Notify.Topic)
	case "noop":
		return notify.NoOp{}, nil
	default:
		return nil, fmt.Errorf("unknown notify provider: %s", cfg.Notify.Provider)
	}
}

// RaceJob builds the race crawl job from the container's services.
func (a *App) RaceJob() (*job.RaceJob, error) {
	return job.NewRaceJob(job.RaceConfig{
		Bucket:   a.Config.Storage.Bucket,
		Key:      a.Config.Storage.RacesKey,
		Seeds:    a.Config.Crawler.RaceSeeds,
		MaxPages: a.Config.Crawler.MaxPages,
	}, a.Store, a.Fetcher, a.Publisher, a.Clock, a.Logger)
}

// ArticleJob builds the article crawl job from the container's services.
func (a *App) ArticleJob() (*job.ArticleJob, error) {
	return job.NewArticleJob(job.ArticleConfig{
		Bucket:   a.Config.Storage.Bucket,
		Key:      a.Config.Storage.ArticlesKey,
		Seeds:    a.Config.Crawler.ArticleSeeds,
		MaxPages: a.Config.Crawler.MaxPages,
	}, a.Store, a.Fetcher, a.Publisher, a.Clock, a.Logger)
}

// TipJob builds the tip generation job, resolving the OpenAI API key from
// the configured secret provider.
func (a *App) TipJob(ctx context.Context) (*job.TipJob, error) {
	apiKey, err := secrets.APIKey(ctx, a.Secrets, a.Config.Secrets.Name)
	if err != nil {
		return nil, err
	}

	generator, err := tip.NewOpenAI(apiKey,
		tip.WithModel(a.Config.OpenAI.Model),
		tip.WithBaseURL(a.Config.OpenAI.BaseURL),
		tip.WithHTTPClient(&http.Client{Timeout: a.Config.OpenAITimeout()}),
	)
	if err != nil {
		return nil, err
	}

	return job.NewTipJob(job.TipConfig{
		Bucket:    a.Config.Storage.Bucket,
		KeyPrefix: a.Config.Storage.TipsPrefix,
		Model:     generator.Model(),
	}, a.Store, generator, a.Publisher, a.Clock, a.Logger)
}

// Close releases the container's resources.
func (a *App) Close() {
	if p, ok := a.Publisher.(*notify.PubSub); ok {
		p.Stop()
	}
	_ = a.Logger.Sync()
}
