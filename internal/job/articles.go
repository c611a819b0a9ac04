package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/runcalcs/runscout/internal/article"
	"github.com/runcalcs/runscout/internal/crawl"
	"github.com/runcalcs/runscout/internal/extract"
	"github.com/runcalcs/runscout/internal/metrics"
	"github.com/runcalcs/runscout/internal/notify"
	"github.com/runcalcs/runscout/internal/storage"
	"go.uber.org/zap"
)

// ArticleConfig carries the knobs for one article crawl invocation.
type ArticleConfig struct {
	Bucket   string
	Key      string
	Seeds    []string
	MaxPages int
}

// ArticleJob crawls the news seeds and refreshes the article snapshot.
type ArticleJob struct {
	cfg       ArticleConfig
	store     storage.Store
	fetcher   crawl.Fetcher
	publisher notify.Publisher
	clock     Clock
	logger    *zap.Logger
}

// NewArticleJob wires an article crawl job.
func NewArticleJob(cfg ArticleConfig, store storage.Store, fetcher crawl.Fetcher, publisher notify.Publisher, clock Clock, logger *zap.Logger) (*ArticleJob, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if len(cfg.Seeds) == 0 {
		return nil, fmt.Errorf("at least one seed URL is required")
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("snapshot key is required")
	}
	return &ArticleJob{
		cfg:       cfg,
		store:     store,
		fetcher:   fetcher,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}, nil
}

// Run executes one crawl. Stored articles come first in the merge so a
// previously seen title keeps its original record.
func (j *ArticleJob) Run(ctx context.Context) (Summary, error) {
	started := j.clock.Now()
	summary := Summary{
		RunID:     uuid.NewString(),
		Job:       "articles",
		Bucket:    j.cfg.Bucket,
		Key:       j.cfg.Key,
		StartedAt: started,
	}
	logger := j.logger.With(zap.String("run_id", summary.RunID), zap.String("job", "articles"))

	if err := j.store.EnsureBucket(ctx); err != nil {
		metrics.ObserveJob("articles", "error", j.clock.Now().Sub(started))
		return summary, fmt.Errorf("ensure bucket: %w", err)
	}

	existing, err := j.loadExisting(ctx)
	if err != nil {
		metrics.ObserveJob("articles", "error", j.clock.Now().Sub(started))
		return summary, err
	}
	summary.Existing = len(existing)

	var discovered []article.Article
	crawler := crawl.New(j.fetcher, crawl.ArticlePolicy(j.cfg.Seeds), j.cfg.MaxPages, logger)
	result := crawler.Run(ctx, j.cfg.Seeds, func(pageURL, html string) {
		found := extract.PageArticles(html, pageURL)
		metrics.ObserveRecords("article", len(found))
		discovered = append(discovered, found...)
	})
	summary.Pages = result.PagesFetched
	summary.PageErrors = result.PagesFailed
	summary.Discovered = len(discovered)

	merged := make([]article.Article, 0, len(existing)+len(discovered))
	merged = append(merged, existing...)
	merged = append(merged, discovered...)
	kept := article.Dedupe(merged)

	snapshot := article.NewSnapshot(kept, started)
	data, err := snapshot.Marshal()
	if err != nil {
		metrics.ObserveJob("articles", "error", j.clock.Now().Sub(started))
		return summary, err
	}
	if err := j.store.Save(ctx, j.cfg.Key, data); err != nil {
		metrics.ObserveJob("articles", "error", j.clock.Now().Sub(started))
		return summary, fmt.Errorf("save snapshot: %w", err)
	}

	summary.Stored = len(kept)
	summary.FinishedAt = j.clock.Now()
	metrics.SetSnapshotSize("article", len(kept))
	metrics.ObserveJob("articles", "success", summary.FinishedAt.Sub(started))

	logger.Info("article snapshot written",
		zap.Int("pages", summary.Pages),
		zap.Int("discovered", summary.Discovered),
		zap.Int("existing", summary.Existing),
		zap.Int("stored", summary.Stored))

	publishSummary(ctx, j.publisher, logger, summary)
	return summary, nil
}

func (j *ArticleJob) loadExisting(ctx context.Context) ([]article.Article, error) {
	data, found, err := j.store.Load(ctx, j.cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		return nil, nil
	}
	snapshot, err := article.UnmarshalSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decode stored snapshot: %w", err)
	}
	return snapshot.Articles, nil
}
