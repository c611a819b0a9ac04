package job

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/runcalcs/runscout/internal/crawl"
	"github.com/runcalcs/runscout/internal/extract"
	"github.com/runcalcs/runscout/internal/metrics"
	"github.com/runcalcs/runscout/internal/notify"
	"github.com/runcalcs/runscout/internal/race"
	"github.com/runcalcs/runscout/internal/storage"
	"go.uber.org/zap"
)

// RaceConfig carries the knobs for one race crawl invocation.
type RaceConfig struct {
	Bucket   string
	Key      string
	Seeds    []string
	MaxPages int
}

// RaceJob crawls the seed calendars and refreshes the marathon snapshot.
type RaceJob struct {
	cfg       RaceConfig
	store     storage.Store
	fetcher   crawl.Fetcher
	publisher notify.Publisher
	clock     Clock
	logger    *zap.Logger
}

// NewRaceJob wires a race crawl job.
func NewRaceJob(cfg RaceConfig, store storage.Store, fetcher crawl.Fetcher, publisher notify.Publisher, clock Clock, logger *zap.Logger) (*RaceJob, error) {
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
	return &RaceJob{
		cfg:       cfg,
		store:     store,
		fetcher:   fetcher,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}, nil
}

// Run executes one crawl: load the stored snapshot, crawl the seeds, merge,
// filter, and store the result.
func (j *RaceJob) Run(ctx context.Context) (Summary, error) {
	started := j.clock.Now()
	summary := Summary{
		RunID:     uuid.NewString(),
		Job:       "races",
		Bucket:    j.cfg.Bucket,
		Key:       j.cfg.Key,
		StartedAt: started,
	}
	logger := j.logger.With(zap.String("run_id", summary.RunID), zap.String("job", "races"))

	if err := j.store.EnsureBucket(ctx); err != nil {
		metrics.ObserveJob("races", "error", j.clock.Now().Sub(started))
		return summary, fmt.Errorf("ensure bucket: %w", err)
	}

	existing, err := j.loadExisting(ctx)
	if err != nil {
		metrics.ObserveJob("races", "error", j.clock.Now().Sub(started))
		return summary, err
	}
	summary.Existing = len(existing)

	stamp := started.Format(time.RFC3339)
	var discovered []race.Race
	crawler := crawl.New(j.fetcher, crawl.RacePolicy(j.cfg.Seeds), j.cfg.MaxPages, logger)
	result := crawler.Run(ctx, j.cfg.Seeds, func(pageURL, html string) {
		found := extract.PageRaces(html, pageURL)
		for i := range found {
			found[i].FirstSeen = stamp
			found[i].LastSeen = stamp
			found[i].LastVerified = stamp
		}
		metrics.ObserveRecords("race", len(found))
		discovered = append(discovered, found...)
	})
	summary.Pages = result.PagesFetched
	summary.PageErrors = result.PagesFailed
	summary.Discovered = len(discovered)

	merged := make([]race.Race, 0, len(existing)+len(discovered))
	merged = append(merged, existing...)
	merged = append(merged, discovered...)
	merged = append(merged, race.Curated()...)
	kept := race.DedupeAndFilter(merged, started)

	snapshot := race.NewSnapshot(kept, started)
	data, err := snapshot.Marshal()
	if err != nil {
		metrics.ObserveJob("races", "error", j.clock.Now().Sub(started))
		return summary, err
	}
	if err := j.store.Save(ctx, j.cfg.Key, data); err != nil {
		metrics.ObserveJob("races", "error", j.clock.Now().Sub(started))
		return summary, fmt.Errorf("save snapshot: %w", err)
	}

	summary.Stored = len(kept)
	summary.FinishedAt = j.clock.Now()
	metrics.SetSnapshotSize("race", len(kept))
	metrics.ObserveJob("races", "success", summary.FinishedAt.Sub(started))

	logger.Info("race snapshot written",
		zap.Int("pages", summary.Pages),
		zap.Int("discovered", summary.Discovered),
		zap.Int("existing", summary.Existing),
		zap.Int("stored", summary.Stored))

	publishSummary(ctx, j.publisher, logger, summary)
	return summary, nil
}

func (j *RaceJob) loadExisting(ctx context.Context) ([]race.Race, error) {
	data, found, err := j.store.Load(ctx, j.cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		return nil, nil
	}
	snapshot, err := race.UnmarshalSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decode stored snapshot: %w", err)
	}
	return snapshot.Races, nil
}
