package job

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/runcalcs/runscout/internal/metrics"
	"github.com/runcalcs/runscout/internal/notify"
	"github.com/runcalcs/runscout/internal/storage"
	"github.com/runcalcs/runscout/internal/tip"
	"go.uber.org/zap"
)

// TipConfig carries the knobs for one tip generation run.
type TipConfig struct {
	Bucket    string
	KeyPrefix string
	Model     string
}

// TipJob generates the daily running tip and stores it under a dated key.
type TipJob struct {
	cfg       TipConfig
	store     storage.Store
	generator tip.Generator
	publisher notify.Publisher
	clock     Clock
	logger    *zap.Logger
	rng       *rand.Rand
}

// NewTipJob wires a tip generation job.
func NewTipJob(cfg TipConfig, store storage.Store, generator tip.Generator, publisher notify.Publisher, clock Clock, logger *zap.Logger) (*TipJob, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if cfg.KeyPrefix == "" {
		return nil, fmt.Errorf("key prefix is required")
	}
	return &TipJob{
		cfg:       cfg,
		store:     store,
		generator: generator,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // category choice needs no crypto randomness
	}, nil
}

// Run generates one tip. requestedCategory is honored when it names a known
// category; otherwise a random one is picked.
func (j *TipJob) Run(ctx context.Context, requestedCategory string) (Summary, error) {
	started := j.clock.Now()
	category := tip.ChooseCategory(requestedCategory, j.rng)
	key := tip.DatedKey(j.cfg.KeyPrefix, started)

	summary := Summary{
		RunID:     uuid.NewString(),
		Job:       "tip",
		Bucket:    j.cfg.Bucket,
		Key:       key,
		StartedAt: started,
	}
	logger := j.logger.With(zap.String("run_id", summary.RunID), zap.String("job", "tip"))

	if err := j.store.EnsureBucket(ctx); err != nil {
		metrics.ObserveJob("tip", "error", j.clock.Now().Sub(started))
		return summary, fmt.Errorf("ensure bucket: %w", err)
	}

	text, err := j.generator.Generate(ctx, category)
	if err != nil {
		metrics.ObserveJob("tip", "error", j.clock.Now().Sub(started))
		return summary, fmt.Errorf("generate tip: %w", err)
	}

	record := tip.RunningTip{
		Category:    category,
		Tip:         text,
		Model:       j.cfg.Model,
		GeneratedAt: started.Format(time.RFC3339),
	}
	data, err := record.Marshal()
	if err != nil {
		metrics.ObserveJob("tip", "error", j.clock.Now().Sub(started))
		return summary, err
	}
	if err := j.store.Save(ctx, key, data); err != nil {
		metrics.ObserveJob("tip", "error", j.clock.Now().Sub(started))
		return summary, fmt.Errorf("save tip: %w", err)
	}

	summary.Stored = 1
	summary.FinishedAt = j.clock.Now()
	metrics.ObserveJob("tip", "success", summary.FinishedAt.Sub(started))

	logger.Info("tip stored", zap.String("category", category), zap.String("key", key))

	publishSummary(ctx, j.publisher, logger, summary)
	return summary, nil
}
