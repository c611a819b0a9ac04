// Package job holds the three serverless-style jobs: crawl races, crawl
// articles, generate the daily tip. Each invocation does one load, one
// compute, and one store, then reports a Summary.
package job

import (
	"context"
	"time"

	"github.com/runcalcs/runscout/internal/notify"
	"go.uber.org/zap"
)

// Clock supplies the current time so "today" and generated-at stamps are
// testable.
type Clock interface {
	Now() time.Time
}

// Summary describes one finished job run.
type Summary struct {
	RunID      string    `json:"run_id"`
	Job        string    `json:"job"`
	Bucket     string    `json:"bucket"`
	Key        string    `json:"key"`
	Pages      int       `json:"pages_fetched"`
	PageErrors int       `json:"pages_failed"`
	Discovered int       `json:"discovered"`
	Existing   int       `json:"existing"`
	Stored     int       `json:"stored"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// publishSummary sends the summary to the configured publisher. Failures are
// logged, not returned: the snapshot was already written and the run
// succeeded.
func publishSummary(ctx context.Context, publisher notify.Publisher, logger *zap.Logger, summary Summary) {
	if publisher == nil {
		return
	}
	id, err := publisher.Publish(ctx, summary)
	if err != nil {
		logger.Warn("failed to publish job summary",
			zap.String("job", summary.Job),
			zap.String("run_id", summary.RunID),
			zap.Error(err))
		return
	}
	if id != "" {
		logger.Debug("published job summary",
			zap.String("job", summary.Job),
			zap.String("message_id", id))
	}
}
