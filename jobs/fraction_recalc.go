package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/termene/termene/internal/sentencing"
)

// FractionRecalcJob regenerates fraction dates for every active sentence.
// Scheduled nightly so yesterday's duration edits always land in the
// fraction tables before the morning alert scan.
type FractionRecalcJob struct {
	Sentences *sentencing.Service
	Logger    *slog.Logger
	clock     func() time.Time
}

// NewFractionRecalcJob initialises the recalculation handler.
func NewFractionRecalcJob(sentences *sentencing.Service, logger *slog.Logger) *FractionRecalcJob {
	return &FractionRecalcJob{
		Sentences: sentences,
		Logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the recalculation.
func (j *FractionRecalcJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sentences == nil {
		return errors.New("fraction recalc: handler not configured")
	}
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := j.clock()
	j.Logger.Info("starting fraction recalculation")

	count, err := j.Sentences.RecalculateAll(ctx)
	if err != nil {
		j.Logger.Error("fraction recalculation failed",
			slog.Int("recalculated", count),
			slog.Any("error", err),
		)
		return err
	}

	j.Logger.Info("completed fraction recalculation",
		slog.Int("sentences", count),
		slog.Duration("duration", j.clock().Sub(start)),
	)
	return nil
}
