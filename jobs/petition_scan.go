package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/termene/termene/internal/petitions"
)

// PetitionScanJob notifies recipients about petitions that are overdue or
// approaching their statutory response deadline.
type PetitionScanJob struct {
	Petitions *petitions.Service
	Logger    *slog.Logger
	clock     func() time.Time
}

// NewPetitionScanJob initialises the petition deadline scan handler.
func NewPetitionScanJob(petitionService *petitions.Service, logger *slog.Logger) *PetitionScanJob {
	return &PetitionScanJob{
		Petitions: petitionService,
		Logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the deadline scan.
func (j *PetitionScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Petitions == nil {
		return errors.New("petition scan: handler not configured")
	}
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := j.clock()
	j.Logger.Info("starting petition deadline scan")

	created, err := j.Petitions.ScanDue(ctx)
	if err != nil {
		j.Logger.Error("petition deadline scan failed",
			slog.Int("created", created),
			slog.Any("error", err),
		)
		return err
	}

	j.Logger.Info("completed petition deadline scan",
		slog.Int("notifications", created),
		slog.Duration("duration", j.clock().Sub(start)),
	)
	return nil
}
