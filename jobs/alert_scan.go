package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/termene/termene/internal/alerts"
)

// AlertScanJob regenerates fraction alerts for every active recipient.
type AlertScanJob struct {
	Alerts *alerts.Service
	Logger *slog.Logger
	clock  func() time.Time
}

// NewAlertScanJob initialises the alert scan handler.
func NewAlertScanJob(alertService *alerts.Service, logger *slog.Logger) *AlertScanJob {
	return &AlertScanJob{
		Alerts: alertService,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the alert scan.
func (j *AlertScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Alerts == nil {
		return errors.New("alert scan: handler not configured")
	}
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := j.clock()
	j.Logger.Info("starting alert scan")

	created, err := j.Alerts.GenerateForAll(ctx)
	if err != nil {
		j.Logger.Error("alert scan failed",
			slog.Int("created", created),
			slog.Any("error", err),
		)
		return err
	}

	j.Logger.Info("completed alert scan",
		slog.Int("alerts", created),
		slog.Duration("duration", j.clock().Sub(start)),
	)
	return nil
}
