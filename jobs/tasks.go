package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskFractionRecalculate regenerates fraction dates for every active
	// sentence.
	TaskFractionRecalculate = "fractions:recalculate"
	// TaskAlertScan regenerates fraction alerts for every active recipient.
	TaskAlertScan = "alerts:scan"
	// TaskPetitionDueScan notifies recipients about petitions approaching or
	// past their response deadline.
	TaskPetitionDueScan = "petitions:due_scan"
)

// ScanPayload is shared by the nightly scan tasks.
type ScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewFractionRecalculateTask constructs the nightly recalculation task.
func NewFractionRecalculateTask(payload ScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFractionRecalculate, data), nil
}

// NewAlertScanTask constructs the nightly alert scan task.
func NewAlertScanTask(payload ScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAlertScan, data), nil
}

// NewPetitionDueScanTask constructs the nightly petition deadline scan task.
func NewPetitionDueScanTask(payload ScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPetitionDueScan, data), nil
}
