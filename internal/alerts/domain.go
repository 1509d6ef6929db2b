package alerts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/shared"
)

// Alert is one notification row addressed to one user about one fraction.
type Alert struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Type       Class     `json:"alert_type"`
	Priority   Priority  `json:"priority"`
	FractionID uuid.UUID `json:"fraction_id"`
	SentenceID uuid.UUID `json:"sentence_id"`
	PersonID   uuid.UUID `json:"person_id"`
	PersonName string    `json:"person_name"`
	Message    string    `json:"message"`
	TargetDate time.Time `json:"target_date"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// EligibleFraction is a scan row: an unfulfilled fraction on an active
// sentence, joined with the person it concerns.
type EligibleFraction struct {
	FractionID     uuid.UUID
	FractionType   string
	CalculatedDate time.Time
	IsFulfilled    bool
	SentenceID     uuid.UUID
	PersonID       uuid.UUID
	PersonName     string
}

// Summary is the dashboard counter block.
type Summary struct {
	Overdue   int `json:"overdue"`
	Imminent  int `json:"imminent"`
	Upcoming  int `json:"upcoming"`
	Fulfilled int `json:"fulfilled"`
	Total     int `json:"total"`
}

// ErrAlertNotFound occurs when the alert id is unknown or belongs to another
// user.
var ErrAlertNotFound = fmt.Errorf("alerts: alert %w", shared.ErrNotFound)

// Message renders the Romanian operator-facing text for one classified
// fraction.
func Message(class Class, f EligibleFraction, daysUntil int) string {
	date := f.CalculatedDate.Format("02.01.2006")
	switch class {
	case ClassOverdue:
		return fmt.Sprintf("Termen depășit pentru %s: fracția %s a fost programată pentru %s (acum %d zile).",
			f.PersonName, f.FractionType, date, -daysUntil)
	case ClassImminent:
		return fmt.Sprintf("Termen iminent pentru %s: fracția %s în %d zile (%s).",
			f.PersonName, f.FractionType, daysUntil, date)
	case ClassUpcoming:
		return fmt.Sprintf("Termen în curând pentru %s: fracția %s în %d zile (%s).",
			f.PersonName, f.FractionType, daysUntil, date)
	default:
		return ""
	}
}
