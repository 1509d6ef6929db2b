// Package petitions tracks petition registrations and their statutory
// response deadlines.
package petitions

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/shared"
)

// PetitionerType categorises who filed the petition.
type PetitionerType string

const (
	PetitionerCondamnat PetitionerType = "condamnat"
	PetitionerRuda      PetitionerType = "ruda"
	PetitionerAvocat    PetitionerType = "avocat"
	PetitionerOrganStat PetitionerType = "organ_stat"
	PetitionerAltul     PetitionerType = "altul"
)

var petitionerTypes = map[PetitionerType]bool{
	PetitionerCondamnat: true,
	PetitionerRuda:      true,
	PetitionerAvocat:    true,
	PetitionerOrganStat: true,
	PetitionerAltul:     true,
}

// ObjectType categorises what the petition asks for.
type ObjectType string

const (
	ObjectArt91      ObjectType = "art_91"
	ObjectArt92      ObjectType = "art_92"
	ObjectAmnistie   ObjectType = "amnistie"
	ObjectTransfer   ObjectType = "transfer"
	ObjectExecutare  ObjectType = "executare"
	ObjectCopiiDosar ObjectType = "copii_dosar"
	ObjectCopiiActe  ObjectType = "copii_acte"
	ObjectAltele     ObjectType = "altele"
)

var objectTypes = map[ObjectType]bool{
	ObjectArt91:      true,
	ObjectArt92:      true,
	ObjectAmnistie:   true,
	ObjectTransfer:   true,
	ObjectExecutare:  true,
	ObjectCopiiDosar: true,
	ObjectCopiiActe:  true,
	ObjectAltele:     true,
}

// Status follows the petition through examination.
type Status string

const (
	StatusInregistrata   Status = "inregistrata"
	StatusInExaminare    Status = "in_examinare"
	StatusSolutionata    Status = "solutionata"
	StatusRespinsa       Status = "respinsa"
	StatusRedirectionata Status = "redirectionata"
)

var statuses = map[Status]bool{
	StatusInregistrata:   true,
	StatusInExaminare:    true,
	StatusSolutionata:    true,
	StatusRespinsa:       true,
	StatusRedirectionata: true,
}

func ValidPetitionerType(t PetitionerType) bool { return petitionerTypes[t] }
func ValidObjectType(t ObjectType) bool         { return objectTypes[t] }
func ValidStatus(s Status) bool                 { return statuses[s] }

// Deadlines carries the statutory response window, in days.
type Deadlines struct {
	ResponseDays int
	DueSoonDays  int
}

// DefaultDeadlines mirrors the configuration defaults: 12 days to respond,
// warn at 3 days before.
func DefaultDeadlines() Deadlines {
	return Deadlines{ResponseDays: 12, DueSoonDays: 3}
}

// Petition is one registered petition. The registration number is
// PREFIX-SEQ/YY, sequential per prefix and year.
type Petition struct {
	ID                 uuid.UUID
	RegistrationPrefix string
	RegistrationSeq    int
	RegistrationYear   int
	RegistrationDate   time.Time
	PetitionerType     PetitionerType
	PetitionerName     string
	DetaineeFullName   string
	ObjectType         ObjectType
	ObjectDescription  string
	Status             Status
	AssignedTo         *uuid.UUID
	ResolutionDate     *time.Time
	ResolutionText     string
	CreatedBy          uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RegistrationNumber renders the registry format, e.g. P-41/26.
func (p *Petition) RegistrationNumber() string {
	return fmt.Sprintf("%s-%d/%02d", p.RegistrationPrefix, p.RegistrationSeq, p.RegistrationYear%100)
}

// ResponseDueDate is the registration date plus the statutory response
// window.
func (p *Petition) ResponseDueDate(d Deadlines) time.Time {
	return p.RegistrationDate.AddDate(0, 0, d.ResponseDays)
}

// Resolved reports whether the petition no longer counts against deadlines.
func (p *Petition) Resolved() bool {
	return p.Status == StatusSolutionata
}

// IsOverdue reports whether the response window has passed.
func (p *Petition) IsOverdue(d Deadlines, today time.Time) bool {
	if p.Resolved() {
		return false
	}
	return today.After(p.ResponseDueDate(d))
}

// IsDueSoon reports whether the due date is within the warning window but
// not yet passed.
func (p *Petition) IsDueSoon(d Deadlines, today time.Time) bool {
	if p.Resolved() || p.IsOverdue(d, today) {
		return false
	}
	return p.DaysUntilDue(d, today) <= d.DueSoonDays
}

// DaysUntilDue counts whole days until the due date, negative once passed.
func (p *Petition) DaysUntilDue(d Deadlines, today time.Time) int {
	return int(p.ResponseDueDate(d).Sub(today) / (24 * time.Hour))
}

// NotificationType labels a petition notification.
type NotificationType string

const (
	NotificationOverdue  NotificationType = "overdue"
	NotificationDueSoon  NotificationType = "due_soon"
	NotificationAssigned NotificationType = "assigned"
)

// Notification is one deadline or assignment notice addressed to a user.
type Notification struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"user_id"`
	Type       NotificationType `json:"type"`
	PetitionID uuid.UUID        `json:"petition_id"`
	Message    string           `json:"message"`
	DueDate    time.Time        `json:"due_date"`
	IsRead     bool             `json:"is_read"`
	CreatedAt  time.Time        `json:"created_at"`
}

var (
	// ErrPetitionNotFound occurs when the petition id is unknown.
	ErrPetitionNotFound = fmt.Errorf("petitions: petition %w", shared.ErrNotFound)
	// ErrNotificationNotFound occurs when the notification id is unknown or
	// addressed to another user.
	ErrNotificationNotFound = fmt.Errorf("petitions: notification %w", shared.ErrNotFound)
)
