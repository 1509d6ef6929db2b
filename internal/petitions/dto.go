package petitions

import (
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/shared"
)

type CreatePetitionRequest struct {
	RegistrationPrefix string         `json:"registration_prefix,omitempty" validate:"omitempty,max=5"`
	RegistrationDate   time.Time      `json:"registration_date" validate:"required"`
	PetitionerType     PetitionerType `json:"petitioner_type" validate:"required"`
	PetitionerName     string         `json:"petitioner_name" validate:"required,max=255"`
	DetaineeFullName   string         `json:"detainee_fullname,omitempty" validate:"omitempty,max=255"`
	ObjectType         ObjectType     `json:"object_type" validate:"required"`
	ObjectDescription  string         `json:"object_description,omitempty"`
}

func (r CreatePetitionRequest) Validate() error {
	if !ValidPetitionerType(r.PetitionerType) {
		return shared.Validationf("petitioner_type", "tip petiționar necunoscut")
	}
	if !ValidObjectType(r.ObjectType) {
		return shared.Validationf("object_type", "tip obiect necunoscut")
	}
	return nil
}

type UpdatePetitionRequest struct {
	PetitionerType    *PetitionerType `json:"petitioner_type,omitempty"`
	PetitionerName    *string         `json:"petitioner_name,omitempty" validate:"omitempty,max=255"`
	DetaineeFullName  *string         `json:"detainee_fullname,omitempty" validate:"omitempty,max=255"`
	ObjectType        *ObjectType     `json:"object_type,omitempty"`
	ObjectDescription *string         `json:"object_description,omitempty"`
	Status            *Status         `json:"status,omitempty"`
}

type AssignRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

type ResolveRequest struct {
	ResolutionDate time.Time `json:"resolution_date" validate:"required"`
	ResolutionText string    `json:"resolution_text" validate:"required"`
	Status         Status    `json:"status,omitempty"`
}

func (r ResolveRequest) Validate() error {
	if r.Status != "" {
		switch r.Status {
		case StatusSolutionata, StatusRespinsa, StatusRedirectionata:
		default:
			return shared.Validationf("status", "o rezoluție poate fi doar soluționată, respinsă sau redirecționată")
		}
	}
	return nil
}

type ListFilter struct {
	Status         *Status
	PetitionerType *PetitionerType
	ObjectType     *ObjectType
	AssignedTo     *uuid.UUID
	Page           int
	PerPage        int
}

// PetitionView is the serialized petition with deadline state resolved
// against today.
type PetitionView struct {
	ID                 uuid.UUID      `json:"id"`
	RegistrationNumber string         `json:"registration_number"`
	RegistrationDate   string         `json:"registration_date"`
	PetitionerType     PetitionerType `json:"petitioner_type"`
	PetitionerName     string         `json:"petitioner_name"`
	DetaineeFullName   string         `json:"detainee_fullname,omitempty"`
	ObjectType         ObjectType     `json:"object_type"`
	ObjectDescription  string         `json:"object_description,omitempty"`
	Status             Status         `json:"status"`
	AssignedTo         *uuid.UUID     `json:"assigned_to,omitempty"`
	ResponseDueDate    string         `json:"response_due_date"`
	IsOverdue          bool           `json:"is_overdue"`
	IsDueSoon          bool           `json:"is_due_soon"`
	DaysUntilDue       int            `json:"days_until_due"`
	ResolutionDate     *string        `json:"resolution_date,omitempty"`
	ResolutionText     string         `json:"resolution_text,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

const dateLayout = "2006-01-02"

func NewPetitionView(p *Petition, d Deadlines, today time.Time) PetitionView {
	view := PetitionView{
		ID:                 p.ID,
		RegistrationNumber: p.RegistrationNumber(),
		RegistrationDate:   p.RegistrationDate.Format(dateLayout),
		PetitionerType:     p.PetitionerType,
		PetitionerName:     p.PetitionerName,
		DetaineeFullName:   p.DetaineeFullName,
		ObjectType:         p.ObjectType,
		ObjectDescription:  p.ObjectDescription,
		Status:             p.Status,
		AssignedTo:         p.AssignedTo,
		ResponseDueDate:    p.ResponseDueDate(d).Format(dateLayout),
		IsOverdue:          p.IsOverdue(d, today),
		IsDueSoon:          p.IsDueSoon(d, today),
		DaysUntilDue:       p.DaysUntilDue(d, today),
		ResolutionText:     p.ResolutionText,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	if p.ResolutionDate != nil {
		formatted := p.ResolutionDate.Format(dateLayout)
		view.ResolutionDate = &formatted
	}
	return view
}
