package sentencing

import (
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/sentencing/calc"
	"github.com/termene/termene/internal/shared"
)

// CreateSentenceRequest registers a new sentence for a person.
type CreateSentenceRequest struct {
	PersonID         uuid.UUID `json:"person_id" validate:"required"`
	CrimeType        CrimeType `json:"crime_type" validate:"required"`
	CrimeDescription string    `json:"crime_description,omitempty"`
	Years            int       `json:"years" validate:"gte=0"`
	Months           int       `json:"months" validate:"gte=0"`
	Days             int       `json:"days" validate:"gte=0"`
	StartDate        time.Time `json:"start_date" validate:"required"`
	Status           Status    `json:"status,omitempty"`
	Notes            string    `json:"notes,omitempty"`
}

// Validate enforces the boundary rules the engine relies on.
func (r CreateSentenceRequest) Validate() error {
	if !ValidCrimeType(r.CrimeType) {
		return shared.Validationf("crime_type", "tip infracțiune necunoscut")
	}
	if r.Years == 0 && r.Months == 0 && r.Days == 0 {
		return shared.Validationf("duration", "durata sentinței trebuie să fie cel puțin o zi")
	}
	if r.Years < 0 || r.Months < 0 || r.Days < 0 {
		return shared.Validationf("duration", "durata nu poate fi negativă")
	}
	if r.Status != "" {
		switch r.Status {
		case StatusNew, StatusActive:
		default:
			return shared.Validationf("status", "o sentință nouă poate fi doar new sau active")
		}
	}
	return nil
}

// UpdateSentenceRequest edits sentence fields. Changing the start date or any
// duration component forces fraction regeneration.
type UpdateSentenceRequest struct {
	CrimeType        *CrimeType `json:"crime_type,omitempty"`
	CrimeDescription *string    `json:"crime_description,omitempty"`
	Years            *int       `json:"years,omitempty" validate:"omitempty,gte=0"`
	Months           *int       `json:"months,omitempty" validate:"omitempty,gte=0"`
	Days             *int       `json:"days,omitempty" validate:"omitempty,gte=0"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

// AddReductionRequest appends a legal reduction to the ledger.
type AddReductionRequest struct {
	LegalArticle string    `json:"legal_article" validate:"required,max=50"`
	Years        int       `json:"years" validate:"gte=0"`
	Months       int       `json:"months" validate:"gte=0"`
	Days         int       `json:"days" validate:"gte=0"`
	AppliedDate  time.Time `json:"applied_date" validate:"required"`
}

func (r AddReductionRequest) Validate() error {
	if r.LegalArticle == "" {
		return shared.Validationf("legal_article", "articolul legal este obligatoriu")
	}
	if r.Years == 0 && r.Months == 0 && r.Days == 0 {
		return shared.Validationf("duration", "reducerea trebuie să aibă cel puțin o zi")
	}
	return nil
}

// ArrestPeriodRequest adds or edits a preventive-arrest credit period.
type ArrestPeriodRequest struct {
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

func (r ArrestPeriodRequest) Validate() error {
	if !r.EndDate.After(r.StartDate) {
		return shared.Validationf("end_date", "data sfârșit trebuie să fie după data început")
	}
	return nil
}

// LaborCreditRequest adds or edits a labor-day credit for one calendar month.
type LaborCreditRequest struct {
	Month int `json:"month" validate:"gte=1,lte=12"`
	Year  int `json:"year" validate:"gte=2000,lte=2100"`
	Days  int `json:"days" validate:"gte=1,lte=31"`
}

func (r LaborCreditRequest) Validate() error {
	if r.Month < 1 || r.Month > 12 {
		return shared.Validationf("month", "luna trebuie să fie între 1 și 12")
	}
	if r.Year < 2000 || r.Year > 2100 {
		return shared.Validationf("year", "anul trebuie să fie valid")
	}
	if r.Days < 1 || r.Days > 31 {
		return shared.Validationf("days", "numărul de zile trebuie să fie între 1 și 31")
	}
	return nil
}

// UpdateFractionRequest edits the operator-owned annotation fields of a
// fraction. The calculated date is never editable.
type UpdateFractionRequest struct {
	IsFulfilled   *bool      `json:"is_fulfilled,omitempty"`
	FulfilledDate *time.Time `json:"fulfilled_date,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// ReleaseRequest finishes a sentence.
type ReleaseRequest struct {
	ReleaseDate time.Time `json:"release_date" validate:"required"`
}

// ListFilter narrows sentence listings.
type ListFilter struct {
	PersonID  *uuid.UUID
	Status    *Status
	CrimeType *CrimeType
	Page      int
	PerPage   int
}

// SentenceView is the detail representation with derived values resolved.
type SentenceView struct {
	ID                       uuid.UUID          `json:"id"`
	PersonID                 uuid.UUID          `json:"person_id"`
	CrimeType                CrimeType          `json:"crime_type"`
	CrimeDescription         string             `json:"crime_description,omitempty"`
	Years                    int                `json:"years"`
	Months                   int                `json:"months"`
	Days                     int                `json:"days"`
	StartDate                string             `json:"start_date"`
	Status                   Status             `json:"status"`
	ReleaseDate              *string            `json:"release_date,omitempty"`
	Notes                    string             `json:"notes,omitempty"`
	IsSeriousCrime           bool               `json:"is_serious_crime"`
	TotalDays                int                `json:"total_days"`
	EndDate                  string             `json:"end_date"`
	DurationDisplay          string             `json:"duration_display"`
	TotalReductionDays       int                `json:"total_reduction_days"`
	TotalArrestDays          int                `json:"total_preventive_arrest_days"`
	TotalLaborDays           int                `json:"total_labor_days"`
	RawLaborDays             float64            `json:"raw_labor_days"`
	EffectiveTotalDays       int                `json:"effective_total_days"`
	EffectiveEndDate         string             `json:"effective_end_date"`
	EffectiveDurationDisplay string             `json:"effective_duration_display"`
	Fractions                []FractionView     `json:"fractions"`
	Reductions               []Reduction        `json:"reductions"`
	Arrests                  []PreventiveArrest `json:"preventive_arrests"`
	LaborCredits             []LaborCredit      `json:"labor_credits"`
	CreatedAt                time.Time          `json:"created_at"`
	UpdatedAt                time.Time          `json:"updated_at"`
}

// FractionView is the serialized fraction with its calculated date flattened
// to a date-only string.
type FractionView struct {
	ID             uuid.UUID         `json:"id"`
	SentenceID     uuid.UUID         `json:"sentence_id"`
	Type           calc.FractionType `json:"fraction_type"`
	CalculatedDate string            `json:"calculated_date"`
	IsFulfilled    bool              `json:"is_fulfilled"`
	FulfilledDate  *string           `json:"fulfilled_date,omitempty"`
	Description    string            `json:"description,omitempty"`
	Notes          string            `json:"notes,omitempty"`
}

const dateLayout = "2006-01-02"

// NewSentenceView resolves derived values for serialization.
func NewSentenceView(s *Sentence) SentenceView {
	view := SentenceView{
		ID:                       s.ID,
		PersonID:                 s.PersonID,
		CrimeType:                s.CrimeType,
		CrimeDescription:         s.CrimeDescription,
		Years:                    s.Years,
		Months:                   s.Months,
		Days:                     s.Days,
		StartDate:                s.StartDate.Format(dateLayout),
		Status:                   s.Status,
		Notes:                    s.Notes,
		IsSeriousCrime:           s.IsSeriousCrime(),
		TotalDays:                s.TotalDays(),
		EndDate:                  s.EndDate().Format(dateLayout),
		DurationDisplay:          s.DurationDisplay(),
		TotalReductionDays:       s.TotalReductionDays(),
		TotalArrestDays:          s.TotalArrestDays(),
		TotalLaborDays:           s.TotalLaborDays(),
		RawLaborDays:             s.RawLaborDays(),
		EffectiveTotalDays:       s.EffectiveTotalDays(),
		EffectiveEndDate:         s.EffectiveEndDate().Format(dateLayout),
		EffectiveDurationDisplay: s.EffectiveDurationDisplay(),
		Reductions:               s.Reductions,
		Arrests:                  s.Arrests,
		LaborCredits:             s.LaborCredits,
		CreatedAt:                s.CreatedAt,
		UpdatedAt:                s.UpdatedAt,
	}
	if s.ReleaseDate != nil {
		formatted := s.ReleaseDate.Format(dateLayout)
		view.ReleaseDate = &formatted
	}
	view.Fractions = make([]FractionView, 0, len(s.Fractions))
	for _, f := range s.Fractions {
		view.Fractions = append(view.Fractions, NewFractionView(f))
	}
	return view
}

// NewFractionView serializes one fraction.
func NewFractionView(f Fraction) FractionView {
	view := FractionView{
		ID:             f.ID,
		SentenceID:     f.SentenceID,
		Type:           f.Type,
		CalculatedDate: f.CalculatedDate.Format(dateLayout),
		IsFulfilled:    f.IsFulfilled,
		Description:    f.Description,
		Notes:          f.Notes,
	}
	if f.FulfilledDate != nil {
		formatted := f.FulfilledDate.Format(dateLayout)
		view.FulfilledDate = &formatted
	}
	return view
}
