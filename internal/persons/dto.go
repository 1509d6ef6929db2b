package persons

import (
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/shared"
)

type CreatePersonRequest struct {
	FirstName     string    `json:"first_name" validate:"required,max=100"`
	LastName      string    `json:"last_name" validate:"required,max=100"`
	CNP           string    `json:"cnp" validate:"required,len=13"`
	DateOfBirth   time.Time `json:"date_of_birth" validate:"required"`
	AdmissionDate time.Time `json:"admission_date" validate:"required"`
	Notes         string    `json:"notes,omitempty"`
}

func (r CreatePersonRequest) Validate() error {
	if !ValidCNP(r.CNP) {
		return shared.Validationf("cnp", "CNP-ul trebuie să conțină exact 13 cifre")
	}
	if r.DateOfBirth.After(r.AdmissionDate) {
		return shared.Validationf("date_of_birth", "data nașterii nu poate fi după data internării")
	}
	return nil
}

type UpdatePersonRequest struct {
	FirstName     *string    `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName      *string    `json:"last_name,omitempty" validate:"omitempty,max=100"`
	CNP           *string    `json:"cnp,omitempty" validate:"omitempty,len=13"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	AdmissionDate *time.Time `json:"admission_date,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

type ListFilter struct {
	Query   string
	Page    int
	PerPage int
}

// PersonView is the list/detail representation with the derived sentence
// summary fields resolved.
type PersonView struct {
	ID                   uuid.UUID `json:"id"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	FullName             string    `json:"full_name"`
	CNP                  string    `json:"cnp"`
	DateOfBirth          string    `json:"date_of_birth"`
	AdmissionDate        string    `json:"admission_date"`
	Notes                string    `json:"notes,omitempty"`
	ActiveSentences      int       `json:"active_sentences_count"`
	NearestFractionDate  *string   `json:"nearest_fraction_date,omitempty"`
	NearestFractionType  *string   `json:"nearest_fraction_type,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

const dateLayout = "2006-01-02"

// NearestFraction is the closest unfulfilled fraction on any of the
// person's active sentences, looking from today onward.
type NearestFraction struct {
	Date time.Time
	Type string
}

// SentenceSummary captures the per-person derived numbers shown in
// listings.
type SentenceSummary struct {
	ActiveCount int
	Nearest     *NearestFraction
}

func NewPersonView(p *Person, summary SentenceSummary) PersonView {
	view := PersonView{
		ID:              p.ID,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		FullName:        p.FullName(),
		CNP:             p.CNP,
		DateOfBirth:     p.DateOfBirth.Format(dateLayout),
		AdmissionDate:   p.AdmissionDate.Format(dateLayout),
		Notes:           p.Notes,
		ActiveSentences: summary.ActiveCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if summary.Nearest != nil {
		date := summary.Nearest.Date.Format(dateLayout)
		view.NearestFractionDate = &date
		ftype := summary.Nearest.Type
		view.NearestFractionType = &ftype
	}
	return view
}
