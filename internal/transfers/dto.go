package transfers

import (
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/shared"
)

type EntryInput struct {
	Penitentiary     Penitentiary `json:"penitentiary" validate:"required"`
	Arrived          int          `json:"arrived" validate:"min=0"`
	ArrivedReturned  int          `json:"arrived_returned" validate:"min=0"`
	ArrivedNew       int          `json:"arrived_new" validate:"min=0"`
	Departed         int          `json:"departed" validate:"min=0"`
	DepartedIsolator int          `json:"departed_isolator" validate:"min=0"`
	Notes            string       `json:"notes,omitempty"`
}

type CreateTransferRequest struct {
	TransferDate time.Time    `json:"transfer_date" validate:"required"`
	Description  string       `json:"description,omitempty"`
	Entries      []EntryInput `json:"entries" validate:"required,min=1"`
}

func (r CreateTransferRequest) Validate() error {
	if r.TransferDate.Year() < 2000 {
		return shared.Validationf("transfer_date", "data trebuie să fie după anul 2000")
	}
	return validateEntryInputs(r.Entries)
}

type UpdateTransferRequest struct {
	TransferDate *time.Time   `json:"transfer_date,omitempty"`
	Description  *string      `json:"description,omitempty"`
	Entries      []EntryInput `json:"entries,omitempty"`
}

func (r UpdateTransferRequest) Validate() error {
	if r.TransferDate != nil && r.TransferDate.Year() < 2000 {
		return shared.Validationf("transfer_date", "data trebuie să fie după anul 2000")
	}
	if r.Entries != nil {
		return validateEntryInputs(r.Entries)
	}
	return nil
}

func validateEntryInputs(inputs []EntryInput) error {
	seen := map[Penitentiary]bool{}
	for _, in := range inputs {
		if seen[in.Penitentiary] {
			return shared.Validationf("entries", "penitenciar duplicat în listă")
		}
		seen[in.Penitentiary] = true
		entry := in.toEntry()
		if err := entry.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (in EntryInput) toEntry() Entry {
	return Entry{
		Penitentiary:     in.Penitentiary,
		Arrived:          in.Arrived,
		ArrivedReturned:  in.ArrivedReturned,
		ArrivedNew:       in.ArrivedNew,
		Departed:         in.Departed,
		DepartedIsolator: in.DepartedIsolator,
		Notes:            in.Notes,
	}
}

type ListFilter struct {
	Year     *int
	Month    *int
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PerPage  int
}

type EntryView struct {
	ID               uuid.UUID    `json:"id"`
	Penitentiary     Penitentiary `json:"penitentiary"`
	Label            string       `json:"penitentiary_display"`
	IsIsolator       bool         `json:"is_isolator"`
	Arrived          int          `json:"arrived"`
	ArrivedReturned  int          `json:"arrived_returned"`
	ArrivedNew       int          `json:"arrived_new"`
	Departed         int          `json:"departed"`
	DepartedIsolator int          `json:"departed_isolator"`
	Notes            string       `json:"notes,omitempty"`
}

type TransferView struct {
	ID            uuid.UUID   `json:"id"`
	TransferDate  string      `json:"transfer_date"`
	Year          int         `json:"year"`
	Month         int         `json:"month"`
	Quarter       int         `json:"quarter"`
	Description   string      `json:"description,omitempty"`
	TotalArrived  int         `json:"total_arrived"`
	TotalDeparted int         `json:"total_departed"`
	Entries       []EntryView `json:"entries"`
	CreatedBy     uuid.UUID   `json:"created_by"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

const dateLayout = "2006-01-02"

func NewTransferView(t *Transfer) TransferView {
	entries := make([]EntryView, 0, len(t.Entries))
	for _, e := range t.Entries {
		entries = append(entries, EntryView{
			ID:               e.ID,
			Penitentiary:     e.Penitentiary,
			Label:            e.Penitentiary.Label(),
			IsIsolator:       e.Penitentiary.IsIsolator(),
			Arrived:          e.Arrived,
			ArrivedReturned:  e.ArrivedReturned,
			ArrivedNew:       e.ArrivedNew,
			Departed:         e.Departed,
			DepartedIsolator: e.DepartedIsolator,
			Notes:            e.Notes,
		})
	}
	return TransferView{
		ID:            t.ID,
		TransferDate:  t.TransferDate.Format(dateLayout),
		Year:          t.Year,
		Month:         t.Month,
		Quarter:       t.Quarter(),
		Description:   t.Description,
		TotalArrived:  t.TotalArrived(),
		TotalDeparted: t.TotalDeparted(),
		Entries:       entries,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// PenitentiaryOption feeds UI dropdowns.
type PenitentiaryOption struct {
	Value      Penitentiary `json:"value"`
	Label      string       `json:"label"`
	IsIsolator bool         `json:"is_isolator"`
}
