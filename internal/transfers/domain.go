// Package transfers records inter-facility transfer sessions between the
// home penitentiary and the other facilities in the system.
package transfers

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/shared"
)

// Penitentiary is a facility number. Number 14 does not exist.
type Penitentiary int

const (
	// HomePenitentiary is the facility this registry belongs to. Entries
	// are always relative to it, so it never appears as an entry itself.
	HomePenitentiary Penitentiary = 6
)

var penitentiaryLabels = map[Penitentiary]string{
	1:  "Penitenciarul nr. 1",
	2:  "Penitenciarul nr. 2",
	3:  "Penitenciarul nr. 3",
	4:  "Penitenciarul nr. 4",
	5:  "Penitenciarul nr. 5",
	6:  "Penitenciarul nr. 6",
	7:  "Penitenciarul nr. 7",
	8:  "Penitenciarul nr. 8",
	9:  "Penitenciarul nr. 9",
	10: "Penitenciarul nr. 10",
	11: "Penitenciarul nr. 11 (Izolator)",
	12: "Penitenciarul nr. 12",
	13: "Penitenciarul nr. 13 (Izolator)",
	15: "Penitenciarul nr. 15",
	16: "Penitenciarul nr. 16",
	17: "Penitenciarul nr. 17",
	18: "Penitenciarul nr. 18",
}

var isolators = map[Penitentiary]bool{11: true, 13: true}

func ValidPenitentiary(p Penitentiary) bool {
	_, ok := penitentiaryLabels[p]
	return ok
}

func (p Penitentiary) Label() string {
	return penitentiaryLabels[p]
}

// IsIsolator reports whether the facility is one of the two isolators.
func (p Penitentiary) IsIsolator() bool {
	return isolators[p]
}

// OtherPenitentiaries lists every facility except the home one, in number
// order. Used for UI dropdowns.
func OtherPenitentiaries() []Penitentiary {
	out := make([]Penitentiary, 0, len(penitentiaryLabels)-1)
	for p := Penitentiary(1); p <= 18; p++ {
		if !ValidPenitentiary(p) || p == HomePenitentiary {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Transfer is one transfer session on a given date. Several sessions per
// month are allowed; each holds one Entry per facility.
type Transfer struct {
	ID           uuid.UUID
	TransferDate time.Time
	Year         int
	Month        int
	Description  string
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Entries []Entry
}

// Quarter is the calendar quarter (1-4) of the session month.
func (t *Transfer) Quarter() int {
	return (t.Month-1)/3 + 1
}

// TotalArrived sums arrivals across all entries.
func (t *Transfer) TotalArrived() int {
	total := 0
	for _, e := range t.Entries {
		total += e.Arrived
	}
	return total
}

// TotalDeparted sums departures across all entries.
func (t *Transfer) TotalDeparted() int {
	total := 0
	for _, e := range t.Entries {
		total += e.Departed
	}
	return total
}

// Entry is the row for one facility within a session: detainees arriving at
// the home penitentiary from it and departing towards it.
type Entry struct {
	ID               uuid.UUID
	TransferID       uuid.UUID
	Penitentiary     Penitentiary
	Arrived          int
	ArrivedReturned  int
	ArrivedNew       int
	Departed         int
	DepartedIsolator int
	Notes            string
}

// Validate enforces the entry invariants.
func (e *Entry) Validate() error {
	if e.Penitentiary == HomePenitentiary {
		return shared.Validationf("penitentiary", "nu se pot înregistra transferuri către propriul penitenciar (P-6)")
	}
	if !ValidPenitentiary(e.Penitentiary) {
		return shared.Validationf("penitentiary", "penitenciar invalid")
	}
	if e.Arrived < 0 || e.ArrivedReturned < 0 || e.ArrivedNew < 0 || e.Departed < 0 || e.DepartedIsolator < 0 {
		return shared.Validationf("entries", "valorile nu pot fi negative")
	}
	if e.Arrived != e.ArrivedReturned+e.ArrivedNew {
		return shared.Validationf("arrived", "totalul veniți trebuie să fie egal cu reîntorși + noi")
	}
	if e.DepartedIsolator > 0 && !e.Penitentiary.IsIsolator() {
		return shared.Validationf("departed_isolator", "plecați la izolator se completează doar pentru P-11 și P-13")
	}
	return nil
}

// ReportRow is a per-facility aggregate over a month or quarter.
type ReportRow struct {
	Penitentiary     Penitentiary `json:"penitentiary"`
	Label            string       `json:"penitentiary_display"`
	IsIsolator       bool         `json:"is_isolator"`
	Arrived          int          `json:"arrived"`
	ArrivedReturned  int          `json:"arrived_returned"`
	ArrivedNew       int          `json:"arrived_new"`
	Departed         int          `json:"departed"`
	DepartedIsolator int          `json:"departed_isolator"`
}

// ReportTotals is the grand total line of a report.
type ReportTotals struct {
	Arrived          int `json:"arrived"`
	ArrivedReturned  int `json:"arrived_returned"`
	ArrivedNew       int `json:"arrived_new"`
	Departed         int `json:"departed"`
	DepartedIsolator int `json:"departed_isolator"`
}

// Stats is the KPI payload for the dashboard.
type Stats struct {
	CurrentMonthArrived   int `json:"current_month_arrived"`
	CurrentMonthDeparted  int `json:"current_month_departed"`
	CurrentMonthNet       int `json:"current_month_net"`
	PreviousMonthArrived  int `json:"previous_month_arrived"`
	PreviousMonthDeparted int `json:"previous_month_departed"`
	TotalTransfers        int `json:"total_transfers"`
}

// ErrTransferNotFound occurs when the session id is unknown.
var ErrTransferNotFound = fmt.Errorf("transfers: transfer %w", shared.ErrNotFound)
