// Package sentencing owns sentence records, their adjustment ledgers and the
// derived release-eligibility fractions.
package sentencing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/sentencing/calc"
	"github.com/termene/termene/internal/shared"
)

// Status tracks the sentence lifecycle. New sentences move to active once
// execution starts; cumulated marks an administrative merge into another
// sentence; finished means released.
type Status string

const (
	StatusNew       Status = "new"
	StatusActive    Status = "active"
	StatusCumulated Status = "cumulated"
	StatusFinished  Status = "finished"
)

// CrimeType catalogues the offences tracked by the registry.
type CrimeType string

const (
	CrimeFurt           CrimeType = "furt"
	CrimeFurtCalificat  CrimeType = "furt_calificat"
	CrimeTalharie       CrimeType = "talharie"
	CrimeOmor           CrimeType = "omor"
	CrimeOmorCalificat  CrimeType = "omor_calificat"
	CrimeViol           CrimeType = "viol"
	CrimeTraficPersoane CrimeType = "trafic_persoane"
	CrimeTraficDroguri  CrimeType = "trafic_droguri"
	CrimeTerorism       CrimeType = "terorism"
	CrimeCoruptie       CrimeType = "coruptie"
	CrimeEvaziune       CrimeType = "evaziune"
	CrimeInselaciune    CrimeType = "inselaciune"
	CrimeDistrugere     CrimeType = "distrugere"
	CrimeUltraj         CrimeType = "ultraj"
	CrimeLovire         CrimeType = "lovire"
	CrimeVatamare       CrimeType = "vatamare"
	CrimeAltul          CrimeType = "altul"
)

// seriousCrimes require the 2/3 fraction for conditional release. The flag is
// informational: all three fractions are generated regardless.
var seriousCrimes = map[CrimeType]bool{
	CrimeOmor:           true,
	CrimeOmorCalificat:  true,
	CrimeViol:           true,
	CrimeTraficPersoane: true,
	CrimeTraficDroguri:  true,
	CrimeTerorism:       true,
}

// ValidCrimeTypes reports whether ct is a known crime type.
func ValidCrimeType(ct CrimeType) bool {
	switch ct {
	case CrimeFurt, CrimeFurtCalificat, CrimeTalharie, CrimeOmor, CrimeOmorCalificat,
		CrimeViol, CrimeTraficPersoane, CrimeTraficDroguri, CrimeTerorism, CrimeCoruptie,
		CrimeEvaziune, CrimeInselaciune, CrimeDistrugere, CrimeUltraj, CrimeLovire,
		CrimeVatamare, CrimeAltul:
		return true
	}
	return false
}

// Sentence is the aggregate root. It owns its three adjustment ledgers and
// the generated fractions; effective duration is always derived from the
// current ledger contents, never cached.
type Sentence struct {
	ID               uuid.UUID
	PersonID         uuid.UUID
	CrimeType        CrimeType
	CrimeDescription string
	Years            int
	Months           int
	Days             int
	StartDate        time.Time
	Status           Status
	ReleaseDate      *time.Time
	Notes            string
	CreatedBy        uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Reductions   []Reduction
	Arrests      []PreventiveArrest
	LaborCredits []LaborCredit
	Fractions    []Fraction
}

// Reduction subtracts a legal-article reduction from the sentence. Add and
// delete only; reductions are never edited in place.
type Reduction struct {
	ID           uuid.UUID
	SentenceID   uuid.UUID
	LegalArticle string
	Years        int
	Months       int
	Days         int
	AppliedDate  time.Time
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
}

// TotalDays is the reduction's day-equivalent contribution to the ledger.
func (r Reduction) TotalDays() int {
	return calc.TotalDays(r.Years, r.Months, r.Days)
}

// PreventiveArrest credits time already served under preventive arrest.
type PreventiveArrest struct {
	ID         uuid.UUID
	SentenceID uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	CreatedBy  uuid.UUID
	CreatedAt  time.Time
}

// Days is the calendar-day span credited by this arrest period.
func (a PreventiveArrest) Days() int {
	return int(a.EndDate.Sub(a.StartDate) / (24 * time.Hour))
}

// LaborCredit records days earned through prison labor for one calendar
// month. At most one entry per (month, year) per sentence.
type LaborCredit struct {
	ID         uuid.UUID
	SentenceID uuid.UUID
	Month      int
	Year       int
	Days       int
	CreatedBy  uuid.UUID
	CreatedAt  time.Time
}

// Fraction is a derived release-eligibility date. Regeneration overwrites
// CalculatedDate; fulfillment fields are operator annotations merged back in
// after each regeneration.
type Fraction struct {
	ID             uuid.UUID
	SentenceID     uuid.UUID
	Type           calc.FractionType
	CalculatedDate time.Time
	IsFulfilled    bool
	FulfilledDate  *time.Time
	Description    string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var (
	// ErrSentenceNotFound occurs when the sentence id is unknown.
	ErrSentenceNotFound = fmt.Errorf("sentencing: sentence %w", shared.ErrNotFound)
	// ErrEntryNotFound occurs when a ledger entry does not belong to the
	// target sentence.
	ErrEntryNotFound = fmt.Errorf("sentencing: ledger entry %w", shared.ErrNotFound)
	// ErrFractionNotFound occurs when the fraction id is unknown.
	ErrFractionNotFound = fmt.Errorf("sentencing: fraction %w", shared.ErrNotFound)
)

// IsSeriousCrime reports whether the 2/3 conditional-release rule applies.
func (s *Sentence) IsSeriousCrime() bool {
	return seriousCrimes[s.CrimeType]
}

// TotalDays is the nominal duration in statutory days.
func (s *Sentence) TotalDays() int {
	return calc.TotalDays(s.Years, s.Months, s.Days)
}

// EndDate is the nominal calendar end date.
func (s *Sentence) EndDate() time.Time {
	return calc.EndDate(s.StartDate, s.Years, s.Months, s.Days)
}

// TotalReductionDays sums the reduction ledger.
func (s *Sentence) TotalReductionDays() int {
	total := 0
	for _, r := range s.Reductions {
		total += r.TotalDays()
	}
	return total
}

// TotalArrestDays sums the preventive-arrest ledger.
func (s *Sentence) TotalArrestDays() int {
	total := 0
	for _, a := range s.Arrests {
		total += a.Days()
	}
	return total
}

// TotalLaborDays sums the labor-credit ledger as whole days.
func (s *Sentence) TotalLaborDays() int {
	total := 0
	for _, c := range s.LaborCredits {
		total += c.Days
	}
	return total
}

// RawLaborDays is the labor-credit total as reported downstream; spreadsheets
// carry it as a numeric, so both forms are exposed.
func (s *Sentence) RawLaborDays() float64 {
	return float64(s.TotalLaborDays())
}

// TotalLedgerOffset is the combined day-equivalent of all three ledgers.
func (s *Sentence) TotalLedgerOffset() int {
	return s.TotalReductionDays() + s.TotalArrestDays() + s.TotalLaborDays()
}

// EffectiveTotalDays is the nominal duration minus the ledger offset, clamped
// at zero.
func (s *Sentence) EffectiveTotalDays() int {
	effective := s.TotalDays() - s.TotalLedgerOffset()
	if effective < 0 {
		return 0
	}
	return effective
}

// EffectiveDuration decomposes the effective day total back into a triple.
func (s *Sentence) EffectiveDuration() (years, months, days int) {
	return calc.Decompose(s.EffectiveTotalDays())
}

// EffectiveEndDate is the calendar release date after all adjustments.
func (s *Sentence) EffectiveEndDate() time.Time {
	years, months, days := s.EffectiveDuration()
	return calc.EndDate(s.StartDate, years, months, days)
}

// DurationDisplay formats the nominal duration in Romanian.
func (s *Sentence) DurationDisplay() string {
	return formatDuration(s.Years, s.Months, s.Days)
}

// EffectiveDurationDisplay formats the post-adjustment duration in Romanian.
func (s *Sentence) EffectiveDurationDisplay() string {
	years, months, days := s.EffectiveDuration()
	return formatDuration(years, months, days)
}

func formatDuration(years, months, days int) string {
	var parts []string
	if years > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", years, plural(years, "an", "ani")))
	}
	if months > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", months, plural(months, "lună", "luni")))
	}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", days, plural(days, "zi", "zile")))
	}
	if len(parts) == 0 {
		return "0 zile"
	}
	return strings.Join(parts, ", ")
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
