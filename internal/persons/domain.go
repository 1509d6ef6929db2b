// Package persons manages the registry of convicted persons.
package persons

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/termene/termene/internal/shared"
)

// Person is one convicted-person record. CNP is the Romanian personal
// numeric code, unique across the registry.
type Person struct {
	ID            uuid.UUID
	FirstName     string
	LastName      string
	CNP           string
	DateOfBirth   time.Time
	AdmissionDate time.Time
	Notes         string
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName renders the registry ordering: family name first.
func (p *Person) FullName() string {
	return p.LastName + " " + p.FirstName
}

var (
	// ErrPersonNotFound occurs when the person id is unknown.
	ErrPersonNotFound = fmt.Errorf("persons: person %w", shared.ErrNotFound)

	cnpPattern = regexp.MustCompile(`^\d{13}$`)

	nameCaser = cases.Title(language.Romanian)
)

// ValidCNP reports whether the code is exactly thirteen digits.
func ValidCNP(cnp string) bool {
	return cnpPattern.MatchString(cnp)
}

// NormalizeName trims and title-cases a person name with Romanian casing
// rules, so "ŞTEFAN" and "ştefan" store identically.
func NormalizeName(name string) string {
	return nameCaser.String(strings.ToLower(strings.TrimSpace(name)))
}
