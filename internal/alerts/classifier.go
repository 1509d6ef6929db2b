// Package alerts turns fraction dates into operator-facing deadline alerts.
package alerts

import "time"

// Class buckets a fraction by how close its date is. The five classes are
// mutually exclusive.
type Class string

const (
	ClassFulfilled Class = "fulfilled"
	ClassOverdue   Class = "overdue"
	ClassImminent  Class = "imminent"
	ClassUpcoming  Class = "upcoming"
	ClassDistant   Class = "distant"
)

// Priority orders alerts in listings. Overdue and imminent fractions are
// high, upcoming medium.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Thresholds carries the window sizes, in days. Both bounds are inclusive.
type Thresholds struct {
	ImminentDays int
	UpcomingDays int
}

// DefaultThresholds mirrors the configuration defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{ImminentDays: 30, UpcomingDays: 90}
}

// Classify assigns a fraction to its class. A fulfilled fraction is terminal
// regardless of its date. Dates are compared at day granularity; both inputs
// are expected at midnight UTC.
func Classify(isFulfilled bool, calculatedDate, today time.Time, th Thresholds) Class {
	if isFulfilled {
		return ClassFulfilled
	}
	daysUntil := DaysUntil(calculatedDate, today)
	switch {
	case daysUntil < 0:
		return ClassOverdue
	case daysUntil <= th.ImminentDays:
		return ClassImminent
	case daysUntil <= th.UpcomingDays:
		return ClassUpcoming
	default:
		return ClassDistant
	}
}

// DaysUntil counts whole days from today to the target date, negative when
// the date has passed.
func DaysUntil(date, today time.Time) int {
	return int(date.Sub(today) / (24 * time.Hour))
}

// ClassPriority maps a class to its listing priority.
func ClassPriority(c Class) Priority {
	switch c {
	case ClassOverdue, ClassImminent:
		return PriorityHigh
	case ClassUpcoming:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
