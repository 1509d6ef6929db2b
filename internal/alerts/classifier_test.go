package alerts

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifyBoundaries(t *testing.T) {
	th := Thresholds{ImminentDays: 30, UpcomingDays: 90}
	today := day(2024, time.June, 1)

	cases := []struct {
		name      string
		date      time.Time
		fulfilled bool
		want      Class
	}{
		{"yesterday is overdue", today.AddDate(0, 0, -1), false, ClassOverdue},
		{"today is imminent", today, false, ClassImminent},
		{"exactly the imminent threshold", today.AddDate(0, 0, 30), false, ClassImminent},
		{"one past the imminent threshold", today.AddDate(0, 0, 31), false, ClassUpcoming},
		{"exactly the upcoming threshold", today.AddDate(0, 0, 90), false, ClassUpcoming},
		{"one past the upcoming threshold", today.AddDate(0, 0, 91), false, ClassDistant},
		{"far future", today.AddDate(1, 0, 0), false, ClassDistant},
		{"fulfilled overrides overdue", today.AddDate(0, 0, -100), true, ClassFulfilled},
		{"fulfilled overrides distant", today.AddDate(2, 0, 0), true, ClassFulfilled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.fulfilled, tc.date, today, th); got != tc.want {
				t.Errorf("Classify(%v, %s) = %s, want %s", tc.fulfilled, tc.date.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}

func TestClassPriority(t *testing.T) {
	cases := []struct {
		class Class
		want  Priority
	}{
		{ClassOverdue, PriorityHigh},
		{ClassImminent, PriorityHigh},
		{ClassUpcoming, PriorityMedium},
		{ClassDistant, PriorityLow},
		{ClassFulfilled, PriorityLow},
	}
	for _, tc := range cases {
		if got := ClassPriority(tc.class); got != tc.want {
			t.Errorf("ClassPriority(%s) = %s, want %s", tc.class, got, tc.want)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	today := day(2024, time.June, 1)
	if got := DaysUntil(day(2024, time.June, 11), today); got != 10 {
		t.Errorf("DaysUntil = %d, want 10", got)
	}
	if got := DaysUntil(day(2024, time.May, 30), today); got != -2 {
		t.Errorf("DaysUntil = %d, want -2", got)
	}
}
