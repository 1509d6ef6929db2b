// Package calc implements the penal-code date arithmetic used for sentence
// terms: the 365/30 day-count conventions, calendar end dates and the
// month-based fraction dates for conditional release eligibility.
package calc

import "time"

// TotalDays converts a duration triple to days using the statutory
// approximations: 365-day years and 30-day months. Used for ledger
// bookkeeping only, never for computing actual calendar dates.
func TotalDays(years, months, days int) int {
	return years*365 + months*30 + days
}

// Decompose splits a day total back into a (years, months, days) triple using
// the same 365/30 conventions.
func Decompose(totalDays int) (years, months, days int) {
	years = totalDays / 365
	remaining := totalDays % 365
	months = remaining / 30
	days = remaining % 30
	return years, months, days
}

// EndDate computes the calendar end date of a sentence. Years and months are
// added with true calendar arithmetic. A sentence expressed in whole years or
// months ends the day before the anniversary, so when days == 0 and the
// duration is not empty, one calendar day is subtracted. An all-zero triple
// returns the start date unchanged.
func EndDate(start time.Time, years, months, days int) time.Time {
	end := addCalendar(start, years, months, days)
	if days == 0 && (years > 0 || months > 0) {
		end = end.AddDate(0, 0, -1)
	}
	return end
}

// FractionDate computes the date at which numerator/denominator of the given
// duration elapses, counting from start. The division is performed over months
// rather than raw day totals: the statute divides time served in
// month-granularity units, and the leftover month remainder converts to days
// at 30 days per month. All divisions truncate, so the result is never later
// than the exact mathematical fraction point. The minus-one-day rule of
// EndDate does not apply here.
func FractionDate(start time.Time, years, months, days, numerator, denominator int) time.Time {
	totalMonths := years*12 + months

	fractionMonthsNum := totalMonths * numerator
	fractionMonths := fractionMonthsNum / denominator
	monthRemainder := fractionMonthsNum % denominator

	extraDaysFromMonths := (monthRemainder * 30) / denominator
	fractionDays := (days * numerator) / denominator
	totalFractionDays := fractionDays + extraDaysFromMonths

	fractionYears := fractionMonths / 12
	remainingMonths := fractionMonths % 12

	if totalFractionDays >= 30 {
		remainingMonths += totalFractionDays / 30
		totalFractionDays %= 30
		if remainingMonths >= 12 {
			fractionYears += remainingMonths / 12
			remainingMonths %= 12
		}
	}

	return addCalendar(start, fractionYears, remainingMonths, totalFractionDays)
}

// addCalendar adds the triple using variable month lengths. Month addition
// clamps to the last day of the target month (31 Jan + 1 month = 28/29 Feb),
// then days are added as plain calendar days.
func addCalendar(t time.Time, years, months, days int) time.Time {
	year, month, day := t.Date()

	m := int(month) + months
	y := year + years + (m-1)/12
	m = (m-1)%12 + 1

	if last := lastDayOfMonth(y, time.Month(m)); day > last {
		day = last
	}

	result := time.Date(y, time.Month(m), day, 0, 0, 0, 0, t.Location())
	if days != 0 {
		result = result.AddDate(0, 0, days)
	}
	return result
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
