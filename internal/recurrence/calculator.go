// Package recurrence computes the next occurrence of a billing day.
package recurrence

import "time"

// NextPayment returns the next date a subscription with the given billing
// day-of-month will be charged, relative to ref.
//
// The candidate date is (ref.Year, ref.Month, day) at midnight in ref's
// location. If the billing day has already occurred this month, or occurs
// today, the candidate advances one calendar month (or one calendar year for
// annual subscriptions). Months shorter than day clamp to their last valid
// day, so day=31 in February yields Feb 28 (Feb 29 in leap years).
//
// Inputs are expected to be pre-validated: day must be in [1,31].
func NextPayment(day int, annual bool, ref time.Time) time.Time {
	year, month := ref.Year(), ref.Month()

	if ref.Day() >= day {
		if annual {
			year++
		} else {
			month++
			if month > time.December {
				month = time.January
				year++
			}
		}
	}

	return time.Date(year, month, clampDay(day, year, month), 0, 0, 0, 0, ref.Location())
}

// clampDay limits day to the number of days in the given month.
func clampDay(day, year int, month time.Month) int {
	if last := daysIn(year, month); day > last {
		return last
	}
	return day
}

// daysIn returns the number of days in a month. Day zero of the following
// month normalizes to the last day of this one.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
