package pto

import "time"

// =============================================================================
// CLOCK - Injected time source
// =============================================================================

// Clock supplies "now" to the engine. Balance computation and request
// creation never read the wall clock directly; callers inject a Clock so
// the same history always produces the same numbers.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant. For tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// =============================================================================
// CALENDAR-DAY ARITHMETIC
// =============================================================================

// Date builds a calendar date at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from from to to.
// Negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// WeeksBetween returns elapsed whole weeks using floor division on whole
// days, never fractional weeks. 13 days is 1 week; -1 day is -1 week.
func WeeksBetween(from, to time.Time) int {
	return floorDiv(DaysBetween(from, to), 7)
}

// DayCount returns the inclusive length of a date range in days:
// start==end counts as 1. Total over malformed ranges (end before start
// yields zero or negative counts); the ledger rejects those at creation.
func DayCount(start, end time.Time) int {
	return DaysBetween(start, end) + 1
}

// AnniversaryInYear applies the hire month/day to the given year.
// Feb 29 hires normalize to Mar 1 in non-leap years.
func AnniversaryInYear(hireDate time.Time, year int) time.Time {
	h := DateOf(hireDate)
	return time.Date(year, h.Month(), h.Day(), 0, 0, 0, 0, time.UTC)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
