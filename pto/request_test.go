package pto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// HOURS COMPUTATION TESTS
// =============================================================================

func TestRequestHours_SingleDayFullDay(t *testing.T) {
	// GIVEN: start == end, Full Day
	// WHEN: Computing hours
	// THEN: One day at 8 hours

	d := Date(2024, time.May, 10)
	h := RequestHours(d, d, TypeFullDay)

	assert.True(t, h.Equal(decimal.NewFromInt(8)), "hours = %s", h)
}

func TestRequestHours_SingleDayHalfDay(t *testing.T) {
	// GIVEN: start == end, Half Day
	// WHEN: Computing hours
	// THEN: One day at 4 hours, the minimum duration unit

	d := Date(2024, time.May, 10)
	h := RequestHours(d, d, TypeHalfDay)

	assert.True(t, h.Equal(decimal.NewFromInt(4)), "hours = %s", h)
}

func TestRequestHours_ThreeDayFullDay(t *testing.T) {
	// GIVEN: 2024-05-10 through 2024-05-12, Full Day
	// WHEN: Computing hours
	// THEN: 3 days * 8 == 24

	h := RequestHours(Date(2024, time.May, 10), Date(2024, time.May, 12), TypeFullDay)

	assert.True(t, h.Equal(decimal.NewFromInt(24)), "hours = %s", h)
}

func TestRequestHours_MultiDayHalfDay(t *testing.T) {
	// GIVEN: A five-day range of half days
	// WHEN: Computing hours
	// THEN: 5 * 4 == 20

	h := RequestHours(Date(2024, time.July, 1), Date(2024, time.July, 5), TypeHalfDay)

	assert.True(t, h.Equal(decimal.NewFromInt(20)), "hours = %s", h)
}

func TestRequestHours_MedicalAndPersonalUseFullDays(t *testing.T) {
	// GIVEN: Medical and Personal requests over the same two-day range
	// WHEN: Computing hours
	// THEN: Both consume full days

	start, end := Date(2024, time.May, 10), Date(2024, time.May, 11)

	assert.True(t, RequestHours(start, end, TypeMedical).Equal(decimal.NewFromInt(16)))
	assert.True(t, RequestHours(start, end, TypePersonal).Equal(decimal.NewFromInt(16)))
}

// =============================================================================
// DATE ARITHMETIC TESTS
// =============================================================================

func TestWeeksBetween_FloorsWholeDays(t *testing.T) {
	from := Date(2024, time.January, 1)

	assert.Equal(t, 0, WeeksBetween(from, Date(2024, time.January, 7)))
	assert.Equal(t, 1, WeeksBetween(from, Date(2024, time.January, 8)))
	assert.Equal(t, 1, WeeksBetween(from, Date(2024, time.January, 14)))
	assert.Equal(t, -1, WeeksBetween(from, Date(2023, time.December, 31)))
}

func TestDayCount_InclusiveRange(t *testing.T) {
	d := Date(2024, time.May, 10)

	assert.Equal(t, 1, DayCount(d, d))
	assert.Equal(t, 3, DayCount(d, Date(2024, time.May, 12)))
	// Malformed range stays total: zero or negative, no panic
	assert.Equal(t, 0, DayCount(d, Date(2024, time.May, 9)))
}

func TestAnniversaryInYear_Feb29NormalizesToMar1(t *testing.T) {
	hire := Date(2020, time.February, 29)

	assert.Equal(t, Date(2023, time.March, 1), AnniversaryInYear(hire, 2023))
	assert.Equal(t, Date(2024, time.February, 29), AnniversaryInYear(hire, 2024))
}
