package pto

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// HOURS COMPUTATION - Invoked once, at creation
// =============================================================================

// HoursPerFullDay and HoursPerHalfDay convert calendar days to PTO hours.
// Medical and Personal requests consume full days.
const (
	HoursPerFullDay = 8
	HoursPerHalfDay = 4
)

// RequestHours computes the hours a request consumes over an inclusive
// date range. The result is stored immutably on the request; dates are
// never edited afterwards, so it is never recomputed.
//
// Total function: a malformed range (end before start) yields a zero or
// negative figure rather than an error. The ledger rejects such ranges
// before this is ever stored.
func RequestHours(start, end time.Time, typ RequestType) decimal.Decimal {
	perDay := HoursPerFullDay
	if typ == TypeHalfDay {
		perDay = HoursPerHalfDay
	}
	return decimal.NewFromInt(int64(DayCount(start, end) * perDay))
}

// RequestInput is what a caller supplies to open a request. Everything
// else on PTORequest (id, owner name snapshot, hours, status, creation
// time) is filled in by the ledger.
type RequestInput struct {
	StartDate time.Time
	EndDate   time.Time
	Type      RequestType
	Reason    string // optional free text
}
