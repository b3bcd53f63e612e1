// Package pto implements the PTO accrual and request-lifecycle engine.
// It computes accrued/used/available balances from a hire date, a clock,
// and a request history, and owns the state machine that governs a
// request from creation to approval or denial.
package pto

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROLES
// =============================================================================

// Role is a display/authorization hint. The engine does not enforce it;
// the views layer decides what a Manager can see.
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
)

// =============================================================================
// REQUEST ENUMS
// =============================================================================

// RequestType determines how many hours a calendar day consumes.
type RequestType string

const (
	TypeFullDay  RequestType = "Full Day"
	TypeHalfDay  RequestType = "Half Day"
	TypeMedical  RequestType = "Medical"
	TypePersonal RequestType = "Personal"
)

// RequestStatus is the request lifecycle state.
//
// Pending is the only initial state. Approved and Denied are terminal:
// once a manager has decided, the decision stands and corrections happen
// through new requests, not edits.
type RequestStatus string

const (
	StatusPending  RequestStatus = "Pending"
	StatusApproved RequestStatus = "Approved"
	StatusDenied   RequestStatus = "Denied"
)

// ValidType reports whether t is one of the known request types.
func ValidType(t RequestType) bool {
	switch t {
	case TypeFullDay, TypeHalfDay, TypeMedical, TypePersonal:
		return true
	}
	return false
}

// =============================================================================
// USER
// =============================================================================

// User is an employee identity plus the accrual basis (hire date).
// HireDate is a calendar date; the time component is always UTC midnight.
type User struct {
	ID       string
	Name     string
	Email    string
	Role     Role
	HireDate time.Time
	JobTitle string
}

// =============================================================================
// PTO REQUEST
// =============================================================================

// PTORequest is a single time-off claim over an inclusive date range.
//
// UserName is a snapshot of the owner's display name captured at creation.
// It is deliberately NOT kept in sync with later renames: a request shows
// who it was for at the time it was filed.
//
// Hours is computed once at creation from the range and type, and never
// recomputed. Requests are mutated only by the ledger's status transition.
type PTORequest struct {
	ID        string
	UserID    string
	UserName  string
	StartDate time.Time // inclusive
	EndDate   time.Time // inclusive
	Type      RequestType
	Hours     decimal.Decimal
	Status    RequestStatus

	Reason      string
	ManagerNote string
	// IsFavor marks a grant made outside the normal accrual. Favor requests
	// still count against the used sum; they are how a balance goes negative.
	IsFavor bool

	CreatedAt time.Time
}

// Covers reports whether day falls inside the request's inclusive range.
func (r PTORequest) Covers(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(r.StartDate)) && !d.After(DateOf(r.EndDate))
}

// =============================================================================
// BALANCE SNAPSHOT
// =============================================================================

// Balance is a derived, non-persisted snapshot of a user's PTO position.
// It is recomputed on every read and has no independent lifecycle.
type Balance struct {
	Accrued   decimal.Decimal
	Used      decimal.Decimal
	Available decimal.Decimal

	// LastResetYear is the calendar year of the most recent anniversary
	// rebase: the current year once the hire anniversary has passed,
	// otherwise the previous year.
	LastResetYear int
}
