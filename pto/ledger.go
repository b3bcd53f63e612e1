/*
ledger.go - Canonical request collection and status state machine

PURPOSE:
  The RequestLedger owns the full collection of PTO requests across all
  users and is the ONLY component allowed to mutate a request after
  creation - and even then, only its status, manager note, and favor
  flag. Dates, hours, and ownership are write-once.

STATE MACHINE:
  states:       {Pending, Approved, Denied}
  initial:      Pending (forced on create; callers cannot pre-approve)
  transitions:  Pending -> Approved, Pending -> Denied
  terminal:     Approved, Denied

  A decision on a non-Pending request returns InvalidTransitionError.
  This makes decisions idempotent-safe: the second approval of the same
  request cannot change the used sum.

ORDERING:
  ListAll is newest-created-first. New requests are prepended to the
  visible order; the order is otherwise stable.

WHAT IT DOES NOT CHECK:
  Overlapping requests are allowed. Nothing downstream assumes disjoint
  ranges, and the balance formula is indifferent to overlap.

SEE ALSO:
  - balance.go: reads the collection this maintains
  - store/sqlite: durable RequestStore implementation
  - pto/store: in-memory RequestStore for tests
*/
package pto

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// STORE INTERFACES - Persistence collaborators
// =============================================================================

// RequestStore persists the request collection. The ledger treats it as an
// opaque, atomic-per-call collaborator; implementations decide the
// technology (SQLite in production, memory in tests).
type RequestStore interface {
	// InsertRequest adds a new request at the head of the visible order.
	InsertRequest(ctx context.Context, req PTORequest) error

	// UpdateRequest replaces a stored request by id.
	UpdateRequest(ctx context.Context, req PTORequest) error

	// GetRequest returns the request with the given id, or nil if absent.
	GetRequest(ctx context.Context, id string) (*PTORequest, error)

	// ListRequests returns every request, newest-created-first.
	ListRequests(ctx context.Context) ([]PTORequest, error)
}

// UserStore persists the user directory.
type UserStore interface {
	SaveUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// SettingsStore persists the digest recipient list and the last time an
// outlook digest was generated.
type SettingsStore interface {
	GetRecipients(ctx context.Context) ([]string, error)
	SaveRecipients(ctx context.Context, emails []string) error
	GetLastDigestSent(ctx context.Context) (time.Time, error)
	SetLastDigestSent(ctx context.Context, at time.Time) error
}

// =============================================================================
// REQUEST LEDGER
// =============================================================================

// RequestLedger is the append-and-status-transition service over the
// request collection.
type RequestLedger struct {
	store RequestStore
	clock Clock
}

// NewRequestLedger creates a ledger over the given store and clock.
func NewRequestLedger(store RequestStore, clock Clock) *RequestLedger {
	return &RequestLedger{store: store, clock: clock}
}

// ListAll returns every request, newest-created-first.
func (l *RequestLedger) ListAll(ctx context.Context) ([]PTORequest, error) {
	return l.store.ListRequests(ctx)
}

// ListByUser returns one user's requests, newest-created-first.
func (l *RequestLedger) ListByUser(ctx context.Context, userID string) ([]PTORequest, error) {
	all, err := l.store.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	var out []PTORequest
	for _, r := range all {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Get returns a single request or NotFoundError.
func (l *RequestLedger) Get(ctx context.Context, id string) (*PTORequest, error) {
	req, err := l.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &NotFoundError{ID: id}
	}
	return req, nil
}

// Create opens a new request for user.
//
// Status is forced to Pending regardless of caller intent, the owner's
// display name is snapshotted, and hours are computed and frozen here.
// Rejects end-before-start ranges and unknown types.
func (l *RequestLedger) Create(ctx context.Context, user User, in RequestInput) (*PTORequest, error) {
	if !ValidType(in.Type) {
		return nil, ErrInvalidType
	}
	start, end := DateOf(in.StartDate), DateOf(in.EndDate)
	if end.Before(start) {
		return nil, &InvalidRangeError{Start: start, End: end}
	}

	req := PTORequest{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserName:  user.Name,
		StartDate: start,
		EndDate:   end,
		Type:      in.Type,
		Hours:     RequestHours(start, end, in.Type),
		Status:    StatusPending,
		Reason:    in.Reason,
		CreatedAt: l.clock.Now(),
	}

	if err := l.store.InsertRequest(ctx, req); err != nil {
		return nil, err
	}
	return &req, nil
}

// =============================================================================
// STATUS TRANSITIONS
// =============================================================================

// StatusChange is a manager's decision on a pending request. ManagerNote
// and IsFavor are applied only when explicitly provided; nil leaves the
// stored value untouched.
type StatusChange struct {
	Status      RequestStatus
	ManagerNote *string
	IsFavor     *bool
}

// SetStatus transitions a request out of Pending.
//
// Unknown id returns NotFoundError. A target other than Approved/Denied,
// or a request already decided, returns InvalidTransitionError.
func (l *RequestLedger) SetStatus(ctx context.Context, id string, change StatusChange) (*PTORequest, error) {
	if change.Status != StatusApproved && change.Status != StatusDenied {
		return nil, &InvalidTransitionError{ID: id, From: StatusPending, To: change.Status}
	}

	req, err := l.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &NotFoundError{ID: id}
	}
	if req.Status != StatusPending {
		return nil, &InvalidTransitionError{ID: id, From: req.Status, To: change.Status}
	}

	req.Status = change.Status
	if change.ManagerNote != nil {
		req.ManagerNote = *change.ManagerNote
	}
	if change.IsFavor != nil {
		req.IsFavor = *change.IsFavor
	}

	if err := l.store.UpdateRequest(ctx, *req); err != nil {
		return nil, err
	}
	return req, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// ListPending returns every request still awaiting a decision,
// newest-created-first.
func (l *RequestLedger) ListPending(ctx context.Context) ([]PTORequest, error) {
	all, err := l.store.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	var out []PTORequest
	for _, r := range all {
		if r.Status == StatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListApproved returns every approved request, newest-created-first.
func (l *RequestLedger) ListApproved(ctx context.Context) ([]PTORequest, error) {
	all, err := l.store.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	var out []PTORequest
	for _, r := range all {
		if r.Status == StatusApproved {
			out = append(out, r)
		}
	}
	return out, nil
}

// AwayOn returns the approved requests whose inclusive range covers day.
func (l *RequestLedger) AwayOn(ctx context.Context, day time.Time) ([]PTORequest, error) {
	approved, err := l.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	var out []PTORequest
	for _, r := range approved {
		if r.Covers(day) {
			out = append(out, r)
		}
	}
	return out, nil
}
