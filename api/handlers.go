/*
handlers.go - HTTP API handlers for the PTO engine

PURPOSE:
  Exposes the PTO engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Users:
    GET    /api/users                  List the employee directory
    GET    /api/users/{id}             Get a user
    PUT    /api/users/{id}/role        Switch a user's role
    GET    /api/users/{id}/balance     Compute the user's balance
    GET    /api/users/{id}/requests    The user's requests, newest first

  Requests:
    GET    /api/requests               All requests, newest first
    GET    /api/requests/pending       Requests awaiting a decision
    GET    /api/requests/away          Who is away on a given day
    POST   /api/requests               Open a request (always Pending)
    POST   /api/requests/{id}/approve  Approve a pending request
    POST   /api/requests/{id}/deny     Deny a pending request

  Reports:
    GET    /api/recipients             Digest recipient list
    PUT    /api/recipients             Replace the recipient list
    POST   /api/reports/outlook        Generate the weekly outlook

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: User or request not found
  - 409: Decision on a request that is no longer Pending
  - 502: Text-generation collaborator failed
  - 500: Storage errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flcc/pto-engine/intelligence"
	"github.com/flcc/pto-engine/pto"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the full persistence surface the handlers need.
type Store interface {
	pto.RequestStore
	pto.UserStore
	pto.SettingsStore
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   Store
	Ledger  *pto.RequestLedger
	Clock   pto.Clock
	Outlook *intelligence.OutlookService
}

// NewHandler wires the handlers over their collaborators.
func NewHandler(store Store, clock pto.Clock, ai intelligence.Client) *Handler {
	return &Handler{
		Store:   store,
		Ledger:  pto.NewRequestLedger(store, clock),
		Clock:   clock,
		Outlook: intelligence.NewOutlookService(ai, store, clock),
	}
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns the employee directory.
// GET /api/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toUserDTO(u))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUser returns a single user.
// GET /api/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*user))
}

// SetRole switches a user between Employee and Manager.
// PUT /api/users/{id}/role
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	role := pto.Role(req.Role)
	if role != pto.RoleEmployee && role != pto.RoleManager {
		writeError(w, http.StatusBadRequest, "Unknown role", nil)
		return
	}

	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}

	user.Role = role
	if err := h.Store.SaveUser(r.Context(), *user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*user))
}

// GetBalance computes the user's balance from the current ledger snapshot.
// Never cached; every read recomputes.
// GET /api/users/{id}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}

	requests, err := h.Ledger.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}

	balance := pto.ComputeBalance(*user, requests, h.Clock.Now())
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// ListUserRequests returns one user's requests, newest first.
// GET /api/users/{id}/requests
func (h *Handler) ListUserRequests(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}

	requests, err := h.Ledger.ListByUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// ListRequests returns every request, newest first.
// GET /api/requests
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Ledger.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// ListPendingRequests returns requests awaiting a decision.
// GET /api/requests/pending
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Ledger.ListPending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// ListAway returns the approved requests covering a day. The day defaults
// to today; override with ?date=2006-01-02.
// GET /api/requests/away
func (h *Handler) ListAway(w http.ResponseWriter, r *http.Request) {
	day := h.Clock.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateFormat, raw, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
			return
		}
		day = parsed
	}

	requests, err := h.Ledger.AwayOn(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// CreateRequest opens a new request. Status is always Pending.
// POST /api/requests
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	start, err := time.ParseInLocation(dateFormat, req.StartDate, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date, expected YYYY-MM-DD", err)
		return
	}
	end, err := time.ParseInLocation(dateFormat, req.EndDate, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date, expected YYYY-MM-DD", err)
		return
	}

	user, err := h.Store.GetUser(r.Context(), req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}

	created, err := h.Ledger.Create(r.Context(), *user, pto.RequestInput{
		StartDate: start,
		EndDate:   end,
		Type:      pto.RequestType(req.Type),
		Reason:    req.Reason,
	})
	if err != nil {
		writeDomainError(w, "Failed to create request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(*created))
}

// ApproveRequest approves a pending request.
// POST /api/requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, pto.StatusApproved)
}

// DenyRequest denies a pending request.
// POST /api/requests/{id}/deny
func (h *Handler) DenyRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, pto.StatusDenied)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status pto.RequestStatus) {
	id := chi.URLParam(r, "id")

	var body DecisionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
			return
		}
	}

	updated, err := h.Ledger.SetStatus(r.Context(), id, pto.StatusChange{
		Status:      status,
		ManagerNote: body.ManagerNote,
		IsFavor:     body.IsFavor,
	})
	if err != nil {
		writeDomainError(w, "Failed to update request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*updated))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetRecipients returns the digest recipient list.
// GET /api/recipients
func (h *Handler) GetRecipients(w http.ResponseWriter, r *http.Request) {
	emails, err := h.Store.GetRecipients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get recipients", err)
		return
	}
	lastSent, err := h.Store.GetLastDigestSent(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get last digest time", err)
		return
	}

	dto := RecipientsDTO{Emails: emails}
	if dto.Emails == nil {
		dto.Emails = []string{}
	}
	if !lastSent.IsZero() {
		dto.LastDigestSent = lastSent.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, dto)
}

// SaveRecipients replaces the digest recipient list.
// PUT /api/recipients
func (h *Handler) SaveRecipients(w http.ResponseWriter, r *http.Request) {
	var req SaveRecipientsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if err := h.Store.SaveRecipients(r.Context(), req.Emails); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save recipients", err)
		return
	}
	writeJSON(w, http.StatusOK, RecipientsDTO{Emails: req.Emails})
}

// GenerateOutlook builds the weekly outlook from approved requests.
// A collaborator failure is reported as 502, never a crash.
// POST /api/reports/outlook
func (h *Handler) GenerateOutlook(w http.ResponseWriter, r *http.Request) {
	approved, err := h.Ledger.ListApproved(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}

	text, err := h.Outlook.WeeklyOutlook(r.Context(), approved)
	if err != nil {
		writeDomainError(w, "Failed to generate outlook", err)
		return
	}
	writeJSON(w, http.StatusOK, OutlookDTO{
		Text:        text,
		GeneratedAt: h.Clock.Now().UTC().Format(time.RFC3339),
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case pto.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, pto.ErrInvalidTransition):
		writeError(w, http.StatusConflict, message, err)
	case pto.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, pto.ErrExternalService):
		writeError(w, http.StatusBadGateway, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
