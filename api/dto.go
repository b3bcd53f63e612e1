/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  internal domain model from the external API contract. Decimal hours
  cross the boundary as float64; dates as "2006-01-02" strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/flcc/pto-engine/pto"
)

const dateFormat = "2006-01-02"

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// UserDTO represents an employee in API responses.
type UserDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	HireDate string `json:"hire_date"`
	JobTitle string `json:"job_title,omitempty"`
}

// SetRoleRequest switches a user between Employee and Manager views.
type SetRoleRequest struct {
	Role string `json:"role"`
}

// BalanceDTO is the derived balance snapshot.
type BalanceDTO struct {
	Accrued       float64 `json:"accrued"`
	Used          float64 `json:"used"`
	Available     float64 `json:"available"`
	LastResetYear int     `json:"last_reset_year"`
}

// RequestDTO represents a PTO request in API responses.
type RequestDTO struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	UserName    string  `json:"user_name"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Type        string  `json:"type"`
	Hours       float64 `json:"hours"`
	Status      string  `json:"status"`
	Reason      string  `json:"reason,omitempty"`
	ManagerNote string  `json:"manager_note,omitempty"`
	IsFavor     bool    `json:"is_favor"`
	CreatedAt   string  `json:"created_at"`
}

// CreateRequestRequest opens a new PTO request.
type CreateRequestRequest struct {
	UserID    string `json:"user_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Type      string `json:"type"`
	Reason    string `json:"reason,omitempty"`
}

// DecisionRequest carries a manager's decision on a pending request.
// ManagerNote and IsFavor are applied only when present in the JSON body.
type DecisionRequest struct {
	ManagerNote *string `json:"manager_note,omitempty"`
	IsFavor     *bool   `json:"is_favor,omitempty"`
}

// RecipientsDTO is the digest recipient list plus the last digest time.
type RecipientsDTO struct {
	Emails         []string `json:"emails"`
	LastDigestSent string   `json:"last_digest_sent,omitempty"`
}

// SaveRecipientsRequest replaces the digest recipient list.
type SaveRecipientsRequest struct {
	Emails []string `json:"emails"`
}

// OutlookDTO carries the generated weekly outlook text.
type OutlookDTO struct {
	Text        string `json:"text"`
	GeneratedAt string `json:"generated_at"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toUserDTO(u pto.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		HireDate: u.HireDate.Format(dateFormat),
		JobTitle: u.JobTitle,
	}
}

func toBalanceDTO(b pto.Balance) BalanceDTO {
	return BalanceDTO{
		Accrued:       b.Accrued.InexactFloat64(),
		Used:          b.Used.InexactFloat64(),
		Available:     b.Available.InexactFloat64(),
		LastResetYear: b.LastResetYear,
	}
}

func toRequestDTO(r pto.PTORequest) RequestDTO {
	return RequestDTO{
		ID:          r.ID,
		UserID:      r.UserID,
		UserName:    r.UserName,
		StartDate:   r.StartDate.Format(dateFormat),
		EndDate:     r.EndDate.Format(dateFormat),
		Type:        string(r.Type),
		Hours:       r.Hours.InexactFloat64(),
		Status:      string(r.Status),
		Reason:      r.Reason,
		ManagerNote: r.ManagerNote,
		IsFavor:     r.IsFavor,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toRequestDTOs(reqs []pto.PTORequest) []RequestDTO {
	dtos := make([]RequestDTO, 0, len(reqs))
	for _, r := range reqs {
		dtos = append(dtos, toRequestDTO(r))
	}
	return dtos
}
