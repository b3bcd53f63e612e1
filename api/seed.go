package api

import (
	"context"
	"fmt"
	"time"

	"github.com/flcc/pto-engine/pto"
)

// =============================================================================
// DEFAULT DATA - First-run seeding
// =============================================================================

// SeedDefaults populates an empty store with the default company roster,
// one approved request, and the digest recipient list. A store that
// already has users is left untouched.
//
// The approved request goes through the ledger so its hours follow the
// creation-time formula rather than a hand-entered figure.
func SeedDefaults(ctx context.Context, h *Handler) error {
	existing, err := h.Store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed: list users: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	alex := pto.User{
		ID:       "u1",
		Name:     "Alex Rivera",
		Email:    "alex.rivera@flccmail.com",
		Role:     pto.RoleEmployee,
		HireDate: pto.Date(2022, time.March, 15),
		JobTitle: "Site Supervisor",
	}
	eleanor := pto.User{
		ID:       "u2",
		Name:     "Eleanor Vance",
		Email:    "eleanor@flccmail.com",
		Role:     pto.RoleManager,
		HireDate: pto.Date(2021, time.January, 10),
		JobTitle: "Operations Manager",
	}
	for _, u := range []pto.User{alex, eleanor} {
		if err := h.Store.SaveUser(ctx, u); err != nil {
			return fmt.Errorf("seed: save user %s: %w", u.ID, err)
		}
	}

	created, err := h.Ledger.Create(ctx, alex, pto.RequestInput{
		StartDate: pto.Date(2024, time.May, 10),
		EndDate:   pto.Date(2024, time.May, 12),
		Type:      pto.TypeFullDay,
		Reason:    "Family trip",
	})
	if err != nil {
		return fmt.Errorf("seed: create request: %w", err)
	}
	if _, err := h.Ledger.SetStatus(ctx, created.ID, pto.StatusChange{
		Status: pto.StatusApproved,
	}); err != nil {
		return fmt.Errorf("seed: approve request: %w", err)
	}

	if err := h.Store.SaveRecipients(ctx, []string{"eleanor@flccmail.com"}); err != nil {
		return fmt.Errorf("seed: save recipients: %w", err)
	}
	return nil
}
