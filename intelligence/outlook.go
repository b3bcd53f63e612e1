package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flcc/pto-engine/pto"
)

// =============================================================================
// WEEKLY OUTLOOK - HR digest over approved time off
// =============================================================================

// outlookEntry is the shape of an approved request as presented to the
// model. Only fields an HR summary cares about.
type outlookEntry struct {
	UserName  string `json:"userName"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Type      string `json:"type"`
	Hours     string `json:"hours"`
}

// OutlookPrompt builds the weekly outlook prompt from the approved subset
// of the ledger. Callers pass only Approved requests.
func OutlookPrompt(approved []pto.PTORequest) string {
	entries := make([]outlookEntry, 0, len(approved))
	for _, r := range approved {
		entries = append(entries, outlookEntry{
			UserName:  r.UserName,
			StartDate: r.StartDate.Format("2006-01-02"),
			EndDate:   r.EndDate.Format("2006-01-02"),
			Type:      string(r.Type),
			Hours:     r.Hours.String(),
		})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		data = []byte("[]")
	}
	return fmt.Sprintf("Act as an HR assistant for Florida Cloud Construction (FLCC). "+
		"Generate a brief professional weekly outlook for: %s. Keep it concise.", data)
}

// OutlookService produces the weekly outlook digest and records when the
// last one was generated.
type OutlookService struct {
	client   Client
	settings pto.SettingsStore
	clock    pto.Clock
}

// NewOutlookService wires the digest over its collaborators.
func NewOutlookService(client Client, settings pto.SettingsStore, clock pto.Clock) *OutlookService {
	return &OutlookService{client: client, settings: settings, clock: clock}
}

// WeeklyOutlook generates the digest text for the given approved requests.
//
// A generation failure is returned to the caller as an error wrapping
// pto.ErrExternalService; it never crashes the flow. The last-sent
// timestamp is updated only on success.
func (s *OutlookService) WeeklyOutlook(ctx context.Context, approved []pto.PTORequest) (string, error) {
	text, err := s.client.Generate(ctx, OutlookPrompt(approved))
	if err != nil {
		return "", err
	}
	if err := s.settings.SetLastDigestSent(ctx, s.clock.Now()); err != nil {
		return "", err
	}
	return text, nil
}

// LastSent reports when the most recent digest was generated, zero time
// when none has been.
func (s *OutlookService) LastSent(ctx context.Context) (time.Time, error) {
	return s.settings.GetLastDigestSent(ctx)
}
