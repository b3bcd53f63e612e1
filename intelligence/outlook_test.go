package intelligence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flcc/pto-engine/pto"
	"github.com/flcc/pto-engine/pto/store"
)

type fakeClient struct {
	prompt string
	text   string
	err    error
}

func (f *fakeClient) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func sampleApproved() []pto.PTORequest {
	return []pto.PTORequest{{
		ID:        "r1",
		UserID:    "u1",
		UserName:  "Alex Rivera",
		StartDate: pto.Date(2024, time.May, 10),
		EndDate:   pto.Date(2024, time.May, 12),
		Type:      pto.TypeFullDay,
		Hours:     decimal.NewFromInt(24),
		Status:    pto.StatusApproved,
	}}
}

func TestOutlookPrompt_EmbedsApprovedRequests(t *testing.T) {
	prompt := OutlookPrompt(sampleApproved())

	assert.Contains(t, prompt, "Florida Cloud Construction (FLCC)")
	assert.Contains(t, prompt, `"userName":"Alex Rivera"`)
	assert.Contains(t, prompt, `"startDate":"2024-05-10"`)
	assert.Contains(t, prompt, "Keep it concise.")
}

func TestOutlookPrompt_EmptyLedger(t *testing.T) {
	prompt := OutlookPrompt(nil)

	assert.Contains(t, prompt, "[]")
}

func TestWeeklyOutlook_RecordsLastSentOnSuccess(t *testing.T) {
	// GIVEN: A working client and a fixed clock
	// WHEN: Generating the digest
	// THEN: The text comes back and the last-sent timestamp is recorded

	now := pto.Date(2024, time.June, 3)
	mem := store.NewMemory()
	client := &fakeClient{text: "Quiet week ahead."}
	svc := NewOutlookService(client, mem, pto.FixedClock{T: now})

	text, err := svc.WeeklyOutlook(context.Background(), sampleApproved())
	require.NoError(t, err)
	assert.Equal(t, "Quiet week ahead.", text)

	last, err := svc.LastSent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now, last)
}

func TestWeeklyOutlook_FailureLeavesLastSentUntouched(t *testing.T) {
	// GIVEN: A failing client
	// WHEN: Generating the digest
	// THEN: The error surfaces and no timestamp is recorded

	mem := store.NewMemory()
	client := &fakeClient{err: errors.New("boom")}
	svc := NewOutlookService(client, mem, pto.FixedClock{T: pto.Date(2024, time.June, 3)})

	_, err := svc.WeeklyOutlook(context.Background(), nil)
	require.Error(t, err)

	last, err := svc.LastSent(context.Background())
	require.NoError(t, err)
	assert.True(t, last.IsZero())
}

func TestGemini_MissingAPIKey(t *testing.T) {
	g := NewGemini("")

	_, err := g.Generate(context.Background(), "hello")

	assert.ErrorIs(t, err, pto.ErrExternalService)
}
