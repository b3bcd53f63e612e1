/*
handlers_test.go - HTTP API tests over an in-memory SQLite store

Each test spins up the real router with a fixed clock and a stubbed
text-generation client, then drives it through httptest.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flcc/pto-engine/pto"
	"github.com/flcc/pto-engine/store/sqlite"
)

// stubAI returns canned text or a canned error.
type stubAI struct {
	text string
	err  error
}

func (s stubAI) Generate(context.Context, string) (string, error) {
	return s.text, s.err
}

func newTestServer(t *testing.T, now time.Time, ai stubAI) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, pto.FixedClock{T: now}, ai)
	require.NoError(t, SeedDefaults(context.Background(), h))

	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// =============================================================================
// USER ENDPOINT TESTS
// =============================================================================

func TestListUsers_SeededRoster(t *testing.T) {
	srv := newTestServer(t, pto.Date(2024, time.June, 1), stubAI{})

	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/users", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	users := decode[[]UserDTO](t, raw)
	require.Len(t, users, 2)
	assert.Equal(t, "Alex Rivera", users[0].Name)
	assert.Equal(t, "Eleanor Vance", users[1].Name)
}

func TestGetUser_UnknownReturns404(t *testing.T) {
	srv := newTestServer(t, pto.Date(2024, time.June, 1), stubAI{})

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/users/ghost", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetRole_Switches(t *testing.T) {
	srv := newTestServer(t, pto.Date(2024, time.June, 1), stubAI{})

	resp, raw := doJSON(t, http.MethodPut, srv.URL+"/api/users/u1/role",
		SetRoleRequest{Role: "Manager"})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := decode[UserDTO](t, raw)
	assert.Equal(t, "Manager", user.Role)
}

func TestSetRole_RejectsUnknownRole(t *testing.T) {
	srv := newTestServer(t, pto.Date(2024, time.June, 1), stubAI{})

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/users/u1/role",
		SetRoleRequest{Role: "Owner"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetBalance_SeededHistory(t *testing.T) {
	// GIVEN: The seed data (hired 2022-03-15, one 24h approval)
	// WHEN: Reading the balance at 2024-06-01, past the anniversary
	// THEN: available rebases to 11 weeks * 1.54 and accrued = used + available

	srv := newTestServer(t, pto.Date(2024, time.June, 1), stubAI{})

	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/users/u1/balance", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	b := decode[BalanceDTO](t, raw)
	assert.Equal(t, 2024, b.LastResetYear)
	assert.InDelta(t, 16.94, b.Available, 0.0001)
	assert.InDelta(t, 24.0, b.Used, 0.0001)
	assert.InDelta(t, b.Used+b.Available, b.Accrued, 0.0001)
}

// =============================================================================
// REQUEST ENDPOINT TESTS
// =============================================================================

func TestCreateRequest_HappyPath(t *testing.T) {
	srv := newTestServer(t, pto.Date(2024, time.June, 1), stubAI{})

	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/requests", CreateRequestRequest{
		UserID:    "u1",
		StartDate: "2024-07-01",
		EndDate:   "2024-07-03",
		Type:      "Half Day",
		Reason:    "Appointments",
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	req := decode[RequestDTO](t, raw)
	assert.Equal(t, "Pending", req.Status)
	assert.Equal(t, "Alex Rivera", req.UserName)
	assert.InDelta(t, 12.0, req.Hours, 0.0001)
}

func TestCreateRequest_EndBeforeStartReturns400(t *testing.T) {
	srv := newTestServer(t, pto.Date(2024, time.June, 1), stubAI{})

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/requests", CreateRequestRequest{
		UserID:    "u1",
		StartDate: "2024-07-03",
		EndDate:   "2024-07-01",
		Type:      "Full Day",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateRequest_UnknownUserReturns404(t *testing.T) {
	srv := newTestServer(t, pto.Date(2024, time.June, 1), stubAI{})

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/requests", CreateRequestRequest{
		UserID:    "ghost",
		StartDate: "2024-07-01",
		EndDate:   "2024-07-01",
		Type:      "Full Day",
	})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApproveDenyFlow(t *testing.T) {
	// GIVEN: A freshly created request
	// WHEN: Approving it, then denying the now-approved request
	// THEN: First decision lands with its note; the second returns 409

	srv := newTestServer(t, pto.Date(2024, time.June, 1), stubAI{})

	_, raw := doJSON(t, http.MethodPost, srv.URL+"/api/requests", CreateRequestRequest{
		UserID:    "u1",
		StartDate: "2024-07-01",
		EndDate:   "2024-07-01",
		Type:      "Full Day",
	})
	created := decode[RequestDTO](t, raw)

	note := "Approved, enjoy"
	favor := true
	resp, raw := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/approve", srv.URL, created.ID),
		DecisionRequest{ManagerNote: &note, IsFavor: &favor})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	approved := decode[RequestDTO](t, raw)
	assert.Equal(t, "Approved", approved.Status)
	assert.Equal(t, "Approved, enjoy", approved.ManagerNote)
	assert.True(t, approved.IsFavor)

	resp, _ = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/deny", srv.URL, created.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDecision_UnknownIDReturns404(t *testing.T) {
	srv := newTestServer(t, pto.Date(2024, time.June, 1), stubAI{})

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/requests/ghost/approve", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListAway_CoversSeededRequest(t *testing.T) {
	srv := newTestServer(t, pto.Date(2024, time.June, 1), stubAI{})

	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/requests/away?date=2024-05-11", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	away := decode[[]RequestDTO](t, raw)
	require.Len(t, away, 1)
	assert.Equal(t, "Alex Rivera", away[0].UserName)

	resp, raw = doJSON(t, http.MethodGet, srv.URL+"/api/requests/away?date=2024-05-13", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]RequestDTO](t, raw))
}

// =============================================================================
// REPORT ENDPOINT TESTS
// =============================================================================

func TestRecipients_SeededAndReplaceable(t *testing.T) {
	srv := newTestServer(t, pto.Date(2024, time.June, 1), stubAI{})

	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/recipients", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[RecipientsDTO](t, raw)
	assert.Equal(t, []string{"eleanor@flccmail.com"}, got.Emails)

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/recipients",
		SaveRecipientsRequest{Emails: []string{"hr@flccmail.com"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, raw = doJSON(t, http.MethodGet, srv.URL+"/api/recipients", nil)
	got = decode[RecipientsDTO](t, raw)
	assert.Equal(t, []string{"hr@flccmail.com"}, got.Emails)
}

func TestGenerateOutlook_Success(t *testing.T) {
	now := pto.Date(2024, time.June, 1)
	srv := newTestServer(t, now, stubAI{text: "Quiet week ahead."})

	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/reports/outlook", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[OutlookDTO](t, raw)
	assert.Equal(t, "Quiet week ahead.", out.Text)

	// The last-digest timestamp is recorded
	_, raw = doJSON(t, http.MethodGet, srv.URL+"/api/recipients", nil)
	got := decode[RecipientsDTO](t, raw)
	assert.Equal(t, now.Format(time.RFC3339), got.LastDigestSent)
}

func TestGenerateOutlook_FailureReturns502(t *testing.T) {
	// GIVEN: A failing text-generation collaborator
	// WHEN: Requesting the outlook
	// THEN: A descriptive 502, never a crash

	failure := fmt.Errorf("%w: model unavailable", pto.ErrExternalService)
	srv := newTestServer(t, pto.Date(2024, time.June, 1), stubAI{err: failure})

	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/reports/outlook", nil)

	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	errResp := decode[ErrorResponse](t, raw)
	assert.Contains(t, errResp.Details, "model unavailable")
}
