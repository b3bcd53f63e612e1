// Package store provides in-memory implementations of the pto persistence
// interfaces, for tests and development.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/flcc/pto-engine/pto"
)

// =============================================================================
// MEMORY STORE - In-memory RequestStore + UserStore
// =============================================================================

// Memory keeps requests in visible order: newest-created-first, because
// inserts prepend. Mirrors the production store's ordering contract.
type Memory struct {
	mu         sync.RWMutex
	requests   []pto.PTORequest
	users      map[string]pto.User
	recipients []string
	lastDigest time.Time
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]pto.User)}
}

// InsertRequest prepends; the head of the slice is the newest request.
func (m *Memory) InsertRequest(_ context.Context, req pto.PTORequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append([]pto.PTORequest{req}, m.requests...)
	return nil
}

func (m *Memory) UpdateRequest(_ context.Context, req pto.PTORequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.requests {
		if m.requests[i].ID == req.ID {
			m.requests[i] = req
			return nil
		}
	}
	return &pto.NotFoundError{ID: req.ID}
}

func (m *Memory) GetRequest(_ context.Context, id string) (*pto.PTORequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListRequests(_ context.Context) ([]pto.PTORequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]pto.PTORequest, len(m.requests))
	copy(out, m.requests)
	return out, nil
}

// =============================================================================
// USER DIRECTORY
// =============================================================================

func (m *Memory) SaveUser(_ context.Context, u pto.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (*pto.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]pto.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]pto.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

// =============================================================================
// DIGEST SETTINGS
// =============================================================================

func (m *Memory) GetRecipients(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.recipients))
	copy(out, m.recipients)
	return out, nil
}

func (m *Memory) SaveRecipients(_ context.Context, emails []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipients = append([]string{}, emails...)
	return nil
}

func (m *Memory) GetLastDigestSent(_ context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastDigest, nil
}

func (m *Memory) SetLastDigestSent(_ context.Context, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastDigest = at
	return nil
}
