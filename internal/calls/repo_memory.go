package calls

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// MemoryStore is an in-memory SessionStore and IdentityStore useful for
// tests and local runs. It is not intended for production use.
type MemoryStore struct {
	mu         sync.Mutex
	sessions   map[string]Session
	identities map[string]Identity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]Session{}, identities: map[string]Identity{}}
}

func (m *MemoryStore) PutIdentity(id Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[id.UserID] = id
}

func (m *MemoryStore) Identity(_ context.Context, userID string) (Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.identities[userID]
	if !ok {
		return Identity{}, ErrUserNotFound
	}
	return id, nil
}

func (m *MemoryStore) Create(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.CallSID]; exists {
		return errors.New("call session already exists")
	}
	m.sessions[s.CallSID] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, callSID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[callSID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Transition(_ context.Context, callSID string, from []Stage, u StageUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[callSID]
	if !ok || !slices.Contains(from, s.Stage) {
		return false, nil
	}
	s.Stage = u.Stage
	s.LastStatusEvent = u.LastStatusEvent
	if u.MachineDetectionResult != "" {
		s.MachineDetectionResult = u.MachineDetectionResult
	}
	s.UpdatedAt = u.UpdatedAt
	m.sessions[callSID] = s
	return true, nil
}
