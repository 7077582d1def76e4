package session

import (
	"context"
	"sync"
)

// State is the persisted shape of a session. A zero Token means no session;
// Role and UserID are only meaningful alongside a non-empty Token.
type State struct {
	Token  string
	Role   string
	UserID int
}

// Store is the durable storage a session survives process restarts in.
// Implementations: storage.SessionRepository (Postgres) and MemoryStore.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
	Clear(ctx context.Context) error
}

// MemoryStore is a process-local Store, used in tests and when no database
// is configured.
type MemoryStore struct {
	mu    sync.Mutex
	state State
	set   bool
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored state, or a zero State when nothing was saved.
func (m *MemoryStore) Load(_ context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return State{}, nil
	}
	return m.state, nil
}

// Save replaces the stored state.
func (m *MemoryStore) Save(_ context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.set = true
	return nil
}

// Clear removes the stored state.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{}
	m.set = false
	return nil
}
