// Package session holds the conversational memory the pipeline keeps between
// queries: the most recently resolved book, scoped to one session. The state
// is an explicit object passed into classify/assemble, never a global, so the
// single-writer rule is enforceable and testable in isolation.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
)

// State is the per-session conversational memory.
//
// Queries within one session are serialized: BeginTurn blocks until the
// previous query's assembly (including its SetLastBook) has completed, so a
// classifier never reads a half-updated book context.
type State struct {
	turn sync.Mutex

	mu       sync.RWMutex
	lastBook string
}

// NewState creates an empty conversation state.
func NewState() *State {
	return &State{}
}

// BeginTurn acquires the session's turn lock.
func (s *State) BeginTurn() { s.turn.Lock() }

// EndTurn releases the session's turn lock.
func (s *State) EndTurn() { s.turn.Unlock() }

// LastBook returns the most recently resolved book, "" when none.
func (s *State) LastBook() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastBook
}

// SetLastBook records the resolved book for the turn. Only the context
// assembler calls this.
func (s *State) SetLastBook(book string) {
	s.mu.Lock()
	s.lastBook = book
	s.mu.Unlock()
}

// Reset clears the remembered book.
func (s *State) Reset() {
	s.mu.Lock()
	s.lastBook = ""
	s.mu.Unlock()
}

type entry struct {
	state    *State
	lastSeen time.Time
}

// Manager owns the session table. Sessions are process-scoped and never
// persisted; idle sessions are swept after the configured TTL.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a session manager with the given idle TTL.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session and returns its identifier and state.
func (m *Manager) Create() (string, *State) {
	id := uuid.NewString()
	st := NewState()

	m.mu.Lock()
	m.sessions[id] = &entry{state: st, lastSeen: m.now()}
	m.mu.Unlock()

	return id, st
}

// Get returns the state for a session, refreshing its idle timer.
func (m *Manager) Get(id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	e.lastSeen = m.now()
	return e.state, nil
}

// Reset clears the remembered book of a session.
func (m *Manager) Reset(id string) error {
	st, err := m.Get(id)
	if err != nil {
		return err
	}
	st.Reset()
	return nil
}

// Delete removes a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sweep removes sessions idle longer than the TTL and returns how many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.ttl)
	dropped := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
