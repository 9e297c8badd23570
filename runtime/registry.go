package runtime

import (
	"chat-live/contract"
	"chat-live/domain"
	"chat-live/errors"
	"fmt"
	"sync"
)

// Registry is the exclusive owner of the set of live connections.
// All mutations and the fan-out snapshot are mutually exclusive, so a
// snapshot never observes a partially applied admit or remove.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.Session // connection ID -> session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]contract.Session),
	}
}

// Admit inserts a new authenticated connection with its delivery sink.
// A duplicate connection ID is an invariant violation, not a routine path:
// the transport assigns unique IDs, so this only fires on programmer error.
func (r *Registry) Admit(conn domain.Connection, sink contract.EventSink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[conn.ID]; ok {
		return fmt.Errorf("%w: %s", errors.ErrDuplicateConnection, conn.ID)
	}
	r.sessions[conn.ID] = contract.Session{Connection: conn, Sink: sink}
	return nil
}

// Remove deletes and returns the removed connection, or nil if already
// absent. Idempotent: racing disconnect signals remove an entry once.
func (r *Registry) Remove(connectionID string) *domain.Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[connectionID]
	if !ok {
		return nil
	}
	delete(r.sessions, connectionID)
	conn := session.Connection
	return &conn
}

// All returns a snapshot of the current sessions for fan-out.
// The returned slice is a copy; later mutations are not observed through it.
func (r *Registry) All() []contract.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]contract.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		snapshot = append(snapshot, session)
	}
	return snapshot
}

// Find returns a copy of the connection with the given ID, or nil.
func (r *Registry) Find(connectionID string) *domain.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[connectionID]
	if !ok {
		return nil
	}
	conn := session.Connection
	return &conn
}

// Size returns the number of live connections.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
