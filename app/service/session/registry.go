package session

import (
	"sync"

	"github.com/samber/oops"
)

// Registry holds all sessions by call id. Terminal sessions stay registered so
// that late webhook events for a finished call resolve to a session that
// absorbs them, instead of looking like unknown calls.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Add(sess *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sess.CallID]; ok {
		return oops.Errorf("session %s already exists", sess.CallID)
	}

	r.sessions[sess.CallID] = sess

	return nil
}

func (r *Registry) Get(callID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[callID]
	return sess, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
