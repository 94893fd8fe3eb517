package session

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultRoom is the pre-populated session slot every client shares.
const DefaultRoom = "main"

// Registry maps room keys to live sessions. The default room always exists;
// other keys are created on first lookup, so supporting multiple independent
// rooms needs no structural change.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	results  ResultSink
}

// NewRegistry creates a registry with the default room in place.
func NewRegistry(results ResultSink) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		results:  results,
	}
	r.sessions[DefaultRoom] = New(DefaultRoom, results)
	return r
}

// Get returns the session for a room key, creating it on first use.
func (r *Registry) Get(key string) *Session {
	r.mu.RLock()
	s, ok := r.sessions[key]
	r.mu.RUnlock()
	if ok {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok {
		return s
	}
	s = New(key, r.results)
	r.sessions[key] = s
	return s
}

// Leave routes a departure to the session and rebuilds the slot as a
// brand-new empty session once the last member is gone.
func (r *Registry) Leave(key, id string) {
	r.mu.RLock()
	s, ok := r.sessions[key]
	r.mu.RUnlock()
	if !ok {
		return
	}
	s.Leave(id)
	if s.Empty() {
		r.mu.Lock()
		r.sessions[key] = New(key, r.results)
		r.mu.Unlock()
		log.Debug().Str("room", key).Msg("room emptied, slot rebuilt")
	}
}
