package inspect

import "sync"

// Registry keeps one session per page target.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Open returns the session for id, calling create only when none exists.
// The boolean reports whether the session was created by this call.
func (r *Registry) Open(id string, create func() (*Session, error)) (*Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s, false, nil
	}
	s, err := create()
	if err != nil {
		return nil, false, err
	}
	r.sessions[id] = s
	return s, true, nil
}

// Get returns the session for id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close cancels and forgets the session for id.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Cancel()
	}
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
