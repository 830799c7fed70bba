package dashboard

import (
	"time"

	"github.com/google/uuid"

	"github.com/spencer-p/winddash/pkg/cache"
	"github.com/spencer-p/winddash/pkg/metrics"
)

// Registry keeps sessions in memory, keyed by an id the page stores in its
// cookie. Sessions idle for longer than the TTL are closed and forgotten.
type Registry struct {
	opts     Options
	sessions *cache.Timed[*Session]
}

func NewRegistry(ttl time.Duration, opts Options) *Registry {
	sessions := cache.NewTimed[*Session](ttl)
	sessions.OnEvict(func(_ string, s *Session) {
		s.Close()
	})
	return &Registry{
		opts:     opts,
		sessions: sessions,
	}
}

// Get returns the live session for id and marks it used.
func (r *Registry) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	s, ok := r.sessions.Get(id)
	if ok {
		r.sessions.Touch(id)
	}
	return s, ok
}

// Create starts a new session under a fresh id.
func (r *Registry) Create() *Session {
	s := NewSession(uuid.NewString(), r.opts)
	r.sessions.Set(s.ID, s)
	metrics.SetSessions(r.sessions.Len())
	return s
}

// Lookup returns the session for id, creating one if it is unknown or
// expired.
func (r *Registry) Lookup(id string) *Session {
	if s, ok := r.Get(id); ok {
		return s
	}
	return r.Create()
}

// Sweep closes and forgets expired sessions.
func (r *Registry) Sweep() int {
	n := r.sessions.Sweep()
	metrics.SetSessions(r.sessions.Len())
	return n
}

// Len is the number of sessions held.
func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Transient returns a session that is not kept, for one-off requests.
func (r *Registry) Transient() *Session {
	return NewSession("", r.opts)
}
