package server

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/photomark/internal/editor"
)

type tracked struct {
	session  *editor.Session
	lastUsed atomic.Int64 // unix nanoseconds
}

type registry struct {
	mu       sync.RWMutex
	sessions map[string]*tracked
	now      func() time.Time
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*tracked), now: time.Now}
}

func (r *registry) add(s *editor.Session) {
	t := &tracked{session: s}
	t.lastUsed.Store(r.now().UnixNano())
	r.mu.Lock()
	r.sessions[s.ID()] = t
	r.mu.Unlock()
}

// get returns the session and marks it as used.
func (r *registry) get(id string) (*editor.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	t.lastUsed.Store(r.now().UnixNano())
	return t.session, true
}

func (r *registry) touch(id string) { r.get(id) }

func (r *registry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *registry) list() []*editor.Session {
	r.mu.RLock()
	out := make([]*editor.Session, 0, len(r.sessions))
	for _, t := range r.sessions {
		out = append(out, t.session)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// expire removes and returns the sessions not used for longer than ttl.
func (r *registry) expire(ttl time.Duration) []*editor.Session {
	cutoff := r.now().Add(-ttl).UnixNano()
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*editor.Session
	for id, t := range r.sessions {
		if t.lastUsed.Load() < cutoff {
			out = append(out, t.session)
			delete(r.sessions, id)
		}
	}
	return out
}

func (r *registry) drain() []*editor.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*editor.Session, 0, len(r.sessions))
	for id, t := range r.sessions {
		out = append(out, t.session)
		delete(r.sessions, id)
	}
	return out
}
