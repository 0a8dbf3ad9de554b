package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ssechho/fanchatbot/internal/domain"
	"github.com/ssechho/fanchatbot/internal/observability"
)

// DefaultIdleWindow is how long an untouched session survives by default.
const DefaultIdleWindow = 30 * time.Minute

// ErrUnauthenticated is returned when a session is requested for an identity
// that has not finished authenticating. Running against a loading or signed
// out identity would query the store with an empty username.
var ErrUnauthenticated = errors.New("identity is not authenticated")

// Registry owns the live sessions. A session is created explicitly on
// authentication and ends explicitly on sign-out or implicitly when it sits
// idle past the window, which stands in for the user navigating away.
type Registry struct {
	store      domain.ConversationStore
	completion domain.CompletionClient
	window     time.Duration
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a registry. A non-positive window falls back to
// DefaultIdleWindow.
func NewRegistry(completion domain.CompletionClient, store domain.ConversationStore, window time.Duration) *Registry {
	if window <= 0 {
		window = DefaultIdleWindow
	}
	return &Registry{
		store:      store,
		completion: completion,
		window:     window,
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
}

// Start creates a session for an authenticated identity and loads its
// conversation roster. Anything short of full authentication is rejected.
func (r *Registry) Start(ctx context.Context, identity domain.Identity) (*Session, error) {
	if !identity.Authenticated() {
		return nil, ErrUnauthenticated
	}

	s := newSession(ctx, uuid.NewString(), identity, r.store, r.completion, r.now)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	return s, nil
}

// Get returns the live session for id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	return s, ok
}

// End discards a session. The store is untouched; persisted conversations
// outlive the session that wrote them.
func (r *Registry) End(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
}

// SweepIdle drops sessions idle past the window and reports how many went.
func (r *Registry) SweepIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0

	for id, s := range r.sessions {
		if s.idleSince(now, r.window) {
			delete(r.sessions, id)
			removed++
		}
	}

	return removed
}

// RunSweeper sweeps on an interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	log := observability.Logger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.SweepIdle(); n > 0 {
				log.Info("swept idle sessions", "removed", n)
			}
		}
	}
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
