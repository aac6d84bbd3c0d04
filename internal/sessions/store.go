// Package sessions keeps per-visitor ephemeral state: display name, quote
// lines and a bounded conversation history. Nothing survives the process or
// the TTL; an expired session is indistinguishable from a brand-new one.
package sessions

import (
	"context"
	"sync"
	"time"

	"construbot_backend/internal/quote"
)

// Turn is one conversation exchange kept as generation context. History is
// never the source of truth for quote content.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is one visitor's state. Values are copied out of the store; callers
// never mutate a stored session directly — all changes go through Update.
type Session struct {
	VisitorID    string
	DisplayName  string
	Quote        []quote.Line
	History      []Turn
	LastActivity time.Time
}

// Patch carries the fields an Update replaces. Nil fields are left as-is.
type Patch struct {
	DisplayName *string
	Quote       *[]quote.Line
	History     *[]Turn
}

// Store maps visitor identity to sessions with TTL-based lazy eviction.
// Visitor identity derivation is the transport layer's responsibility; the
// store only needs a stable opaque key per visitor for the TTL window.
type Store struct {
	ttl           time.Duration
	historyWindow int
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store. historyWindow bounds the turns kept per session.
func New(ttl time.Duration, historyWindow int, opts ...Option) *Store {
	s := &Store{
		ttl:           ttl,
		historyWindow: historyWindow,
		now:           time.Now,
		sessions:      make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the visitor's session, creating a fresh one when none exists or
// the existing one has outlived the TTL. Expired sessions are replaced, never
// merged.
func (s *Store) Get(visitorID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getLocked(visitorID)
}

func (s *Store) getLocked(visitorID string) *Session {
	now := s.now()
	existing, ok := s.sessions[visitorID]
	if ok && now.Sub(existing.LastActivity) < s.ttl {
		return existing
	}
	fresh := &Session{VisitorID: visitorID, LastActivity: now}
	s.sessions[visitorID] = fresh
	return fresh
}

// Update merges the patch into the visitor's session and bumps LastActivity.
// The stored session is replaced with a new value; concurrent updates to the
// same visitor are last-write-wins, acceptable for single-user-interactive
// traffic.
func (s *Store) Update(visitorID string, patch Patch) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.getLocked(visitorID)
	next := *current
	if patch.DisplayName != nil {
		next.DisplayName = *patch.DisplayName
	}
	if patch.Quote != nil {
		next.Quote = *patch.Quote
	}
	if patch.History != nil {
		next.History = trimHistory(*patch.History, s.historyWindow)
	}
	next.LastActivity = s.now()
	s.sessions[visitorID] = &next
	return next
}

// Sweep removes expired sessions. Eviction is lazy on access, so running this
// is optional housekeeping to bound memory.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActivity) >= s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps at the given interval until ctx is canceled.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func trimHistory(history []Turn, window int) []Turn {
	if window <= 0 || len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}
