package keypad

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/TeapotSmashers/keypad-calculator/internal/calculator"
	"github.com/TeapotSmashers/keypad-calculator/internal/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidTheme    = errors.New("invalid theme")
)

// Theme is the display theme of a session.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
}

// Session is one keypad: its current calculator state and theme.
type Session struct {
	ID         string
	Calculator calculator.Calculator
	Theme      Theme
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store holds sessions in memory. It is the only writer of each session's
// current state; updates are serialised by a single mutex.
type Store struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	theme    Theme
	now      func() time.Time
}

// NewStore returns a store whose sessions expire after ttl without updates.
func NewStore(ttl time.Duration, theme Theme) *Store {
	return &Store{
		sessions: make(map[string]Session),
		ttl:      ttl,
		theme:    theme,
		now:      time.Now,
	}
}

func (s *Store) Create() Session {
	now := s.now()
	sess := Session{
		ID:        uuid.New().String(),
		Theme:     s.theme,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess
	sessionsActive.Set(float64(len(s.sessions)))
	return sess
}

func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// Update replaces the session with fn's result. If fn fails the stored
// session is left as it was.
func (s *Store) Update(id string, fn func(Session) (Session, error)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}

	next, err := fn(sess)
	if err != nil {
		return sess, err
	}
	next.ID = sess.ID
	next.CreatedAt = sess.CreatedAt
	next.UpdatedAt = s.now()

	s.sessions[id] = next
	return next, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	sessionsActive.Set(float64(len(s.sessions)))
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and reports how many
// were removed.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	sessionsActive.Set(float64(len(s.sessions)))
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				observability.Logger.Info("expired sessions removed",
					zap.Int("removed", removed),
					zap.Int("active", s.Len()),
				)
			}
		}
	}
}
