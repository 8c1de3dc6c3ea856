package keypad

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/TeapotSmashers/keypad-calculator/internal/calculator"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(ttl, ThemeLight)
	s.now = clock.now
	return s, clock
}

func TestStoreCreateAndGet(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	sess := s.Create()
	if sess.ID == "" {
		t.Fatal("expected session id")
	}
	if sess.Theme != ThemeLight {
		t.Fatalf("expected theme %q, got %q", ThemeLight, sess.Theme)
	}

	got, err := s.Get(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Calculator != (calculator.Calculator{}) {
		t.Fatalf("expected cleared calculator, got %+v", got.Calculator)
	}

	if _, err := s.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreUpdate(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	sess := s.Create()
	clock.t = clock.t.Add(10 * time.Second)

	updated, err := s.Update(sess.ID, func(cur Session) (Session, error) {
		c, err := cur.Calculator.Input("7")
		cur.Calculator = c
		cur.ID = "ignored"
		return cur, err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != sess.ID {
		t.Fatalf("expected id %q to be kept, got %q", sess.ID, updated.ID)
	}
	if updated.Calculator.Output() != "7" {
		t.Fatalf("expected output %q, got %q", "7", updated.Calculator.Output())
	}
	if !updated.UpdatedAt.Equal(clock.t) {
		t.Fatalf("expected UpdatedAt %s, got %s", clock.t, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(sess.CreatedAt) {
		t.Fatalf("expected CreatedAt to be kept, got %s", updated.CreatedAt)
	}
}

func TestStoreUpdateFailureKeepsSession(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	sess := s.Create()
	boom := errors.New("boom")

	_, err := s.Update(sess.ID, func(cur Session) (Session, error) {
		cur.Theme = ThemeDark
		return cur, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := s.Get(sess.ID)
	if got.Theme != ThemeLight {
		t.Fatalf("expected theme to be unchanged, got %q", got.Theme)
	}

	if _, err := s.Update("missing", func(cur Session) (Session, error) { return cur, nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	sess := s.Create()

	if err := s.Delete(sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d sessions", s.Len())
	}
	if err := s.Delete(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreSweep(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	stale := s.Create()
	clock.t = clock.t.Add(45 * time.Second)
	fresh := s.Create()
	clock.t = clock.t.Add(30 * time.Second)

	if removed := s.Sweep(); removed != 1 {
		t.Fatalf("expected 1 session removed, got %d", removed)
	}
	if _, err := s.Get(stale.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected stale session to be removed, got %v", err)
	}
	if _, err := s.Get(fresh.ID); err != nil {
		t.Fatalf("expected fresh session to remain, got %v", err)
	}
}

func TestStoreRunStopsOnCancel(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestParseTheme(t *testing.T) {
	if th, err := ParseTheme("dark"); err != nil || th != ThemeDark {
		t.Fatalf("expected dark, got %q, %v", th, err)
	}
	if _, err := ParseTheme("blue"); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
}

func TestStoreGaugeTracksConcurrentChanges(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := s.Create()
			if i%2 == 0 {
				_ = s.Delete(sess.ID)
			}
			s.Sweep()
		}()
	}
	wg.Wait()

	if got, want := testutil.ToFloat64(sessionsActive), float64(s.Len()); got != want {
		t.Fatalf("expected gauge %v, got %v", want, got)
	}
}
