package session

import (
	"testing"
	"time"
)

func TestNewAndGet(t *testing.T) {
	m := NewManager(time.Hour, 1000)
	s, err := m.New()
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Token) != 64 {
		t.Fatalf("expected 64-char token, got %d chars", len(s.Token))
	}

	got := m.Get(s.Token)
	if got == nil || got.Token != s.Token {
		t.Fatal("expected to retrieve session by token")
	}
}

func TestGetEvictsIdleSession(t *testing.T) {
	m := NewManager(time.Millisecond, 1000)
	s, _ := m.New()
	time.Sleep(5 * time.Millisecond)

	if got := m.Get(s.Token); got != nil {
		t.Fatal("expected idle session to be evicted")
	}
	if got := m.Get(s.Token); got != nil {
		t.Fatal("expected session to stay gone after eviction")
	}
}

func TestGetPokesLastPoked(t *testing.T) {
	m := NewManager(time.Hour, 1000)
	s, _ := m.New()
	s.LastPoked = time.Now().Add(-time.Minute)

	got := m.Get(s.Token)
	if got == nil {
		t.Fatal("expected session")
	}
	if time.Since(got.LastPoked) > time.Second {
		t.Fatal("expected LastPoked to be refreshed to now")
	}
}

func TestGetUnknownToken(t *testing.T) {
	m := NewManager(time.Hour, 1000)
	if m.Get("does-not-exist") != nil {
		t.Fatal("expected nil for unknown token")
	}
}

func TestHooksInvokedInOrder(t *testing.T) {
	m := NewManager(time.Hour, 1000)
	var order []int
	m.NewSessionHook(func(*Session) { order = append(order, 1) })
	m.NewSessionHook(func(*Session) { order = append(order, 2) })

	if _, err := m.New(); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("got %v", order)
	}

	m.ClearSessionHooks()
	order = nil
	if _, err := m.New(); err != nil {
		t.Fatal(err)
	}
	if len(order) != 0 {
		t.Fatalf("expected no hooks after clear, got %v", order)
	}
}

func TestCleanEveryTriggersSweep(t *testing.T) {
	m := NewManager(time.Millisecond, 3)
	s1, _ := m.New()
	time.Sleep(5 * time.Millisecond)
	_, _ = m.New()
	_, _ = m.New() // third New triggers the sweep before inserting itself

	m.mu.Lock()
	_, stillThere := m.table[s1.Token]
	m.mu.Unlock()
	if stillThere {
		t.Fatal("expected idle session to be swept by clean_sessions_every")
	}
}
