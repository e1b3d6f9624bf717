/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package session is the process-wide session table: bounded-lifetime
// tokens with idle eviction and lifecycle hooks, per spec §4.6. It is a
// mutex-guarded map with a lazy expiry check, after the shape of the
// teacher's generic cache package, specialized to store *Session by
// token instead of an arbitrary value type.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Session is one server-side record keyed by its Token.
type Session struct {
	Token     string
	LastPoked time.Time
}

// Hook is invoked with every newly-created Session, on the event-loop
// thread, in registration order (spec §4.6).
type Hook func(*Session)

// Manager is the process-wide session table.
type Manager struct {
	maxIdle    time.Duration
	cleanEvery uint32

	mu    sync.Mutex
	table map[string]*Session
	count uint32
	hooks []Hook
}

// NewManager builds a session table. maxIdle and cleanEvery are the
// +max_session_idle+ and +clean_sessions_every+ bounds from spec §4.6;
// cleanEvery defaults to 1000 when 0.
func NewManager(maxIdle time.Duration, cleanEvery uint32) *Manager {
	if cleanEvery == 0 {
		cleanEvery = 1000
	}
	return &Manager{
		maxIdle:    maxIdle,
		cleanEvery: cleanEvery,
		table:      make(map[string]*Session),
	}
}

// NewSessionHook appends hook to the list invoked by New.
func (m *Manager) NewSessionHook(hook Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// ClearSessionHooks removes every registered hook.
func (m *Manager) ClearSessionHooks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = nil
}

// New issues a fresh Session with a 64-character cryptographically secure
// token, every +clean_sessions_every+ calls triggering an idle sweep
// first (spec §4.6).
func (m *Manager) New() (*Session, error) {
	m.mu.Lock()
	m.count++
	if m.count >= m.cleanEvery {
		m.count = 0
		m.cleanLocked()
	}
	m.mu.Unlock()

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	s := &Session{Token: token, LastPoked: time.Now()}

	m.mu.Lock()
	m.table[s.Token] = s
	hooks := append([]Hook(nil), m.hooks...)
	m.mu.Unlock()

	for _, h := range hooks {
		h(s)
	}

	return s, nil
}

// Get looks up token, returning nil if absent or idle-expired
// (in which case the entry is removed). A live hit is poked (its
// LastPoked is refreshed) before being returned, per spec §4.6/§8.
func (m *Manager) Get(token string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.table[token]
	if !ok {
		return nil
	}
	if m.idling(s) {
		delete(m.table, token)
		return nil
	}
	s.LastPoked = time.Now()
	return s
}

func (m *Manager) idling(s *Session) bool {
	return time.Since(s.LastPoked) > m.maxIdle
}

// Idling reports whether s has been idle longer than +max_session_idle+.
func (m *Manager) Idling(s *Session) bool {
	return m.idling(s)
}

// Clean scans the table and removes every idle-expired session.
func (m *Manager) Clean() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanLocked()
}

func (m *Manager) cleanLocked() {
	for token, s := range m.table {
		if m.idling(s) {
			delete(m.table, token)
		}
	}
}

// Len returns the number of tracked sessions, including any not yet
// lazily evicted.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.table)
}

func newToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
