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

// Package channel implements the SSE subscription/broadcast table
// (spec §4.7): named channels weakly referencing sockets, with dead
// subscribers reaped the moment a write to them fails. Adapted from the
// net/http-Flusher-based hub idiom seen across the example pack (e.g. an
// SSE hub keyed by client, broadcasting on a per-client channel) down to
// raw net.Conn writes, since this core's wire layer is hand-rolled.
package channel

import (
	"net"
	"sync"

	"github.com/sabouaram/evloop/response"
)

// Manager is the process-wide channel table.
type Manager struct {
	mu    sync.Mutex
	table map[string][]net.Conn
}

// NewManager returns an empty channel table.
func NewManager() *Manager {
	return &Manager{table: make(map[string][]net.Conn)}
}

// Subscribe prepends conn to the subscriber list for key, so the most
// recently subscribed socket is delivered to first on Publish (spec §5:
// "newest first, per prepend policy").
func (m *Manager) Subscribe(key string, conn net.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table[key] = append([]net.Conn{conn}, m.table[key]...)
}

// Publish builds one SSE frame carrying message and writes it to every
// subscriber of key. Any subscriber whose write fails is dropped from the
// channel; this is the channel manager's sole reaping mechanism.
func (m *Manager) Publish(key string, message string) error {
	frame := response.Frame{Data: message}

	m.mu.Lock()
	subs := m.table[key]
	m.mu.Unlock()

	survivors := make([]net.Conn, 0, len(subs))
	for _, conn := range subs {
		if err := frame.Write(conn); err == nil {
			survivors = append(survivors, conn)
		}
	}

	m.mu.Lock()
	m.table[key] = survivors
	m.mu.Unlock()

	return nil
}

// Unsubscribe removes conn from key's subscriber list, used when the
// event loop observes the socket die outside of a Publish call.
func (m *Manager) Unsubscribe(key string, conn net.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.table[key]
	out := make([]net.Conn, 0, len(subs))
	for _, c := range subs {
		if c != conn {
			out = append(out, c)
		}
	}
	m.table[key] = out
}

// Count returns the number of live subscribers on key.
func (m *Manager) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.table[key])
}

// Subscribers returns the total number of (channel, socket) subscriptions
// across every channel, for the stats snapshot exposed by spec §6.
func (m *Manager) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, subs := range m.table {
		total += len(subs)
	}
	return total
}
