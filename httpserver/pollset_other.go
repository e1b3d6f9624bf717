//go:build !linux

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

package httpserver

import (
	"net"
	"time"
)

// fallbackPollset is the non-Linux readiness multiplexer described in
// spec §4.1 for "platforms without edge-triggered readiness": rather than
// a true select(2)/kqueue(2) binding (out of scope for a teaching build),
// it offers every registered connection each cycle, sleeping pollTimeout
// between cycles. Each connection's own buffer.Read call stays
// non-blocking via its short internal read deadline, so this still
// satisfies the "MUST NOT block on any single connection" invariant.
type fallbackPollset struct {
	conns map[net.Conn]struct{}
}

func newPollset() (pollset, error) {
	return &fallbackPollset{conns: make(map[net.Conn]struct{})}, nil
}

func (p *fallbackPollset) add(conn net.Conn) error {
	p.conns[conn] = struct{}{}
	return nil
}

func (p *fallbackPollset) remove(conn net.Conn) {
	delete(p.conns, conn)
}

func (p *fallbackPollset) wait() ([]net.Conn, error) {
	time.Sleep(pollTimeout)
	out := make([]net.Conn, 0, len(p.conns))
	for c := range p.conns {
		out = append(out, c)
	}
	return out, nil
}

func (p *fallbackPollset) close() error {
	return nil
}
