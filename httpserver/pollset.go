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

// pollTimeout bounds a single pollset.wait call, satisfying the "loop
// MUST NOT block on any single connection" invariant of spec §4.1 even
// on platforms without edge-triggered readiness (§4.1: "may poll with a
// small timeout, e.g. 5s" — this implementation uses a shorter default
// so Shutdown is responsive).
const pollTimeout = 200 * time.Millisecond

// pollset multiplexes readiness across an accepted-connection set. add
// registers a freshly accepted connection; remove deregisters one that
// has been closed or dropped; wait blocks up to pollTimeout and returns
// the subset of registered connections that are currently readable.
//
// Two implementations exist: pollset_linux.go backs this with real
// epoll via golang.org/x/sys/unix; pollset_other.go is the portable
// fallback described in spec §4.1 for platforms lacking edge-triggered
// readiness, which simply offers every registered connection each cycle
// and relies on buffer.Read's own short read-deadline to stay
// non-blocking.
type pollset interface {
	add(conn net.Conn) error
	remove(conn net.Conn)
	wait() ([]net.Conn, error)
	close() error
}
