/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

// Package buffer holds the per-connection accumulator of incoming bytes
// (spec §3/§4.2): a non-blocking incremental reader plus the bookkeeping
// the event loop needs to classify a connection as too_big, too_old,
// too_needy, or complete.
package buffer

import (
	"bytes"
	"errors"
	"net"
	"time"
)

// DefaultReadChunk is the size of each non-blocking drain read. The spec's
// source reads one character at a time; spec §9 explicitly allows larger
// chunked reads provided the termination predicates and "never block on
// one connection" invariant are preserved.
const DefaultReadChunk = 4096

// pollTimeout bounds how long a single Read call may block waiting for
// data, used to emulate a non-blocking read over a blocking net.Conn.
const pollTimeout = 2 * time.Millisecond

// ErrEOF is returned by Read when the peer has closed the connection or
// any other I/O error occurred; spec §4.2 maps all such errors to EOF.
var ErrEOF = errors.New("buffer: connection eof")

// Buffer is the mutable per-connection read state described in spec §3.
type Buffer struct {
	Contents        []byte
	ContentSize     int
	StartedAt       time.Time
	Tries           int
	FoundTerminator bool

	conn net.Conn
}

// New allocates a Buffer bound to conn, stamped with the current time.
func New(conn net.Conn) *Buffer {
	return &Buffer{StartedAt: time.Now(), conn: conn}
}

var terminator = []byte("\r\n\r\n")

// Read drains all currently-available bytes without blocking more than
// pollTimeout per attempt. It increments Tries exactly once per call. It
// returns ErrEOF if the peer closed the connection or any I/O error
// occurred; otherwise nil, once no more data is immediately available.
//
// Read returns as soon as ContentSize exceeds maxSize, leaving the
// too_big classification to the caller (spec §4.1/§4.2).
func (b *Buffer) Read(maxSize int) error {
	b.Tries++

	chunk := make([]byte, DefaultReadChunk)
	for {
		if err := b.conn.SetReadDeadline(time.Now().Add(pollTimeout)); err != nil {
			return ErrEOF
		}

		n, err := b.conn.Read(chunk)
		if n > 0 {
			b.Contents = append(b.Contents, chunk[:n]...)
			b.ContentSize += n
			b.updateTerminator(n)

			if b.ContentSize > maxSize {
				return nil
			}
		}

		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil
			}
			return ErrEOF
		}
	}
}

// updateTerminator scans for CRLF CRLF anywhere in the bytes appended by
// the read that just completed, not merely the buffer's tail: a single
// Read often drains headers and a application/x-www-form-urlencoded body
// together, in which case the terminator sits in the middle of Contents,
// not at its end (spec §4.2: "after each character push, test whether
// the last four characters form CRLF CRLF" — generalized here to scan
// every position newly pushed by a chunked read, per spec §9's chunking
// allowance). scanFrom backs up by len(terminator)-1 so a terminator
// split across the chunk boundary from the previous call is still found.
func (b *Buffer) updateTerminator(appended int) {
	if b.FoundTerminator {
		return
	}
	n := len(b.Contents)
	scanFrom := n - appended - (len(terminator) - 1)
	if scanFrom < 0 {
		scanFrom = 0
	}
	if bytes.Contains(b.Contents[scanFrom:], terminator) {
		b.FoundTerminator = true
	}
}

// TooBig reports whether the buffer has exceeded maxRequestSize.
func (b *Buffer) TooBig(maxRequestSize int) bool {
	return b.ContentSize > maxRequestSize
}

// TooOld reports whether the buffer has been open longer than maxAge.
func (b *Buffer) TooOld(maxAge time.Duration) bool {
	return time.Since(b.StartedAt) > maxAge
}

// TooNeedy reports whether the buffer has required more than maxTries
// read attempts.
func (b *Buffer) TooNeedy(maxTries int) bool {
	return b.Tries > maxTries
}

// Complete reports whether the header terminator has been observed.
func (b *Buffer) Complete() bool {
	return b.FoundTerminator
}
