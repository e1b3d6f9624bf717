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
	"fmt"
	"net"
	"time"

	libatm "github.com/sabouaram/evloop/atomic"
	"github.com/sabouaram/evloop/buffer"
	liberr "github.com/sabouaram/evloop/errors"
	"github.com/sabouaram/evloop/logger"
	"github.com/sabouaram/evloop/request"
	"github.com/sabouaram/evloop/response"
)

const timeoutShutdown = 10 * time.Second

// Stats is a point-in-time snapshot an embedding application can feed to
// its own metrics exporter (spec §6: the core exposes the snapshot, it
// does not force a Prometheus registry on every embedder).
type Stats struct {
	OpenConnections    int
	Sessions           int
	ChannelSubscribers int
}

// Server is the lifecycle interface for the event loop, grounded on the
// teacher's Server interface (GetConfig/SetConfig/IsRunning/Shutdown).
type Server interface {
	Start() error
	Shutdown() error
	IsRunning() bool
	Stats() Stats
	Addr() net.Addr
}

type srv struct {
	cfg      Config
	running  libatm.Value[bool]
	listener net.Listener
	poll     pollset
	table    map[net.Conn]*connEntry
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New validates cfg, fills in omitted collaborators, and returns a Server
// ready to Start.
func New(cfg Config) (Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	s := &srv{
		cfg:     cfg,
		running: libatm.NewValue[bool](),
		table:   make(map[net.Conn]*connEntry),
	}
	return s, nil
}

func (s *srv) IsRunning() bool {
	return s.running.Load()
}

func (s *srv) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *srv) Stats() Stats {
	return Stats{
		OpenConnections:    len(s.table),
		Sessions:           s.cfg.Sessions.Len(),
		ChannelSubscribers: s.cfg.Channels.Subscribers(),
	}
}

// Start binds the listening socket and launches the event loop on its own
// goroutine (the single "OS thread" of spec §5), returning immediately.
func (s *srv) Start() error {
	if s.IsRunning() {
		return liberr.New(ErrAlreadyRunning, 500)
	}

	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("httpserver: listen %s: %w", s.cfg.Listen, err)
	}

	ps, err := newPollset()
	if err != nil {
		_ = ln.Close()
		return err
	}

	s.listener = ln
	s.poll = ps
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running.Store(true)

	s.cfg.Logger.Logf(logger.InfoLevel, "httpserver: listening on %s", s.cfg.Listen)

	go s.loop()

	return nil
}

// Shutdown stops accepting new connections and closes every tracked
// connection, mirroring the teacher's timeout-bounded Shutdown idiom.
func (s *srv) Shutdown() error {
	if !s.IsRunning() {
		return liberr.New(ErrNotRunning, 500)
	}

	close(s.stopCh)

	select {
	case <-s.doneCh:
	case <-time.After(timeoutShutdown):
		s.cfg.Logger.Logf(logger.WarnLevel, "httpserver: shutdown timed out after %s", timeoutShutdown)
	}

	return nil
}

func (s *srv) loop() {
	defer close(s.doneCh)
	defer s.running.Store(false)
	defer s.listener.Close()
	defer s.poll.close()

	for {
		select {
		case <-s.stopCh:
			s.closeAll()
			return
		default:
		}

		s.acceptOne()

		ready, err := s.poll.wait()
		if err != nil {
			s.cfg.Logger.Logf(logger.ErrorLevel, "httpserver: poll wait: %v", err)
			continue
		}

		for _, conn := range ready {
			entry, ok := s.table[conn]
			if !ok {
				continue
			}
			s.service(entry)
		}
	}
}

func (s *srv) acceptOne() {
	type deadliner interface {
		SetDeadline(time.Time) error
	}
	if d, ok := s.listener.(deadliner); ok {
		_ = d.SetDeadline(time.Now().Add(acceptPoll))
	}

	conn, err := s.listener.Accept()
	if err != nil {
		return
	}

	entry := &connEntry{conn: conn, buf: nil}
	s.table[conn] = entry
	if err := s.poll.add(conn); err != nil {
		s.cfg.Logger.Logf(logger.WarnLevel, "httpserver: pollset add failed: %v", err)
	}
}

const acceptPoll = 20 * time.Millisecond

// service implements the per-socket readiness handling of spec §4.1:
// buffer_read, then the four termination predicates in priority order.
func (s *srv) service(e *connEntry) {
	if e.buf == nil {
		e.buf = buffer.New(e.conn)
	}

	if err := e.buf.Read(s.cfg.MaxRequestSize); err != nil {
		s.drop(e, false)
		return
	}

	switch {
	case e.buf.TooBig(s.cfg.MaxRequestSize):
		writeStatus(e.conn, "413 Payload Too Large")
		s.drop(e, true)

	case e.buf.TooOld(s.cfg.MaxRequestAge):
		writeStatus(e.conn, "400 Bad Request")
		s.drop(e, true)

	case e.buf.TooNeedy(s.cfg.MaxBufferTries):
		writeStatus(e.conn, "400 Bad Request")
		s.drop(e, true)

	case e.buf.Complete():
		s.dispatch(e)
	}
}

// dispatch parses the accumulated bytes, resolves the session, finds the
// registered handler, and runs its parameter pipeline and body.
func (s *srv) dispatch(e *connEntry) {
	req, err := request.Parse(e.buf.Contents)
	if err != nil {
		writeErr(e.conn, err)
		s.drop(e, true)
		return
	}

	hadCookie := false
	sess := s.cfg.Sessions.Get(req.SessionToken)
	if sess != nil {
		hadCookie = true
	} else {
		var sErr error
		sess, sErr = s.cfg.Sessions.New()
		if sErr != nil {
			writeErr(e.conn, liberr.New(ErrNotFound, 500).WithParent(sErr))
			s.drop(e, true)
			return
		}
	}

	entry, ok := s.cfg.Registry.Lookup(req.Resource)
	if !ok {
		writeStatus(e.conn, "404 Not Found")
		s.drop(e, true)
		return
	}

	keepOpen, err := entry.Dispatch(e.conn, hadCookie, sess, req, s.cfg.Channels)
	if err != nil {
		writeErr(e.conn, err)
		s.drop(e, true)
		return
	}

	s.drop(e, !keepOpen)
}

// drop removes e from the event loop's bookkeeping, optionally closing
// the underlying socket (kept open for SSE streams).
func (s *srv) drop(e *connEntry, close bool) {
	s.poll.remove(e.conn)
	delete(s.table, e.conn)
	if close {
		_ = e.conn.Close()
	}
}

func (s *srv) closeAll() {
	for conn := range s.table {
		_ = conn.Close()
	}
}

func writeStatus(conn net.Conn, code string) {
	r := response.New()
	r.Code = code
	_ = r.Write(conn)
}

func writeErr(conn net.Conn, err error) {
	status := 500
	if e, ok := err.(*liberr.Error); ok {
		status = e.Status()
	}
	r := response.New()
	r.Code = fmt.Sprintf("%d %s", status, httpStatusText(status))
	_ = r.Write(conn)
}

func httpStatusText(status int) string {
	switch status {
	case 400:
		return "Bad Request"
	case 404:
		return "Not Found"
	case 413:
		return "Payload Too Large"
	case 500:
		return "Internal Server Error"
	default:
		return "Error"
	}
}
