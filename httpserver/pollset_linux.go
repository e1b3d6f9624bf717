//go:build linux

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
	"syscall"

	"golang.org/x/sys/unix"
)

// epollPollset is the Linux pollset backed by epoll, level-triggered on
// EPOLLIN so a connection with unread bytes still pending keeps surfacing
// until drained.
type epollPollset struct {
	epfd  int
	byFD  map[int]net.Conn
	raw   map[net.Conn]syscall.RawConn
	ready []unix.EpollEvent
}

func newPollset() (pollset, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, fmt.Errorf("httpserver: epoll_create1: %w", err)
	}
	return &epollPollset{
		epfd:  epfd,
		byFD:  make(map[int]net.Conn),
		raw:   make(map[net.Conn]syscall.RawConn),
		ready: make([]unix.EpollEvent, 64),
	}, nil
}

func connFD(conn net.Conn) (int, syscall.RawConn, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return 0, nil, fmt.Errorf("httpserver: connection does not support raw fd access")
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return 0, nil, err
	}
	var fd int
	cerr := raw.Control(func(p uintptr) { fd = int(p) })
	if cerr != nil {
		return 0, nil, cerr
	}
	return fd, raw, nil
}

func (p *epollPollset) add(conn net.Conn) error {
	fd, raw, err := connFD(conn)
	if err != nil {
		return err
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("httpserver: epoll_ctl add: %w", err)
	}
	p.byFD[fd] = conn
	p.raw[conn] = raw
	return nil
}

func (p *epollPollset) remove(conn net.Conn) {
	fd, _, err := connFD(conn)
	if err != nil {
		return
	}
	_ = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	delete(p.byFD, fd)
	delete(p.raw, conn)
}

func (p *epollPollset) wait() ([]net.Conn, error) {
	n, err := unix.EpollWait(p.epfd, p.ready, int(pollTimeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, fmt.Errorf("httpserver: epoll_wait: %w", err)
	}

	out := make([]net.Conn, 0, n)
	for i := 0; i < n; i++ {
		if conn, ok := p.byFD[int(p.ready[i].Fd)]; ok {
			out = append(out, conn)
		}
	}
	return out, nil
}

func (p *epollPollset) close() error {
	return unix.Close(p.epfd)
}
