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

// Package httpserver is the event loop and dispatcher: it owns the
// listening socket, the per-connection buffers, and wires the request,
// handler, session and channel packages together per spec §4.1.
package httpserver

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sabouaram/evloop/channel"
	"github.com/sabouaram/evloop/handler"
	"github.com/sabouaram/evloop/logger"
	"github.com/sabouaram/evloop/session"
)

// Config holds the bind address, the five tunable resource bounds from
// spec §5, and the collaborators the event loop dispatches into. Fields
// are validated with go-playground/validator struct tags, mirroring the
// teacher's ServerConfig.Validate idiom.
type Config struct {
	// Listen is the local bind address, e.g. "127.0.0.1:8080".
	Listen string `validate:"required,hostname_port"`

	// MaxRequestSize is +max_request_size+: the content-size ceiling
	// above which a connection is classified too_big.
	MaxRequestSize int `validate:"required,gt=0"`

	// MaxRequestAge is +max_request_age+: the wall-clock age ceiling
	// above which a connection is classified too_old.
	MaxRequestAge time.Duration `validate:"required,gt=0"`

	// MaxBufferTries is +max_buffer_tries+: the read-attempt ceiling
	// above which a connection is classified too_needy.
	MaxBufferTries int `validate:"required,gt=0"`

	// MaxSessionIdle is +max_session_idle+.
	MaxSessionIdle time.Duration `validate:"required,gt=0"`

	// CleanSessionsEvery is +clean_sessions_every+, defaulting to 1000
	// when zero.
	CleanSessionsEvery uint32

	Registry *handler.Registry
	Sessions *session.Manager
	Channels *channel.Manager
	Logger   logger.Logger
}

// Validate checks Config against its struct tags and cross-field
// invariants not expressible as tags.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("httpserver: invalid config: %w", err)
	}
	if c.Registry == nil {
		return fmt.Errorf("httpserver: invalid config: Registry is required")
	}
	return nil
}

// applyDefaults fills in collaborators omitted by the caller, mirroring
// the teacher's pattern of constructing its default sub-objects in New.
func (c *Config) applyDefaults() {
	if c.Sessions == nil {
		c.Sessions = session.NewManager(c.MaxSessionIdle, c.CleanSessionsEvery)
	}
	if c.Channels == nil {
		c.Channels = channel.NewManager()
	}
	if c.Logger == nil {
		c.Logger = logger.New("httpserver")
	}
}
