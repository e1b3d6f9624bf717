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

package handler

import (
	"strings"
	"sync"

	"github.com/sabouaram/evloop/logger"
)

// Registry is the process-wide URI → Entry table (spec §4.4).
type Registry struct {
	mu  sync.RWMutex
	m   map[string]*Entry
	log logger.Logger
}

// NewRegistry returns an empty registry. log may be nil, in which case
// redefinition warnings are discarded.
func NewRegistry(log logger.Logger) *Registry {
	return &Registry{m: make(map[string]*Entry), log: log}
}

// URIFor normalizes a handler name into its registered URI: "root" maps to
// "/", anything else "foo" maps to "/foo", case-folded.
func URIFor(name string) string {
	name = strings.ToLower(name)
	if name == "root" {
		return "/"
	}
	return "/" + strings.TrimPrefix(name, "/")
}

// Register installs e under e.URI, overwriting (and warning about) any
// existing entry for that URI.
func (r *Registry) Register(e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.m[e.URI]; exists && r.log != nil {
		r.log.Logf(logger.WarnLevel, "handler: redefining existing handler for %q", e.URI)
	}
	r.m[e.URI] = e
}

// Lookup returns the entry registered for uri, if any.
func (r *Registry) Lookup(uri string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.m[uri]
	return e, ok
}
