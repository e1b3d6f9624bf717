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

// Package handler is the URI registry and the typed-parameter pipeline
// described in spec §4.4/§4.5: one handler per URI, each declaring a list
// of named, optionally typed parameters that are extracted, converted,
// asserted and predicate-checked before the handler body runs.
package handler

import (
	"net"
	"net/url"
	"sort"

	"github.com/sabouaram/evloop/channel"
	liberr "github.com/sabouaram/evloop/errors"
	"github.com/sabouaram/evloop/htype"
	"github.com/sabouaram/evloop/request"
	"github.com/sabouaram/evloop/session"
)

// Error codes for this package, registered against errors.MinPkgHandler.
const (
	ErrMissingParameter liberr.CodeError = liberr.MinPkgHandler + iota
	ErrConvertFailed
	ErrAssertFailed
	ErrPredicateFailed
	ErrNotFound
	ErrUncaught
)

func init() {
	liberr.RegisterMessage(ErrMissingParameter, "handler: missing required parameter")
	liberr.RegisterMessage(ErrConvertFailed, "handler: parameter conversion failed")
	liberr.RegisterMessage(ErrAssertFailed, "handler: parameter assertion failed")
	liberr.RegisterMessage(ErrPredicateFailed, "handler: parameter predicate failed")
	liberr.RegisterMessage(ErrNotFound, "handler: no handler registered for this URI")
	liberr.RegisterMessage(ErrUncaught, "handler: uncaught error from handler body")
}

// Predicate is evaluated with the converted value of its own parameter and
// the full set of previously bound parameters (spec §4.4 step 2.d).
type Predicate func(value interface{}, bound map[string]interface{}) bool

// ParamSpec declares one handler parameter. An untyped parameter (Type =="")
// is bound as the raw, URL-decoded string with priority 0 and no checks.
type ParamSpec struct {
	Name       string
	Type       string
	Predicates []Predicate
}

// Env is what a handler body receives after the parameter pipeline runs.
type Env struct {
	Sock       net.Conn
	Session    *session.Session
	Parameters *request.Request
	Bound      map[string]interface{}
	Channels   *channel.Manager
}

// Subscribe implements spec §4.4 step 3's subscribe!: it registers
// env.Sock as a listener on key, so later Publish calls against the same
// key deliver to this socket. A Stream handler body calls this before
// returning its initial frame value. A nil Channels (e.g. a Closing
// handler body reused in a test harness with no manager wired) is a
// no-op.
func (e *Env) Subscribe(key string) {
	if e.Channels == nil {
		return
	}
	e.Channels.Subscribe(key, e.Sock)
}

// Publish implements spec §4.7's publish!: it broadcasts message to every
// socket currently subscribed to key.
func (e *Env) Publish(key, message string) error {
	if e.Channels == nil {
		return nil
	}
	return e.Channels.Publish(key, message)
}

// sortedByPriority stably sorts specs by ascending type priority,
// untyped parameters defaulting to priority 0 (spec §4.4 step 1).
func sortedByPriority(specs []ParamSpec) []ParamSpec {
	out := make([]ParamSpec, len(specs))
	copy(out, specs)
	priority := func(s ParamSpec) int {
		if s.Type == "" {
			return 0
		}
		t, ok := htype.Lookup(s.Type)
		if !ok {
			return 0
		}
		return t.Priority
	}
	sort.SliceStable(out, func(i, j int) bool {
		return priority(out[i]) < priority(out[j])
	})
	return out
}

// bindParameters runs the parameter pipeline (spec §4.4 step 2) in
// priority-sorted order and returns the bound values keyed by parameter
// name, or a 400-mapped *errors.Error on the first failure.
func bindParameters(specs []ParamSpec, params *request.Request) (map[string]interface{}, error) {
	bound := make(map[string]interface{}, len(specs))

	for _, spec := range sortedByPriority(specs) {
		raw, ok := params.Get(spec.Name)
		if !ok {
			return nil, liberr.New(ErrMissingParameter, 400)
		}

		decoded, err := url.QueryUnescape(raw)
		if err != nil {
			return nil, liberr.New(ErrConvertFailed, 400).WithParent(err)
		}

		value := interface{}(decoded)

		if spec.Type != "" {
			t, ok := htype.Lookup(spec.Type)
			if !ok {
				return nil, liberr.New(ErrConvertFailed, 400)
			}
			if t.Convert != nil {
				value, err = t.Convert(decoded)
				if err != nil {
					return nil, liberr.New(ErrConvertFailed, 400).WithParent(err)
				}
			}
			if t.Assert != nil && !t.Assert(value) {
				return nil, liberr.New(ErrAssertFailed, 400)
			}
		}

		for _, pred := range spec.Predicates {
			if !pred(value, bound) {
				return nil, liberr.New(ErrPredicateFailed, 400)
			}
		}

		bound[spec.Name] = value
	}

	return bound, nil
}
