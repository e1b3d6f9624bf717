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

// Package htype is the process-wide registry of named parameter types: a
// type has a priority (lower binds first), an optional convert function
// from raw string to typed value, and an optional assert predicate over
// the converted value.
package htype

import "sync"

// Convert turns a raw (already URL-decoded) string into a typed value.
type Convert func(raw string) (interface{}, error)

// Assert reports whether a converted value satisfies the type's contract.
type Assert func(v interface{}) bool

// Keyword is an interned, lowercase string, mirroring the source
// language's keyword/symbol values.
type Keyword string

// HttpType is one entry of the type registry.
type HttpType struct {
	Name     string
	Priority int
	Convert  Convert
	Assert   Assert
}

type registry struct {
	mu sync.RWMutex
	m  map[string]HttpType
}

var global = &registry{m: make(map[string]HttpType)}

// Define installs name into the global registry. priority defaults to 0.
// Re-defining an existing name overwrites it, matching the handler
// registry's own overwrite-on-redefine policy.
func Define(name string, priority int, convert Convert, assert Assert) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.m[name] = HttpType{Name: name, Priority: priority, Convert: convert, Assert: assert}
}

// Lookup returns the named type and whether it is registered.
func Lookup(name string) (HttpType, bool) {
	global.mu.RLock()
	defer global.mu.RUnlock()
	t, ok := global.m[name]
	return t, ok
}

func init() {
	registerBuiltins()
}
