/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

// Package errors provides a small code-based error taxonomy: every error
// carries a CodeError, an HTTP status it maps to, and an optional parent
// error it wraps.
package errors

// CodeError is a package-scoped numeric error code, grouped by MinPkg*
// offsets below so codes never collide across packages.
type CodeError uint16

const (
	UnknownError CodeError = 0
)

// MinPkg* offsets, one block per package of this module, mirroring the
// teacher's errors/modules.go block-per-package convention.
const (
	MinPkgBuffer  CodeError = 100
	MinPkgRequest CodeError = 200
	MinPkgHType   CodeError = 300
	MinPkgHandler CodeError = 400
	MinPkgSession CodeError = 500
	MinPkgChannel CodeError = 600
	MinPkgServer  CodeError = 700
	MinPkgStatic  CodeError = 800
)

var messages = make(map[CodeError]string)

// RegisterMessage associates a human-readable message with a code. Called
// once per code from each package's init().
func RegisterMessage(code CodeError, message string) {
	messages[code] = message
}

// Message returns the registered message for a code, or a generic fallback.
func Message(code CodeError) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return "unknown error"
}
