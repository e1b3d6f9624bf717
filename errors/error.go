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

package errors

import "fmt"

// Error is this module's error type: a code, the HTTP status it maps to,
// and an optional parent error being wrapped.
type Error struct {
	code   CodeError
	status int
	parent error
}

// New builds an Error for code, mapped to the given HTTP status.
func New(code CodeError, status int) *Error {
	return &Error{code: code, status: status}
}

// WithParent returns a copy of e wrapping parent.
func (e *Error) WithParent(parent error) *Error {
	return &Error{code: e.code, status: e.status, parent: parent}
}

func (e *Error) Code() CodeError {
	return e.code
}

// Status returns the HTTP status code this error maps to.
func (e *Error) Status() int {
	return e.status
}

func (e *Error) Unwrap() error {
	return e.parent
}

func (e *Error) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("%s: %s", Message(e.code), e.parent.Error())
	}
	return Message(e.code)
}
