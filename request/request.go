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

// Package request holds the structured Request model and the HTTP/1.1
// byte-buffer parser that produces it.
package request

// Param is one entry of a Request's ordered parameter list. Parameters
// keep declaration order: query parameters first, then body parameters,
// matching spec §3's "body values appearing after query values".
type Param struct {
	Name  string
	Value string
}

// Request is the structured form of a parsed HTTP/1.1 request.
type Request struct {
	Resource     string
	RawQuery     string
	Headers      map[string]string
	Parameters   []Param
	SessionToken string
}

// Get returns the last-inserted value for name, matching "last-insertion
// wins on lookup" from spec §3.
func (r *Request) Get(name string) (string, bool) {
	val, found := "", false
	for _, p := range r.Parameters {
		if p.Name == name {
			val, found = p.Value, true
		}
	}
	return val, found
}

// Header returns a header value by normalized (lowercase) name.
func (r *Request) Header(name string) (string, bool) {
	v, ok := r.Headers[normalizeHeader(name)]
	return v, ok
}
