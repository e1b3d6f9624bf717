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

// Package response serializes HTTP responses and SSE frames to a socket,
// per spec §4.8.
package response

import (
	"fmt"
	"io"
	"strings"
)

// Response is the output of a handler, before it is written to the wire.
type Response struct {
	Code        string
	ContentType string
	Charset     string
	Cookie      string
	Location    string
	KeepAlive   bool
	Body        []byte
	hasBody     bool
}

// New returns a Response with the spec's default field values.
func New() *Response {
	return &Response{
		Code:        "200 OK",
		ContentType: "text/html",
		Charset:     "utf-8",
	}
}

// SetBody sets the response body. An explicit empty body still counts as
// present (hasBody), distinguishing it from "no body".
func (r *Response) SetBody(b []byte) *Response {
	r.Body = b
	r.hasBody = true
	return r
}

// Write serializes the response to w using CRLF line endings, per the
// wire format in spec §4.8. Headers and body go out in a single write.
func (r *Response) Write(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "HTTP/1.1 %s\r\n", r.Code)
	fmt.Fprintf(&b, "Content-Type: %s; charset=%s\r\n", r.ContentType, r.Charset)
	b.WriteString("Cache-Control: no-cache, no-store, must-revalidate\r\n")

	if r.Cookie != "" {
		fmt.Fprintf(&b, "Set-Cookie: %s\r\n", r.Cookie)
	}
	if r.Location != "" {
		fmt.Fprintf(&b, "Location: %s\r\n", r.Location)
	}
	if r.KeepAlive {
		b.WriteString("Connection: keep-alive\r\n")
		b.WriteString("Expires: Thu, 01 Jan 1970 00:00:01 GMT\r\n")
	}
	if r.hasBody {
		fmt.Fprintf(&b, "Content-Length: %d\r\n\r\n", len(r.Body))
	} else {
		b.WriteString("\r\n")
	}

	if r.hasBody {
		b.Write(r.Body)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
