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

package request

import (
	"net/url"
	"strings"

	liberr "github.com/sabouaram/evloop/errors"
)

const (
	ErrMalformedRequestLine liberr.CodeError = iota + liberr.MinPkgRequest
	ErrUnsupportedVersion
	ErrMalformedHeader
)

func init() {
	liberr.RegisterMessage(ErrMalformedRequestLine, "malformed request line")
	liberr.RegisterMessage(ErrUnsupportedVersion, "unsupported HTTP version, only HTTP/1.1 is accepted")
	liberr.RegisterMessage(ErrMalformedHeader, "malformed header line")
}

const supportedVersion = "HTTP/1.1"

// Parse decodes a raw byte buffer (header region plus, per spec §4.2, the
// single body line that follows the CRLF-CRLF terminator) into a Request.
// Any malformed request line or unsupported HTTP version is reported as a
// 400-mapped *errors.Error, per spec §4.3.
func Parse(raw []byte) (*Request, error) {
	lines := strings.Split(string(raw), "\r\n")
	if len(lines) == 0 {
		return nil, liberr.New(ErrMalformedRequestLine, 400)
	}

	first := strings.Split(lines[0], " ")
	if len(first) != 3 {
		return nil, liberr.New(ErrMalformedRequestLine, 400)
	}
	version := first[2]
	if version != supportedVersion {
		return nil, liberr.New(ErrUnsupportedVersion, 400)
	}

	resource, rawQuery, _ := strings.Cut(first[1], "?")

	req := &Request{
		Resource: resource,
		RawQuery: rawQuery,
		Headers:  make(map[string]string),
	}

	i := 1
	for ; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			i++
			break
		}
		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, liberr.New(ErrMalformedHeader, 400)
		}
		name = normalizeHeader(name)
		if name == "cookie" {
			req.SessionToken = value
			continue
		}
		req.Headers[name] = value
	}

	var bodyLine string
	if i < len(lines) {
		bodyLine = lines[i]
	}

	req.Parameters = append(ParseParams(rawQuery), ParseParams(bodyLine)...)

	return req, nil
}

// ParseParams decodes an application/x-www-form-urlencoded string into an
// ordered parameter list, preserving declaration order (spec §4.3).
func ParseParams(s string) []Param {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "&")
	out := make([]Param, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		name, value, _ := strings.Cut(p, "=")
		out = append(out, Param{Name: name, Value: value})
	}
	return out
}

// RenderParams is the inverse of ParseParams, used by the round-trip
// property in spec §8.
func RenderParams(ps []Param) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		parts = append(parts, p.Name+"="+p.Value)
	}
	return strings.Join(parts, "&")
}

// Decode URL-decodes a raw parameter value (spec §4.4 step 2a).
func Decode(raw string) (string, error) {
	return url.QueryUnescape(raw)
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
