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
	"bytes"
	"encoding/json"
	"fmt"
	"net"

	"github.com/sabouaram/evloop/channel"
	liberr "github.com/sabouaram/evloop/errors"
	"github.com/sabouaram/evloop/request"
	"github.com/sabouaram/evloop/response"
	"github.com/sabouaram/evloop/session"
)

// Body is a handler's user-supplied logic. It returns the value to place
// in the response body: a string or []byte is used as is, any other value
// is formatted with fmt.Sprint (JSON-encoded for KindJSON). Any error it
// returns aborts with a 500 (spec §4.5/§7 "handler-uncaught").
type Body func(env *Env) (interface{}, error)

// Kind selects which of the four wire behaviors in spec §4.5 an Entry uses.
type Kind int

const (
	// KindClosing writes a response with the declared content type and
	// closes the socket.
	KindClosing Kind = iota
	// KindJSON is KindClosing with the body value JSON-encoded first.
	KindJSON
	// KindStream keeps the socket open for subsequent SSE publishes.
	KindStream
	// KindRedirect writes a 301/307 redirect and closes.
	KindRedirect
)

// Entry is one registered handler: its declared parameters, its body, and
// the wire behavior that wraps the body's return value.
type Entry struct {
	URI         string
	Kind        Kind
	Specs       []ParamSpec
	Body        Body
	ContentType string // KindClosing / KindJSON
	Permanent   bool   // KindRedirect
	Location    string // KindRedirect
}

// Closing builds a KindClosing entry: the body's return value becomes the
// response body verbatim, under contentType.
func Closing(uri, contentType string, specs []ParamSpec, body Body) *Entry {
	return &Entry{URI: uri, Kind: KindClosing, Specs: specs, Body: body, ContentType: contentType}
}

// JSON builds a KindJSON entry: a closing handler whose body value is
// JSON-encoded before being placed in the response (spec §4.5).
func JSON(uri string, specs []ParamSpec, body Body) *Entry {
	return &Entry{URI: uri, Kind: KindJSON, Specs: specs, Body: body, ContentType: "application/json"}
}

// Stream builds a KindStream (SSE) entry. The socket is left open after
// the initial frame; subsequent delivery happens via channel.Publish from
// elsewhere, typically following a subscribe! call inside body.
func Stream(uri string, specs []ParamSpec, body Body) *Entry {
	return &Entry{URI: uri, Kind: KindStream, Specs: specs, Body: body, ContentType: "text/event-stream"}
}

// Redirect builds a KindRedirect entry. permanent selects 301 vs 307.
func Redirect(uri, location string, permanent bool, specs []ParamSpec, body Body) *Entry {
	return &Entry{URI: uri, Kind: KindRedirect, Specs: specs, Body: body, Location: location, Permanent: permanent}
}

// Dispatch runs the parameter pipeline, invokes the body, and writes the
// appropriate wire response for e.Kind. It returns whether conn should
// remain open (true for KindStream) and any error encountered. channels
// may be nil, in which case Env.Subscribe/Publish become no-ops.
func (e *Entry) Dispatch(conn net.Conn, clientHadCookie bool, sess *session.Session, params *request.Request, channels *channel.Manager) (keepOpen bool, err error) {
	bound, err := bindParameters(e.Specs, params)
	if err != nil {
		return false, err
	}

	env := &Env{Sock: conn, Session: sess, Parameters: params, Bound: bound, Channels: channels}

	value, err := e.Body(env)
	if err != nil {
		return false, liberr.New(ErrUncaught, 500).WithParent(err)
	}

	switch e.Kind {
	case KindJSON:
		encoded, mErr := json.Marshal(value)
		if mErr != nil {
			return false, liberr.New(ErrUncaught, 500).WithParent(mErr)
		}
		return false, writeClosing(conn, e.ContentType, clientHadCookie, sess, encoded)

	case KindStream:
		return true, writeStream(conn, clientHadCookie, sess, value)

	case KindRedirect:
		return false, writeRedirect(conn, e.Permanent, e.Location)

	default: // KindClosing
		return false, writeClosing(conn, e.ContentType, clientHadCookie, sess, toBytes(value))
	}
}

func toBytes(v interface{}) []byte {
	switch t := v.(type) {
	case []byte:
		return t
	case string:
		return []byte(t)
	default:
		return []byte(fmt.Sprint(t))
	}
}

func writeClosing(conn net.Conn, contentType string, clientHadCookie bool, sess *session.Session, body []byte) error {
	r := response.New()
	r.ContentType = contentType
	if !clientHadCookie && sess != nil {
		r.Cookie = sess.Token
	}
	r.SetBody(body)
	return r.Write(conn)
}

func writeStream(conn net.Conn, clientHadCookie bool, sess *session.Session, value interface{}) error {
	r := response.New()
	r.ContentType = "text/event-stream"
	r.KeepAlive = true
	if !clientHadCookie && sess != nil {
		r.Cookie = sess.Token
	}
	var out bytes.Buffer
	if err := r.Write(&out); err != nil {
		return err
	}

	data := "Listening..."
	if value != nil {
		data = string(toBytes(value))
	}
	if err := (response.Frame{Data: data}).Write(&out); err != nil {
		return err
	}
	_, err := conn.Write(out.Bytes())
	return err
}

func writeRedirect(conn net.Conn, permanent bool, location string) error {
	r := response.New()
	if permanent {
		r.Code = "301 Moved Permanently"
	} else {
		r.Code = "307 Temporary Redirect"
	}
	r.Location = location
	r.SetBody([]byte("Resource moved..."))
	return r.Write(conn)
}
