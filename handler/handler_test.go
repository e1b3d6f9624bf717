package handler

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/sabouaram/evloop/channel"
	"github.com/sabouaram/evloop/htype"
	"github.com/sabouaram/evloop/request"
)

func TestURIFor(t *testing.T) {
	cases := map[string]string{
		"root": "/",
		"Root": "/",
		"foo":  "/foo",
		"FOO":  "/foo",
	}
	for in, want := range cases {
		if got := URIFor(in); got != want {
			t.Fatalf("URIFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegisterOverwrites(t *testing.T) {
	r := NewRegistry(nil)
	first := Closing("/foo", "text/html", nil, func(*Env) (interface{}, error) { return "first", nil })
	second := Closing("/foo", "text/html", nil, func(*Env) (interface{}, error) { return "second", nil })

	r.Register(first)
	r.Register(second)

	got, ok := r.Lookup("/foo")
	if !ok {
		t.Fatal("expected handler to be registered")
	}
	v, _ := got.Body(nil)
	if v != "second" {
		t.Fatalf("expected second registration to win, got %v", v)
	}
}

func TestLookupMissing(t *testing.T) {
	r := NewRegistry(nil)
	if _, ok := r.Lookup("/nope"); ok {
		t.Fatal("expected no handler for unregistered uri")
	}
}

func newConnPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { _ = a.Close(); _ = b.Close() })
	return a, b
}

func TestDispatchIntegerAddition(t *testing.T) {
	server, client := newConnPair(t)

	specs := []ParamSpec{{Name: "a", Type: "integer"}, {Name: "b", Type: "integer"}}
	e := Closing("/add", "text/plain", specs, func(env *Env) (interface{}, error) {
		a := env.Bound["a"].(int64)
		b := env.Bound["b"].(int64)
		return strconv.FormatInt(a+b, 10), nil
	})

	params := &request.Request{Parameters: []request.Param{{Name: "a", Value: "3"}, {Name: "b", Value: "4"}}}

	done := make(chan error, 1)
	go func() {
		_, err := e.Dispatch(server, true, nil, params, nil)
		done <- err
	}()

	buf := make([]byte, 256)
	n, _ := client.Read(buf)
	if err := <-done; err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	out := string(buf[:n])
	if !contains(out, "\r\n\r\n7") {
		t.Fatalf("expected body '7', got %q", out)
	}
}

func TestDispatchMissingParameterFails(t *testing.T) {
	server, _ := newConnPair(t)

	specs := []ParamSpec{{Name: "a", Type: "integer"}}
	e := Closing("/add", "text/plain", specs, func(env *Env) (interface{}, error) {
		return "unreachable", nil
	})

	params := &request.Request{}
	_, err := e.Dispatch(server, true, nil, params, nil)
	if err == nil {
		t.Fatal("expected error for missing parameter")
	}
}

func TestDispatchPredicateViolation(t *testing.T) {
	server, _ := newConnPair(t)

	specs := []ParamSpec{{
		Name: "n", Type: "integer",
		Predicates: []Predicate{
			func(v interface{}, _ map[string]interface{}) bool {
				n := v.(int64)
				return n >= 2 && n <= 64 && n%2 == 0
			},
		},
	}}
	e := Closing("/even-small", "text/plain", specs, func(env *Env) (interface{}, error) {
		return "ok", nil
	})

	params := &request.Request{Parameters: []request.Param{{Name: "n", Value: "3"}}}
	_, err := e.Dispatch(server, true, nil, params, nil)
	if err == nil {
		t.Fatal("expected predicate failure for n=3")
	}
}

func TestDispatchPriorityOrdering(t *testing.T) {
	htype.Define("user-test", 1, func(raw string) (interface{}, error) { return raw, nil }, nil)
	htype.Define("game-test", 2, func(raw string) (interface{}, error) { return raw, nil }, nil)

	server, client := newConnPair(t)

	var seenUserFirst bool
	specs := []ParamSpec{
		{Name: "g", Type: "game-test", Predicates: []Predicate{
			func(_ interface{}, bound map[string]interface{}) bool {
				_, seenUserFirst = bound["u"]
				return true
			},
		}},
		{Name: "u", Type: "user-test"},
	}
	e := Closing("/pair", "text/plain", specs, func(env *Env) (interface{}, error) { return "ok", nil })

	params := &request.Request{Parameters: []request.Param{{Name: "g", Value: "g1"}, {Name: "u", Value: "u1"}}}

	done := make(chan error, 1)
	go func() {
		_, err := e.Dispatch(server, true, nil, params, nil)
		done <- err
	}()
	buf := make([]byte, 256)
	_, _ = client.Read(buf)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seenUserFirst {
		t.Fatal("expected 'u' to be bound before 'g' predicate ran, regardless of declaration order")
	}
}

func TestDispatchJSONEncodesBody(t *testing.T) {
	server, client := newConnPair(t)
	e := JSON("/json", nil, func(*Env) (interface{}, error) {
		return map[string]int{"x": 1}, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := e.Dispatch(server, true, nil, &request.Request{}, nil)
		done <- err
	}()
	buf := make([]byte, 256)
	n, _ := client.Read(buf)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(buf[:n])
	if !contains(out, "application/json") || !contains(out, `{"x":1}`) {
		t.Fatalf("unexpected json response: %q", out)
	}
}

func TestDispatchStreamKeepsSocketOpen(t *testing.T) {
	server, client := newConnPair(t)
	e := Stream("/events", nil, func(*Env) (interface{}, error) { return nil, nil })

	done := make(chan error, 1)
	keptOpen := make(chan bool, 1)
	go func() {
		open, err := e.Dispatch(server, false, nil, &request.Request{}, nil)
		keptOpen <- open
		done <- err
	}()
	buf := make([]byte, 512)
	n, _ := client.Read(buf)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !<-keptOpen {
		t.Fatal("expected stream handler to keep socket open")
	}
	out := string(buf[:n])
	if !contains(out, "text/event-stream") || !contains(out, "data: Listening...") {
		t.Fatalf("unexpected stream response: %q", out)
	}
}

func TestDispatchStreamSubscribesAndReceivesPublish(t *testing.T) {
	server, client := newConnPair(t)
	channels := channel.NewManager()

	e := Stream("/events", nil, func(env *Env) (interface{}, error) {
		env.Subscribe("room-1")
		return "joined", nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := e.Dispatch(server, false, nil, &request.Request{}, channels)
		done <- err
	}()

	buf := make([]byte, 512)
	n, _ := client.Read(buf)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !contains(string(buf[:n]), "data: joined") {
		t.Fatalf("unexpected initial frame: %q", string(buf[:n]))
	}

	if got := channels.Count("room-1"); got != 1 {
		t.Fatalf("expected 1 subscriber on room-1, got %d", got)
	}

	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	read := make(chan error, 1)
	go func() {
		var rErr error
		n, rErr = client.Read(buf)
		read <- rErr
	}()

	if err := channels.Publish("room-1", "hello"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if err := <-read; err != nil {
		t.Fatalf("expected published frame, got error: %v", err)
	}
	if !contains(string(buf[:n]), "data: hello") {
		t.Fatalf("unexpected published frame: %q", string(buf[:n]))
	}
}

func TestDispatchRedirect(t *testing.T) {
	server, client := newConnPair(t)
	e := Redirect("/old", "/new", true, nil, func(*Env) (interface{}, error) { return nil, nil })

	done := make(chan error, 1)
	go func() {
		_, err := e.Dispatch(server, true, nil, &request.Request{}, nil)
		done <- err
	}()
	buf := make([]byte, 256)
	n, _ := client.Read(buf)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(buf[:n])
	if !contains(out, "301 Moved Permanently") || !contains(out, "Location: /new") {
		t.Fatalf("unexpected redirect response: %q", out)
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
