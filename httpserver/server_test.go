package httpserver

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sabouaram/evloop/handler"
)

func freshConfig(t *testing.T, reg *handler.Registry) Config {
	t.Helper()
	return Config{
		Listen:             "127.0.0.1:0",
		MaxRequestSize:     1 << 20,
		MaxRequestAge:      time.Second,
		MaxBufferTries:     1000,
		MaxSessionIdle:     time.Minute,
		CleanSessionsEvery: 1000,
		Registry:           reg,
	}
}

func TestConfigValidateRejectsMissingFields(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty config")
	}
}

func startTestServer(t *testing.T, reg *handler.Registry) Server {
	t.Helper()
	srv, err := New(freshConfig(t, reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown() })
	return srv
}

func dial(t *testing.T, srv Server) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readAll(t *testing.T, conn net.Conn, deadline time.Duration) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(deadline))
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}
	return sb.String()
}

func TestEndToEndClosingHandler(t *testing.T) {
	reg := handler.NewRegistry(nil)
	reg.Register(handler.Closing(handler.URIFor("root"), "text/html", nil, func(env *handler.Env) (interface{}, error) {
		return "hello", nil
	}))

	srv := startTestServer(t, reg)
	conn := dial(t, srv)

	_, _ = conn.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
	out := readAll(t, conn, time.Second)

	if !strings.Contains(out, "200 OK") || !strings.Contains(out, "hello") {
		t.Fatalf("unexpected response: %q", out)
	}
	if !strings.Contains(out, "Set-Cookie:") {
		t.Fatalf("expected a fresh session cookie on first contact: %q", out)
	}
}

func TestEndToEndNotFound(t *testing.T) {
	reg := handler.NewRegistry(nil)
	srv := startTestServer(t, reg)
	conn := dial(t, srv)

	_, _ = conn.Write([]byte("GET /nope HTTP/1.1\r\n\r\n"))
	out := readAll(t, conn, time.Second)

	if !strings.Contains(out, "404 Not Found") {
		t.Fatalf("expected 404, got %q", out)
	}
}

func TestEndToEndUnsupportedVersionIsBadRequest(t *testing.T) {
	reg := handler.NewRegistry(nil)
	srv := startTestServer(t, reg)
	conn := dial(t, srv)

	_, _ = conn.Write([]byte("GET / HTTP/1.0\r\n\r\n"))
	out := readAll(t, conn, time.Second)

	if !strings.Contains(out, "400 Bad Request") {
		t.Fatalf("expected 400, got %q", out)
	}
}

func TestEndToEndAdditionHandler(t *testing.T) {
	reg := handler.NewRegistry(nil)
	specs := []handler.ParamSpec{{Name: "a", Type: "integer"}, {Name: "b", Type: "integer"}}
	reg.Register(handler.Closing(handler.URIFor("add"), "text/plain", specs, func(env *handler.Env) (interface{}, error) {
		a := env.Bound["a"].(int64)
		b := env.Bound["b"].(int64)
		return []byte{byte('0' + a + b)}, nil
	}))

	srv := startTestServer(t, reg)
	conn := dial(t, srv)

	_, _ = conn.Write([]byte("GET /add?a=3&b=4 HTTP/1.1\r\n\r\n"))
	out := readAll(t, conn, time.Second)

	if !strings.Contains(out, "200 OK") || !strings.Contains(out, "7") {
		t.Fatalf("unexpected response: %q", out)
	}
}

func TestEndToEndTooBigPayload(t *testing.T) {
	reg := handler.NewRegistry(nil)
	cfg := freshConfig(t, reg)
	cfg.MaxRequestSize = 16
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown() })

	conn, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, _ = conn.Write([]byte("GET /" + strings.Repeat("x", 64) + " HTTP/1.1\r\n"))
	out := readAll(t, conn, time.Second)

	if !strings.Contains(out, "413 Payload Too Large") {
		t.Fatalf("expected 413, got %q", out)
	}
}

func TestEndToEndStreamHandlerKeepsSocketOpen(t *testing.T) {
	reg := handler.NewRegistry(nil)
	reg.Register(handler.Stream(handler.URIFor("events"), nil, func(env *handler.Env) (interface{}, error) {
		return nil, nil
	}))

	srv := startTestServer(t, reg)
	conn := dial(t, srv)

	_, _ = conn.Write([]byte("GET /events HTTP/1.1\r\n\r\n"))
	r := bufio.NewReader(conn)
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))

	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(line, "200 OK") {
		t.Fatalf("unexpected status line: %q", line)
	}
}
