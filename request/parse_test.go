package request

import "testing"

func TestParseHelloWorld(t *testing.T) {
	raw := "GET /hello-world HTTP/1.1\r\n\r\n"
	req, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if req.Resource != "/hello-world" {
		t.Fatalf("resource = %q", req.Resource)
	}
	if len(req.Parameters) != 0 {
		t.Fatalf("expected no parameters, got %v", req.Parameters)
	}
}

func TestParseQueryAndCookie(t *testing.T) {
	raw := "GET /add?a=3&b=4 HTTP/1.1\r\nCookie: abc123\r\nHost: example.com\r\n\r\n"
	req, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if req.SessionToken != "abc123" {
		t.Fatalf("session token = %q", req.SessionToken)
	}
	if v, _ := req.Header("host"); v != "example.com" {
		t.Fatalf("host header = %q", v)
	}
	a, _ := req.Get("a")
	b, _ := req.Get("b")
	if a != "3" || b != "4" {
		t.Fatalf("params = %v", req.Parameters)
	}
}

func TestParseRejectsWrongVersion(t *testing.T) {
	raw := "GET / HTTP/1.0\r\n\r\n"
	if _, err := Parse([]byte(raw)); err == nil {
		t.Fatal("expected error for HTTP/1.0")
	}
}

func TestParseBodyParamsAfterQueryParams(t *testing.T) {
	raw := "POST /submit?a=1 HTTP/1.1\r\nContent-Type: application/x-www-form-urlencoded\r\n\r\na=2&c=3"
	req, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if len(req.Parameters) != 3 {
		t.Fatalf("expected 3 parameters, got %v", req.Parameters)
	}
	a, _ := req.Get("a")
	if a != "2" {
		t.Fatalf("expected body value to win on lookup, got %q", a)
	}
}

func TestParseParamsMissingValueDefaultsEmpty(t *testing.T) {
	ps := ParseParams("a&b=1")
	if len(ps) != 2 || ps[0].Value != "" || ps[1].Value != "1" {
		t.Fatalf("got %v", ps)
	}
}

func TestParseParamsRenderRoundTrip(t *testing.T) {
	ps := []Param{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}
	rendered := RenderParams(ps)
	got := ParseParams(rendered)
	if len(got) != len(ps) {
		t.Fatalf("round-trip mismatch: %v vs %v", got, ps)
	}
	for i := range ps {
		if got[i] != ps[i] {
			t.Fatalf("round-trip mismatch at %d: %v vs %v", i, got[i], ps[i])
		}
	}
}
