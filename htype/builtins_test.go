package htype

import (
	"math"
	"testing"
)

func TestConvertInteger(t *testing.T) {
	cases := map[string]int64{
		"42":     42,
		"-7":     -7,
		"+5":     5,
		"12abc":  12,
		"  99  ": 99,
	}
	for raw, want := range cases {
		v, err := convertInteger(raw)
		if err != nil {
			t.Fatalf("convertInteger(%q): %v", raw, err)
		}
		if v.(int64) != want {
			t.Fatalf("convertInteger(%q) = %v, want %v", raw, v, want)
		}
	}
}

func TestConvertIntegerRejectsJunkOnly(t *testing.T) {
	if _, err := convertInteger("abc"); err == nil {
		t.Fatal("expected error for non-numeric input")
	}
}

func TestConvertIntegerSaturatesOnOverflow(t *testing.T) {
	v, err := convertInteger("999999999999999999999999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(int64) != math.MaxInt64 {
		t.Fatalf("expected saturation at MaxInt64, got %v", v)
	}
}

func TestKeywordLowercases(t *testing.T) {
	ty, ok := Lookup("keyword")
	if !ok {
		t.Fatal("keyword type not registered")
	}
	v, err := ty.Convert("HELLO")
	if err != nil {
		t.Fatal(err)
	}
	if v.(Keyword) != Keyword("hello") {
		t.Fatalf("got %v", v)
	}
}

func TestListOfIntegerAssert(t *testing.T) {
	ty, _ := Lookup("list-of-integer")
	v, err := ty.Convert("[1,2,3]")
	if err != nil {
		t.Fatal(err)
	}
	if !ty.Assert(v) {
		t.Fatal("expected assert to pass for all-numeric array")
	}
	v2, _ := ty.Convert(`[1,"x"]`)
	if ty.Assert(v2) {
		t.Fatal("expected assert to fail for mixed array")
	}
}

func TestListOfKeywordRejectsNonString(t *testing.T) {
	ty, _ := Lookup("list-of-keyword")
	if _, err := ty.Convert("[1,2]"); err == nil {
		t.Fatal("expected error for non-string element")
	}
}

func TestDefineOverwrites(t *testing.T) {
	Define("custom-priority-test", 5, nil, nil)
	ty, ok := Lookup("custom-priority-test")
	if !ok || ty.Priority != 5 {
		t.Fatalf("expected priority 5, got %+v", ty)
	}
	Define("custom-priority-test", 9, nil, nil)
	ty, _ = Lookup("custom-priority-test")
	if ty.Priority != 9 {
		t.Fatalf("redefinition did not overwrite: %+v", ty)
	}
}
