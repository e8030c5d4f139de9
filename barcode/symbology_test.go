package barcode

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"", "code128", "Code-128", "CODE 128"} {
		s, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q) error: %v", name, err)
		}
		if s.Name() != "code128" {
			t.Fatalf("Lookup(%q) = %s, want code128", name, s.Name())
		}
	}
	if _, err := Lookup("qr"); !errors.Is(err, ErrUnknownSymbology) {
		t.Fatalf("expected error for unsupported symbology")
	}
	if diff := cmp.Diff([]string{"code128", "code39", "ean13", "ean8"}, Names()); diff != "" {
		t.Fatalf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestCode128Encode(t *testing.T) {
	s, _ := Lookup("code128")
	m, err := s.Encode("ABC-123")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(m) == 0 || !m[0] || !m[len(m)-1] {
		t.Fatalf("symbol must start and end with a bar, got %d modules", len(m))
	}
	// start + 7 symbols + checksum + stop(13)
	if len(m)%11 != 2 {
		t.Fatalf("unexpected module count %d", len(m))
	}
}

func TestCode128RejectsNonASCII(t *testing.T) {
	s, _ := Lookup("code128")
	_, err := s.Encode("ÄBC")
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodingError, got %v", err)
	}
	if encErr.Code != "ÄBC" || encErr.Reason == "" {
		t.Fatalf("unexpected error payload: %+v", encErr)
	}
	if err := s.Validate(""); err == nil {
		t.Fatalf("empty payload must be rejected")
	}
}

func TestCode39Charset(t *testing.T) {
	s, _ := Lookup("code39")
	if _, err := s.Encode("ABC-1 $"); err != nil {
		t.Fatalf("valid code39 rejected: %v", err)
	}
	if err := s.Validate("abc"); err == nil {
		t.Fatalf("lower case must be rejected in code39")
	}
	if got := s.Text("AB1"); got != "*AB1*" {
		t.Fatalf("code39 text = %q", got)
	}
}

func TestEAN(t *testing.T) {
	s, _ := Lookup("ean13")
	m, err := s.Encode("590123412345")
	if err != nil {
		t.Fatalf("encode ean13: %v", err)
	}
	if len(m) != 95 {
		t.Fatalf("ean13 should have 95 modules, got %d", len(m))
	}
	if got := s.Text("590123412345"); got != "5901234123457" {
		t.Fatalf("ean13 text with check digit = %q", got)
	}
	if _, err := s.Encode("5901234123450"); err == nil {
		t.Fatalf("checksum mismatch must fail")
	}
	if err := s.Validate("59012A412345"); err == nil {
		t.Fatalf("non-digit must fail")
	}
	s8, _ := Lookup("ean8")
	if m, err := s8.Encode("9638507"); err != nil || len(m) != 67 {
		t.Fatalf("ean8 encode: modules=%d err=%v", len(m), err)
	}
}

func TestModulesRuns(t *testing.T) {
	m := Modules{true, true, false, true, false, false, true, true, true}
	want := [][2]int{{0, 2}, {3, 1}, {6, 3}}
	if diff := cmp.Diff(want, m.Runs()); diff != "" {
		t.Fatalf("runs mismatch (-want +got):\n%s", diff)
	}
}
