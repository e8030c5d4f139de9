package ingest

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	"github.com/ByLCY/barlabel/layout"
)

func TestReadCSV(t *testing.T) {
	in := "A-1,Bolts\n  ,skipped\nA-2\n\"A-3\",\"Nuts, M4\",extra\n"
	got, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []layout.Entry{
		{Code: "A-1", Caption: "Bolts"},
		{Code: "A-2"},
		{Code: "A-3", Caption: "Nuts, M4"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVStripsBOM(t *testing.T) {
	got, err := ReadCSV(strings.NewReader("\ufeffX-1,first\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got[0].Code != "X-1" {
		t.Fatalf("BOM leaked into code: %q", got[0].Code)
	}
}

func TestReadCSVUTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	raw, err := enc.String("棚-1,ボルト\n棚-2,ナット\n")
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadCSV(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0].Code != "棚-1" || got[1].Caption != "ナット" {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestReadCSVShiftJIS(t *testing.T) {
	raw, err := japanese.ShiftJIS.NewEncoder().String("B-1,備品\n")
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadCSVEncoded(bytes.NewReader([]byte(raw)), "cp932")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got[0].Caption != "備品" {
		t.Fatalf("caption = %q", got[0].Caption)
	}
	if _, err := ReadCSVEncoded(strings.NewReader("x"), "ebcdic"); err == nil {
		t.Fatalf("unknown charset should fail")
	}
}

func TestReadCSVNoEntries(t *testing.T) {
	for _, in := range []string{"", "\n\n", " ,caption only\n"} {
		if _, err := ReadCSV(strings.NewReader(in)); !errors.Is(err, ErrNoEntries) {
			t.Fatalf("%q: expected ErrNoEntries, got %v", in, err)
		}
	}
}

func TestRange(t *testing.T) {
	got, err := Range("BIN-", "8", "10")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	var codes []string
	for _, e := range got {
		codes = append(codes, e.Code)
	}
	if diff := cmp.Diff([]string{"BIN-08", "BIN-09", "BIN-10"}, codes); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}

	single, err := Range("", "0001", "0001")
	if err != nil || len(single) != 1 || single[0].Code != "0001" {
		t.Fatalf("single range = %+v, %v", single, err)
	}
}

func TestRangeInvalid(t *testing.T) {
	for _, tc := range [][2]string{{"5", "1"}, {"a", "3"}, {"1", ""}, {"0", "999999"}} {
		if _, err := Range("P", tc[0], tc[1]); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("Range(%q, %q): expected ErrInvalidRange, got %v", tc[0], tc[1], err)
		}
	}
}

func TestRangeIntegerBounds(t *testing.T) {
	maxS, minS := strconv.Itoa(math.MaxInt), strconv.Itoa(math.MinInt)

	top, err := Range("", strconv.Itoa(math.MaxInt-1), maxS)
	if err != nil || len(top) != 2 || top[1].Code != maxS {
		t.Fatalf("range ending at MaxInt = %+v, %v", top, err)
	}
	bottom, err := Range("N", minS, strconv.Itoa(math.MinInt+1))
	if err != nil || len(bottom) != 2 || bottom[0].Code != "N"+minS {
		t.Fatalf("range starting at MinInt = %+v, %v", bottom, err)
	}

	for _, tc := range [][2]string{{minS, maxS}, {minS, "0"}, {"0", maxS}, {"-1", maxS}} {
		if _, err := Range("", tc[0], tc[1]); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("Range(%s, %s): expected ErrInvalidRange, got %v", tc[0], tc[1], err)
		}
	}
}

func TestSourceLoadCSV(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "items.csv"), []byte("C-1,one\nC-2,two\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := Source{BaseDir: dir}
	got, err := src.LoadCSV("items.csv")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[1].Code != "C-2" {
		t.Fatalf("unexpected entries %+v", got)
	}
	if _, err := src.LoadCSV("missing.csv"); err == nil {
		t.Fatalf("missing file should fail")
	}
}
