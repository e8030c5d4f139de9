package layout

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDebugJSON(t *testing.T) {
	g, err := Resolve(PresetConfig("2x1-2col"))
	if err != nil {
		t.Fatal(err)
	}
	rendered := renderedN(3)
	res := &Result{
		BatchID:   "batch",
		Geometry:  g,
		PrintSpec: EmitPrintSpec(g),
		Rendered:  rendered,
		Pages:     Paginate(rendered, g),
	}
	var buf bytes.Buffer
	if err := EncodeDebugJSON(res, &buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got debugDump
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var xs [][]float64
	for _, p := range got.Pages {
		var row []float64
		for _, s := range p.Slots {
			row = append(row, s.XMM)
		}
		xs = append(xs, row)
	}
	want := [][]float64{{0, g.LabelWidthMM}, {0}}
	if diff := cmp.Diff(want, xs); diff != "" {
		t.Fatalf("slot offsets mismatch (-want +got):\n%s", diff)
	}
	if got.PrintCSS != res.PrintSpec.CSS() {
		t.Fatalf("print css = %q", got.PrintCSS)
	}
	if bytes.Contains(buf.Bytes(), []byte("image")) {
		t.Fatalf("debug output should not carry bitmaps")
	}

	buf.Reset()
	if err := EncodeDebugJSON(nil, &buf); err != nil || buf.Len() != 0 {
		t.Fatalf("nil result should write nothing")
	}
}
