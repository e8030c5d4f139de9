package layout

import (
	"errors"
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

// TestLengthToConversions 覆盖 Length 在常见单位上的转换正确性（到 mm/pt）。
func TestLengthToConversions(t *testing.T) {
	if got := (Length{Value: 1, Unit: UnitIN}).ToMM(); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("1in 转 mm 期望 25.4，实际 %g", got)
	}
	if got := (Length{Value: 2.54, Unit: UnitCM}).ToMM(); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("2.54cm 转 mm 期望 25.4，实际 %g", got)
	}
	if got := (Length{Value: 12, Unit: UnitPT}).ToMM(); math.Abs(got-12*PtToMm) > 1e-9 {
		t.Fatalf("12pt 转 mm 期望 %g，实际 %g", 12*PtToMm, got)
	}
	// 无单位按 mm 理解
	if got := (Length{Value: 50}).ToMM(); got != 50 {
		t.Fatalf("无单位 50 期望 50mm，实际 %g", got)
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		mm   float64
		fail bool
	}{
		{in: "50", mm: 50},
		{in: " 50mm ", mm: 50},
		{in: "2in", mm: 50.8},
		{in: "2.5CM", mm: 25},
		{in: "５０ｍｍ", mm: 50},
		{in: "", fail: true},
		{in: "abc", fail: true},
		{in: "NaN", fail: true},
		{in: "Inf", fail: true},
	}
	for _, tc := range cases {
		l, err := ParseLength(tc.in)
		if tc.fail {
			if err == nil {
				t.Fatalf("ParseLength(%q) 应当失败，得到 %+v", tc.in, l)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseLength(%q): %v", tc.in, err)
		}
		if math.Abs(l.ToMM()-tc.mm) > 1e-9 {
			t.Fatalf("ParseLength(%q) = %gmm，期望 %gmm", tc.in, l.ToMM(), tc.mm)
		}
	}
}

func TestRasterSize(t *testing.T) {
	w, h := RasterSize(50, 25, 4)
	if w != 200 || h != 100 {
		t.Fatalf("50x25mm @4px/mm = %dx%d", w, h)
	}
	w, h = RasterSize(33.3333333333, 25.1, 4)
	if w != 134 || h != 101 {
		t.Fatalf("向上取整错误: %dx%d", w, h)
	}
	w, h = RasterSize(1e300, math.NaN(), 4)
	if w != math.MaxInt32 || h != 0 {
		t.Fatalf("超大或非法尺寸应被截断: %dx%d", w, h)
	}
	if px := MMToPx(25.4); px != CSSPxPerInch {
		t.Fatalf("25.4mm 应为 96px，实际 %g", px)
	}
}

func TestGeometryErrorUnwraps(t *testing.T) {
	_, err := Resolve(CustomConfig("", "50", "1"))
	var ge *GeometryError
	if !errors.As(err, &ge) || ge.Field != "width" {
		t.Fatalf("expected width GeometryError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("expected ErrInvalidDimension, got %v", err)
	}
}
