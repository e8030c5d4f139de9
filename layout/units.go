package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// This file defines unit-safe types and helpers for physical lengths.

// Unit represents the original unit of a length value as typed by the user.
type Unit int

const (
	UnitNone Unit = iota // no suffix, interpreted as millimeters
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt, mm and CSS px.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm

	// CSSPxPerInch 是浏览器/预览面板使用的参考像素密度。
	CSSPxPerInch = 96.0
	MmPerInch    = 25.4
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// To converts this length to target unit. Supported targets: UnitMM, UnitPT.
// Unit-less lengths are millimeters.
func (l Length) To(target Unit) float64 {
	var mm float64
	switch l.Unit {
	case UnitCM:
		mm = l.Value * 10
	case UnitIN:
		mm = l.Value * MmPerInch
	case UnitPT:
		if target == UnitPT {
			return l.Value
		}
		mm = l.Value * PtToMm
	default:
		mm = l.Value
	}
	if target == UnitPT {
		return mm * MmToPt
	}
	return mm
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

// ParseLength parses a user supplied length such as "50", "50mm", "2in" or
// "５０ｍｍ" (full-width forms are folded first). Unknown text is an error;
// no default is substituted.
func ParseLength(value string) (Length, error) {
	v := strings.TrimSpace(width.Fold.String(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	lower := strings.ToLower(v)
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Length{}, fmt.Errorf("长度 %q 不是有限数值", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// MMToPx 将毫米换算为 CSS 像素（96 px/in）。
func MMToPx(mm float64) float64 { return mm / MmPerInch * CSSPxPerInch }

// PxToMM 将 CSS 像素换算为毫米。
func PxToMM(px float64) float64 { return px / CSSPxPerInch * MmPerInch }

// RasterSize 返回 mm 尺寸在每毫米 pxPerMM 像素下的整像素尺寸（向上取整）。
// 结果截断在 [0, math.MaxInt32]，调用方需自行检查像素上限。
func RasterSize(widthMM, heightMM float64, pxPerMM int) (int, int) {
	s := float64(pxPerMM)
	return toPx(widthMM * s), toPx(heightMM * s)
}

func toPx(v float64) int {
	v = math.Ceil(v - 1e-9)
	switch {
	case !(v > 0):
		return 0
	case v > math.MaxInt32:
		return math.MaxInt32
	}
	return int(v)
}
