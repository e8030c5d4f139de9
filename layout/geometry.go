package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// DefaultPresetID 是未指定规格时使用的预设。
const DefaultPresetID = "2x1-2col"

var presetCatalog = []Preset{
	{ID: "2x1-1col", WidthMM: 50, HeightMM: 25, Columns: 1},
	{ID: "2x1-2col", WidthMM: 50, HeightMM: 25, Columns: 2},
	{ID: "2x1-3col", WidthMM: 50, HeightMM: 25, Columns: 3},
	{ID: "2x1-4col", WidthMM: 50, HeightMM: 25, Columns: 4},
	{ID: "3x2-1col", WidthMM: 75, HeightMM: 50, Columns: 1},
	{ID: "3x2-2col", WidthMM: 75, HeightMM: 50, Columns: 2},
	{ID: "3x2-3col", WidthMM: 75, HeightMM: 50, Columns: 3},
	{ID: "4x3-1col", WidthMM: 100, HeightMM: 75, Columns: 1},
	{ID: "4x3-2col", WidthMM: 100, HeightMM: 75, Columns: 2},
}

var presetIndex = func() map[string]int {
	idx := make(map[string]int, len(presetCatalog))
	for i := range presetCatalog {
		p := &presetCatalog[i]
		p.Description = describePreset(*p)
		idx[p.ID] = i
	}
	return idx
}()

func describePreset(p Preset) string {
	unit := "columns"
	if p.Columns == 1 {
		unit = "column"
	}
	return fmt.Sprintf("%s inches (%gmm x %gmm) - %d %s", strings.SplitN(p.ID, "-", 2)[0], p.WidthMM, p.HeightMM, p.Columns, unit)
}

// Presets 按声明顺序返回预设目录的副本。
func Presets() []Preset {
	out := make([]Preset, len(presetCatalog))
	copy(out, presetCatalog)
	return out
}

// LookupPreset 按编号查找预设。
func LookupPreset(id string) (Preset, bool) {
	i, ok := presetIndex[strings.TrimSpace(id)]
	if !ok {
		return Preset{}, false
	}
	return presetCatalog[i], true
}

// PresetConfig 与 CustomConfig 是构造 GeometryConfig 的便捷函数。
func PresetConfig(id string) GeometryConfig {
	return GeometryConfig{Kind: GeometryPreset, PresetID: id}
}

func CustomConfig(width, height, columns string) GeometryConfig {
	return GeometryConfig{Kind: GeometryCustom, Width: width, Height: height, Columns: columns}
}

// Resolve 将预设或自定义输入转换为物理尺寸。纯函数，无 I/O。
//
// 自定义模式按“整页”理解：Width/Height 为整行标签纸尺寸，单个标签宽度为
// Width / Columns，高度与页高相同。
func Resolve(cfg GeometryConfig) (Geometry, error) {
	switch cfg.Kind {
	case GeometryCustom:
		return resolveCustom(cfg)
	case GeometryPreset, "":
		id := cfg.PresetID
		if cfg.Kind == "" && id == "" {
			id = DefaultPresetID
		}
		p, ok := LookupPreset(id)
		if !ok {
			return Geometry{}, &GeometryError{Field: "preset", Value: id, Err: ErrUnknownPreset}
		}
		return Geometry{
			PageWidthMM:   p.WidthMM * float64(p.Columns),
			PageHeightMM:  p.HeightMM,
			LabelWidthMM:  p.WidthMM,
			LabelHeightMM: p.HeightMM,
			Columns:       p.Columns,
		}, nil
	default:
		return Geometry{}, fmt.Errorf("layout: 未知的规格类型 %q", cfg.Kind)
	}
}

func resolveCustom(cfg GeometryConfig) (Geometry, error) {
	pageW, err := parseDimension("width", cfg.Width)
	if err != nil {
		return Geometry{}, err
	}
	pageH, err := parseDimension("height", cfg.Height)
	if err != nil {
		return Geometry{}, err
	}
	cols := parseColumns(cfg.Columns)
	return Geometry{
		PageWidthMM:   pageW,
		PageHeightMM:  pageH,
		LabelWidthMM:  pageW / float64(cols),
		LabelHeightMM: pageH,
		Columns:       cols,
	}, nil
}

func parseDimension(field, raw string) (float64, error) {
	l, err := ParseLength(raw)
	if err != nil {
		return 0, &GeometryError{Field: field, Value: raw, Err: fmt.Errorf("%w: %v", ErrInvalidDimension, err)}
	}
	mm := l.ToMM()
	if math.IsInf(mm, 0) {
		return 0, &GeometryError{Field: field, Value: raw, Err: fmt.Errorf("%w: 数值过大", ErrInvalidDimension)}
	}
	if mm <= 0 {
		return 0, &GeometryError{Field: field, Value: raw, Err: fmt.Errorf("%w: 必须大于 0", ErrInvalidDimension)}
	}
	return mm, nil
}

// parseColumns 解析列数；缺省、无法解析或非正数时回退为 1，从不报错。
func parseColumns(raw string) int {
	v := strings.TrimSpace(width.Fold.String(raw))
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Validate 检查几何尺寸是否满足渲染前提（各尺寸为正、列数≥1）。
func (g Geometry) Validate() error {
	if g.Columns < 1 {
		return fmt.Errorf("layout: 列数必须 ≥ 1，实际 %d", g.Columns)
	}
	if !(g.LabelWidthMM > 0) || !(g.LabelHeightMM > 0) || !(g.PageWidthMM > 0) || !(g.PageHeightMM > 0) {
		return fmt.Errorf("layout: 标签尺寸必须为正数: %+v", g)
	}
	return nil
}
