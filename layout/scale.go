package layout

import "math"

const (
	// DefaultPreviewPaddingPx 是预览容器两侧预留的像素。
	DefaultPreviewPaddingPx = 20.0
	// MinScale 保证缩放系数始终大于 0。
	MinScale = 0.01
)

// ScaleOptions 配置预览缩放。
type ScaleOptions struct {
	PaddingPx float64
}

func (o ScaleOptions) padding() float64 {
	if o.PaddingPx < 0 || math.IsNaN(o.PaddingPx) {
		return 0
	}
	return o.PaddingPx
}

// Scale 使用默认留白计算预览缩放系数。
func Scale(g Geometry, viewportWidthPx float64) float64 {
	return ScaleWith(g, viewportWidthPx, ScaleOptions{PaddingPx: DefaultPreviewPaddingPx})
}

// ScaleWith 计算一行标签放入宽度为 viewportWidthPx 的容器时的缩放系数。
// 结果位于 (0, 1]：只缩小不放大，容器过窄时取 MinScale。
func ScaleWith(g Geometry, viewportWidthPx float64, opts ScaleOptions) float64 {
	rowWidthPx := MMToPx(g.LabelWidthMM * float64(max(g.Columns, 1)))
	if !(rowWidthPx > 0) || math.IsInf(rowWidthPx, 0) {
		return 1
	}
	if viewportWidthPx >= rowWidthPx+opts.padding() {
		return 1
	}
	available := viewportWidthPx - opts.padding()
	if math.IsNaN(available) {
		return MinScale
	}
	factor := available / rowWidthPx
	if factor > 1 {
		return 1
	}
	if factor < MinScale {
		return MinScale
	}
	return factor
}

// BuildPreview 生成预览面板所需的行与缩放后的像素尺寸。
// 仅影响显示变换；打印始终使用真实物理尺寸。
func BuildPreview(pages []Page, g Geometry, viewportWidthPx float64, opts ScaleOptions) Preview {
	s := ScaleWith(g, viewportWidthPx, opts)
	rows := make([]Page, len(pages))
	copy(rows, pages)
	return Preview{
		Scale:       s,
		ViewportPx:  viewportWidthPx,
		RowWidthPx:  MMToPx(g.PageWidthMM) * s,
		RowHeightPx: MMToPx(g.PageHeightMM) * s,
		Rows:        rows,
	}
}
