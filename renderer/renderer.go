package renderer

import (
	"context"
	"errors"

	"github.com/ByLCY/barlabel/layout"
)

// ErrNoPages 表示结果中没有可输出的页面（例如空批次）。
var ErrNoPages = errors.New("缺少可渲染的页面")

// ErrRasterTooLarge 表示标签尺寸在当前超采样系数下超出位图像素上限。
var ErrRasterTooLarge = errors.New("位图尺寸超出上限")

// Rasterizer 将单条数据渲染为条码位图。
// 相同的 (entry, geometry) 必须得到逐字节相同的图像。
type Rasterizer interface {
	Render(entry layout.Entry, g layout.Geometry) (layout.RenderedBarcode, error)
	// RenderBatch 逐条渲染；单条编码失败记入报告而不中断批次，结果顺序与输入一致。
	RenderBatch(ctx context.Context, entries []layout.Entry, g layout.Geometry) (Report, error)
}

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Report 是一次批量渲染的逐条结果。
type Report struct {
	Rendered []layout.RenderedBarcode
	Failures []layout.RenderFailure
}
