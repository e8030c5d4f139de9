package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/barlabel/layout"
	"github.com/ByLCY/barlabel/renderer"
)

// PDFWriter 将分页后的标签位图写成 PDF，每页对应一行标签，纸张尺寸取自 PrintSpec。
type PDFWriter struct{}

var _ renderer.Renderer = (*PDFWriter)(nil)

// NewPDFWriter creates a PDF writer.
func NewPDFWriter() *PDFWriter { return &PDFWriter{} }

// Render renders the result into a PDF byte slice.
func (w *PDFWriter) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, renderer.ErrNoPages
	}
	spec := result.PrintSpec
	if spec.PageWidthMM <= 0 || spec.PageHeightMM <= 0 {
		spec = layout.EmitPrintSpec(result.Geometry)
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, spec.PageWidthMM, spec.PageHeightMM, nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(spec.PageWidthMM, spec.PageHeightMM)
		}
		c := canvas.New(spec.PageWidthMM, spec.PageHeightMM)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := drawPage(ctx, page, result.Geometry); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// drawPage 按列顺序将标签位图平铺在一行上，位图按标签物理尺寸缩放。
func drawPage(ctx *canvas.Context, page layout.Page, g layout.Geometry) error {
	for col, label := range page.Labels {
		img, _, err := image.Decode(bytes.NewReader(label.Image))
		if err != nil {
			return fmt.Errorf("解码第 %d 页第 %d 个标签 %q 失败: %w", page.Index+1, col+1, label.Code, err)
		}
		dpmm := float64(img.Bounds().Dx()) / g.LabelWidthMM
		if dpmm <= 0 {
			dpmm = 1
		}
		ctx.DrawImage(float64(col)*g.LabelWidthMM, 0, img, canvas.DPMM(dpmm))
	}
	return nil
}
