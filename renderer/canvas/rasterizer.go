package canvasrenderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/barlabel/barcode"
	"github.com/ByLCY/barlabel/layout"
	"github.com/ByLCY/barlabel/renderer"
)

const (
	DefaultSupersample    = 4
	DefaultBarHeightRatio = 0.7
	DefaultMinCaptionPt   = 6.0

	// 单张位图的像素上限，防止异常的自定义尺寸耗尽内存。
	maxRasterPixels = 64 << 20
	lineSpacing     = 1.2
)

var _ renderer.Rasterizer = (*Rasterizer)(nil)

// Options configures the rasterizer.
type Options struct {
	Supersample    int     // 每毫米像素数（超采样系数），≥ 2
	BarHeightRatio float64 // 条高占标签高度的比例
	MinCaptionPt   float64 // 文本的最小字号（pt）
	Symbology      string
	ShowCaption    bool
	Font           string
	Workers        int // 批量渲染的并发数，≤ 1 时串行
	Logger         *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Supersample < 2 {
		o.Supersample = DefaultSupersample
	}
	if !(o.BarHeightRatio > 0 && o.BarHeightRatio <= 1) {
		o.BarHeightRatio = DefaultBarHeightRatio
	}
	if !(o.MinCaptionPt > 0) {
		o.MinCaptionPt = DefaultMinCaptionPt
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Rasterizer draws barcodes via github.com/tdewolff/canvas and encodes them as PNG.
type Rasterizer struct {
	opts  Options
	sym   barcode.Symbology
	fonts *fontCache
	pool  SurfacePool
}

// NewRasterizer creates a rasterizer; unknown symbology names are an error.
func NewRasterizer(opts Options) (*Rasterizer, error) {
	opts = opts.withDefaults()
	sym, err := barcode.Lookup(opts.Symbology)
	if err != nil {
		return nil, err
	}
	return &Rasterizer{opts: opts, sym: sym, fonts: newFontCache()}, nil
}

// Options 返回补齐默认值后的配置。
func (r *Rasterizer) Options() Options { return r.opts }

// Render 渲染单条数据。编码失败时返回 *barcode.EncodingError。
func (r *Rasterizer) Render(entry layout.Entry, g layout.Geometry) (layout.RenderedBarcode, error) {
	if err := r.checkRaster(g); err != nil {
		return layout.RenderedBarcode{}, err
	}
	s := r.pool.Acquire()
	defer r.pool.Release(s)
	return r.renderOn(s, entry, g)
}

// RenderBatch 逐条渲染 entries。空输入返回空报告。
// 并发时每个工作协程持有独立的 Surface，结果按输入顺序一次性返回。
func (r *Rasterizer) RenderBatch(ctx context.Context, entries []layout.Entry, g layout.Geometry) (renderer.Report, error) {
	var report renderer.Report
	if len(entries) == 0 {
		return report, nil
	}
	if err := r.checkRaster(g); err != nil {
		return report, err
	}

	type slot struct {
		out layout.RenderedBarcode
		err error
	}
	slots := make([]slot, len(entries))

	if r.opts.Workers <= 1 {
		s := r.pool.Acquire()
		for i, e := range entries {
			if err := ctx.Err(); err != nil {
				r.pool.Release(s)
				return renderer.Report{}, err
			}
			out, err := r.renderOn(s, e, g)
			slots[i] = slot{out: out, err: err}
		}
		r.pool.Release(s)
	} else {
		jobs := make(chan int)
		eg, egCtx := errgroup.WithContext(ctx)
		for w := 0; w < min(r.opts.Workers, len(entries)); w++ {
			eg.Go(func() error {
				s := r.pool.Acquire()
				defer r.pool.Release(s)
				for i := range jobs {
					out, err := r.renderOn(s, entries[i], g)
					slots[i] = slot{out: out, err: err}
				}
				return nil
			})
		}
		eg.Go(func() error {
			defer close(jobs)
			for i := range entries {
				select {
				case jobs <- i:
				case <-egCtx.Done():
					return egCtx.Err()
				}
			}
			return nil
		})
		if err := eg.Wait(); err != nil {
			return renderer.Report{}, err
		}
	}

	for i, sl := range slots {
		if sl.err == nil {
			sl.out.Index = i
			report.Rendered = append(report.Rendered, sl.out)
			continue
		}
		var encErr *barcode.EncodingError
		if !errors.As(sl.err, &encErr) {
			return renderer.Report{}, fmt.Errorf("渲染第 %d 条 %q 失败: %w", i+1, entries[i].Code, sl.err)
		}
		r.opts.Logger.Warn("skip entry", "index", i, "code", entries[i].Code, "reason", encErr.Reason)
		report.Failures = append(report.Failures, layout.RenderFailure{Index: i, Code: entries[i].Code, Reason: encErr.Reason})
	}
	r.opts.Logger.Debug("batch rendered", "entries", len(entries), "rendered", len(report.Rendered), "failed", len(report.Failures))
	return report, nil
}

// checkRaster 校验几何尺寸，并在换算为整数像素之前按浮点数检查像素上限。
func (r *Rasterizer) checkRaster(g layout.Geometry) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s := float64(r.opts.Supersample)
	w, h := math.Ceil(g.LabelWidthMM*s), math.Ceil(g.LabelHeightMM*s)
	if !(w*h <= maxRasterPixels) {
		return fmt.Errorf("%w: %.0fx%.0f 像素（上限 %d）", renderer.ErrRasterTooLarge, w, h, maxRasterPixels)
	}
	return nil
}

// labelMetrics 是单个标签内部的排版结果（单位：mm）。
type labelMetrics struct {
	quietX     float64
	barTop     float64
	barHeight  float64
	fontSize   float64
	textTop    float64
	captionTop float64
}

func (r *Rasterizer) measure(g layout.Geometry, withCaption bool) labelMetrics {
	w, h := g.LabelWidthMM, g.LabelHeightMM
	padY := math.Max(h*0.04, 0.5)
	quietX := math.Min(math.Max(w*0.05, 1.0), w/4)
	fontSize := math.Max(h*0.1, r.opts.MinCaptionPt*layout.PtToMm)

	lines := 1.0
	if withCaption {
		lines = 2
	}
	textBlock := lines * fontSize * lineSpacing
	barHeight := r.opts.BarHeightRatio * h
	if over := 2*padY + barHeight + textBlock - h; over > 0 {
		barHeight = math.Max(barHeight-over, h*0.2)
	}
	m := labelMetrics{
		quietX:    quietX,
		barTop:    padY,
		barHeight: barHeight,
		fontSize:  fontSize,
	}
	m.textTop = m.barTop + m.barHeight + fontSize*0.1
	m.captionTop = m.textTop + fontSize*lineSpacing
	return m
}

// renderOn 在持有的 Surface 上绘制一条数据并编码为 PNG。
func (r *Rasterizer) renderOn(s *Surface, entry layout.Entry, g layout.Geometry) (layout.RenderedBarcode, error) {
	modules, err := r.sym.Encode(entry.Code)
	if err != nil {
		return layout.RenderedBarcode{}, err
	}
	if err := r.checkRaster(g); err != nil {
		return layout.RenderedBarcode{}, err
	}
	pxW, pxH := layout.RasterSize(g.LabelWidthMM, g.LabelHeightMM, r.opts.Supersample)

	withCaption := r.opts.ShowCaption && entry.Caption != ""
	m := r.measure(g, withCaption)

	c := canvas.New(g.LabelWidthMM, g.LabelHeightMM)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，与布局一致
	ctx.SetStrokeColor(canvas.Transparent)

	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(g.LabelWidthMM, g.LabelHeightMM))

	moduleW := (g.LabelWidthMM - 2*m.quietX) / float64(len(modules))
	ctx.SetFillColor(canvas.Black)
	for _, run := range modules.Runs() {
		x := m.quietX + float64(run[0])*moduleW
		ctx.DrawPath(x, m.barTop, canvas.Rectangle(float64(run[1])*moduleW, m.barHeight))
	}

	if err := r.drawLine(ctx, r.sym.Text(entry.Code), g.LabelWidthMM, m.textTop, m.fontSize); err != nil {
		return layout.RenderedBarcode{}, err
	}
	if withCaption {
		if err := r.drawLine(ctx, entry.Caption, g.LabelWidthMM, m.captionTop, m.fontSize); err != nil {
			return layout.RenderedBarcode{}, err
		}
	}

	img := s.Reset(pxW, pxH)
	c.RenderTo(rasterizer.FromImage(img, canvas.DPMM(float64(r.opts.Supersample)), canvas.DefaultColorSpace))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return layout.RenderedBarcode{}, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return layout.RenderedBarcode{
		Code:     entry.Code,
		Caption:  entry.Caption,
		Image:    buf.Bytes(),
		WidthPx:  pxW,
		HeightPx: pxH,
	}, nil
}

// drawLine 在 top（mm）处水平居中绘制一行文本；过宽时缩小字号，但不低于最小字号。
func (r *Rasterizer) drawLine(ctx *canvas.Context, text string, labelWidth, top, size float64) error {
	face, err := r.fonts.face(r.opts.Font, size, canvas.Black)
	if err != nil {
		return err
	}
	avail := labelWidth * 0.95
	if tw := face.TextWidth(text); tw > avail && tw > 0 {
		shrunk := math.Max(size*avail/tw, r.opts.MinCaptionPt*layout.PtToMm)
		if face, err = r.fonts.face(r.opts.Font, shrunk, canvas.Black); err != nil {
			return err
		}
	}
	baseline := top + face.Metrics().Ascent
	ctx.DrawText(labelWidth/2, baseline, canvas.NewTextLine(face, text, canvas.Center))
	return nil
}
