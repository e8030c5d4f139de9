// Package labels 串联规格解析、批量渲染、分页、预览缩放与打印规格，
// 并保存最近一次完整的渲染结果。
package labels

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ByLCY/barlabel/layout"
	canvasrenderer "github.com/ByLCY/barlabel/renderer/canvas"
)

// DefaultViewportPx 是未指定预览宽度时使用的容器宽度。
const DefaultViewportPx = 800.0

// ErrSuperseded 表示渲染期间有更新的请求开始，本次结果被丢弃。
var ErrSuperseded = errors.New("render superseded by a newer request")

// Options 配置 Service。
type Options struct {
	Render     canvasrenderer.Options
	Preview    layout.ScaleOptions
	ViewportPx float64
}

// Request 是一次渲染请求。Overrides 中的非零字段覆盖 Options.Render。
type Request struct {
	Entries    []layout.Entry
	Geometry   layout.GeometryConfig
	ViewportPx float64
	Meta       layout.DocumentMeta
	Overrides  layout.RenderOptions
	// Supersede 为 true 时，本次渲染取消仍在进行中的其他 Supersede 渲染，
	// 自身被更新的一代取代时返回 ErrSuperseded。用于同一预览的连续重渲染；
	// 互不相关的调用方保持 false，各自得到完整结果。
	Supersede bool
}

// RequestFromJob 将编译后的任务转换为渲染请求。
func RequestFromJob(job *layout.Job) Request {
	return Request{
		Entries:    job.Entries,
		Geometry:   job.Geometry,
		ViewportPx: job.Options.ViewportPx,
		Meta:       job.Meta,
		Overrides:  job.Options,
	}
}

// Service 负责一次次完整的渲染流程。可被多个协程并发调用。
type Service struct {
	opts Options
	base *canvasrenderer.Rasterizer
	pdf  *canvasrenderer.PDFWriter

	mu        sync.Mutex
	seq       uint64 // 每次 Generate 的序号，mu 保护
	published uint64 // 已发布结果的序号，mu 保护
	gen       atomic.Uint64
	cancel    context.CancelFunc
	latest    atomic.Pointer[layout.Result]

	now func() time.Time
}

// NewService 创建 Service；渲染参数非法（如未知的码制）时返回错误。
func NewService(opts Options) (*Service, error) {
	if opts.ViewportPx <= 0 {
		opts.ViewportPx = DefaultViewportPx
	}
	if opts.Render.Logger == nil {
		opts.Render.Logger = Logger()
	}
	base, err := canvasrenderer.NewRasterizer(opts.Render)
	if err != nil {
		return nil, err
	}
	return &Service{
		opts: opts,
		base: base,
		pdf:  canvasrenderer.NewPDFWriter(),
		now:  time.Now,
	}, nil
}

// Generate 执行 解析规格 → 批量渲染 → 分页 → 预览 → 打印规格。
// 完整生成的结果按请求顺序发布到 Latest，较早的请求不会覆盖较新的结果。
// req.Supersede 时开始新的渲染会取消仍在进行中的旧 Supersede 渲染。
// 单条编码失败记录在 Result.Failures 中，不会使整体失败。
func (s *Service) Generate(ctx context.Context, req Request) (*layout.Result, error) {
	g, err := layout.Resolve(req.Geometry)
	if err != nil {
		return nil, err
	}
	rz, err := s.rasterizerFor(req.Overrides)
	if err != nil {
		return nil, err
	}

	t := s.next(ctx, req.Supersede)
	defer t.cancel()

	started := s.now()
	report, err := rz.RenderBatch(t.ctx, req.Entries, g)
	if err != nil {
		if t.supersede && s.gen.Load() != t.gen && errors.Is(err, context.Canceled) {
			return nil, ErrSuperseded
		}
		return nil, fmt.Errorf("批量渲染失败: %w", err)
	}

	viewport := req.ViewportPx
	if viewport <= 0 {
		viewport = s.opts.ViewportPx
	}
	pages := layout.Paginate(report.Rendered, g)
	res := &layout.Result{
		BatchID:   newBatchID(started),
		Meta:      withMetaDefaults(req.Meta),
		Geometry:  g,
		PrintSpec: layout.EmitPrintSpec(g),
		Rendered:  nonNil(report.Rendered),
		Failures:  nonNil(report.Failures),
		Pages:     pages,
		Preview:   layout.BuildPreview(pages, g, viewport, s.opts.Preview),
	}

	if !s.publish(t, res) {
		return nil, ErrSuperseded
	}
	Logger().Info("labels published",
		"batch", res.BatchID,
		"rendered", len(res.Rendered),
		"failed", len(res.Failures),
		"pages", len(res.Pages),
		"elapsed", s.now().Sub(started))
	return res, nil
}

// Latest 返回最近一次发布的结果。
func (s *Service) Latest() (*layout.Result, bool) {
	res := s.latest.Load()
	return res, res != nil
}

// WritePDF 将结果写成 PDF。
func (s *Service) WritePDF(result *layout.Result, w io.Writer) error {
	data, err := s.pdf.Render(result)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("写出 PDF 失败: %w", err)
	}
	return nil
}

// ticket 标识一次 Generate。
type ticket struct {
	seq       uint64
	gen       uint64
	supersede bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// next 为一次渲染发号；supersede 时开启新一代并取消上一代。
func (s *Service) next(parent context.Context, supersede bool) ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := ticket{seq: s.seq, supersede: supersede}
	if !supersede {
		t.ctx, t.cancel = context.WithCancel(parent)
		return t
	}
	if s.cancel != nil {
		s.cancel()
	}
	t.gen = s.gen.Add(1)
	t.ctx, t.cancel = context.WithCancel(parent)
	s.cancel = t.cancel
	return t
}

// publish 发布 res：已被取代的 supersede 渲染返回 false；
// 否则仅当没有更晚的请求已发布时才替换 Latest。
func (s *Service) publish(t ticket, res *layout.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.supersede && s.gen.Load() != t.gen {
		return false
	}
	if t.seq > s.published {
		s.published = t.seq
		s.latest.Store(res)
	}
	return true
}

func (s *Service) rasterizerFor(o layout.RenderOptions) (*canvasrenderer.Rasterizer, error) {
	if o.Symbology == "" && o.ShowCaption == nil && o.Supersample == 0 {
		return s.base, nil
	}
	opts := s.base.Options()
	if o.Symbology != "" {
		opts.Symbology = o.Symbology
	}
	if o.ShowCaption != nil {
		opts.ShowCaption = *o.ShowCaption
	}
	if o.Supersample != 0 {
		opts.Supersample = o.Supersample
	}
	return canvasrenderer.NewRasterizer(opts)
}

func withMetaDefaults(meta layout.DocumentMeta) layout.DocumentMeta {
	if meta.Title == "" {
		meta.Title = "Barcode labels"
	}
	if meta.Creator == "" {
		meta.Creator = "barlabel"
	}
	return meta
}

func newBatchID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
