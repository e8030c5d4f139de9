package canvasrenderer

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// Surface 是一块可复用的位图绘制区域。
// 在 Acquire 与 Release 之间由调用方独占；每条数据绘制前必须 Reset。
type Surface struct {
	img *image.RGBA
}

// Reset 将绘制区域调整为 w×h 并完全清空，避免上一条数据的残影。
func (s *Surface) Reset(w, h int) *image.RGBA {
	if s.img == nil || s.img.Bounds().Dx() != w || s.img.Bounds().Dy() != h {
		s.img = image.NewRGBA(image.Rect(0, 0, w, h))
		return s.img
	}
	draw.Draw(s.img, s.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	return s.img
}

// Image 返回当前的后备图像；仅在持有期间有效。
func (s *Surface) Image() *image.RGBA { return s.img }

// SurfacePool 管理空闲的 Surface。并发渲染时每个工作协程各自持有一块。
type SurfacePool struct {
	mu   sync.Mutex
	free []*Surface
	made int
}

// Acquire 取出一块空闲 Surface，没有时新建。
func (p *SurfacePool) Acquire() *Surface {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		s := p.free[n-1]
		p.free = p.free[:n-1]
		return s
	}
	p.made++
	return &Surface{}
}

// Release 归还 Surface。归还后调用方不得再使用它。
func (p *SurfacePool) Release(s *Surface) {
	if s == nil {
		return
	}
	p.mu.Lock()
	p.free = append(p.free, s)
	p.mu.Unlock()
}

// Allocated 返回累计创建的 Surface 数量。
func (p *SurfacePool) Allocated() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.made
}
