package canvasrenderer

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/barlabel/fonts"
	"github.com/ByLCY/barlabel/layout"
)

// fontCache 按字体名缓存已加载的 FontFamily，供多个工作协程共享。
type fontCache struct {
	mu       sync.Mutex
	families map[string]*canvas.FontFamily
}

func newFontCache() *fontCache {
	return &fontCache{families: map[string]*canvas.FontFamily{}}
}

func (fc *fontCache) family(name string) (*canvas.FontFamily, error) {
	if name == "" {
		name = fonts.Default
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if f, ok := fc.families[name]; ok {
		return f, nil
	}
	data, err := fonts.Load(name)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	fc.families[name] = family
	return family, nil
}

// face 创建字号为 sizeMM（毫米）的字体面；canvas 的字号单位是 pt，这里做一次 mm→pt。
func (fc *fontCache) face(name string, sizeMM float64, col color.Color) (*canvas.FontFace, error) {
	family, err := fc.family(name)
	if err != nil {
		return nil, err
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return family.Face(toPt(sizeMM), col, canvas.FontRegular, canvas.FontNormal), nil
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
