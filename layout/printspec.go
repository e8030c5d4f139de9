package layout

import (
	"fmt"
	"strconv"
)

// EmitPrintSpec 直接透传几何中的页宽/页高，页边距固定为 0。
// 任何换算都会造成标签裁切或错位，因此这里不做取整。
func EmitPrintSpec(g Geometry) PrintSpec {
	return PrintSpec{
		PageWidthMM:  g.PageWidthMM,
		PageHeightMM: g.PageHeightMM,
	}
}

// CSS 输出浏览器打印流程使用的 @page 规则。
func (p PrintSpec) CSS() string {
	return fmt.Sprintf("@page {\n  size: %smm %smm;\n  margin: 0;\n}\n", formatMM(p.PageWidthMM), formatMM(p.PageHeightMM))
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
