package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// debugSlot 是单张标签在页面上的落位（单位：mm），不含位图数据。
type debugSlot struct {
	Index   int     `json:"index"`
	Code    string  `json:"code"`
	Caption string  `json:"caption,omitempty"`
	XMM     float64 `json:"xMm"`
	WidthPx int     `json:"widthPx"`
}

type debugPage struct {
	Index int         `json:"index"`
	Slots []debugSlot `json:"slots"`
}

type debugDump struct {
	BatchID   string          `json:"batchId"`
	Geometry  Geometry        `json:"geometry"`
	PrintSpec PrintSpec       `json:"printSpec"`
	PrintCSS  string          `json:"printCss"`
	Scale     float64         `json:"scale"`
	Failures  []RenderFailure `json:"failures"`
	Pages     []debugPage     `json:"pages"`
}

func newDebugDump(res *Result) debugDump {
	d := debugDump{
		BatchID:   res.BatchID,
		Geometry:  res.Geometry,
		PrintSpec: res.PrintSpec,
		PrintCSS:  res.PrintSpec.CSS(),
		Scale:     res.Preview.Scale,
		Failures:  res.Failures,
		Pages:     make([]debugPage, 0, len(res.Pages)),
	}
	for _, p := range res.Pages {
		dp := debugPage{Index: p.Index, Slots: make([]debugSlot, 0, len(p.Labels))}
		for col, l := range p.Labels {
			dp.Slots = append(dp.Slots, debugSlot{
				Index:   l.Index,
				Code:    l.Code,
				Caption: l.Caption,
				XMM:     float64(col) * res.Geometry.LabelWidthMM,
				WidthPx: l.WidthPx,
			})
		}
		d.Pages = append(d.Pages, dp)
	}
	return d
}

// EncodeDebugJSON 将分页落位写为 JSON，便于核对每张标签在纸面上的位置。
func EncodeDebugJSON(res *Result, w io.Writer) error {
	if res == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newDebugDump(res)); err != nil {
		return fmt.Errorf("编码调试 JSON 失败: %w", err)
	}
	return nil
}

// WriteDebugJSON 将布局结果输出为 JSON 文件。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebugJSON(res, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
