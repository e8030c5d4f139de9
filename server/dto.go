package server

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ByLCY/barlabel/ingest"
	"github.com/ByLCY/barlabel/labels"
	"github.com/ByLCY/barlabel/layout"
)

// RenderRequest 是 POST /labels/render 与 /labels/pdf 共用的请求体。
// Entries、Range、CSV 按此顺序拼接。Supersede 为 true 时取消同样带 supersede
// 的旧渲染，供预览面板连续重渲染使用。
type RenderRequest struct {
	Entries    []layout.Entry        `json:"entries"`
	Range      *RangeDTO             `json:"range,omitempty"`
	CSV        string                `json:"csv,omitempty"`
	Geometry   layout.GeometryConfig `json:"geometry"`
	ViewportPx float64               `json:"viewportPx,omitempty"`
	Meta       layout.DocumentMeta   `json:"meta"`
	Options    layout.RenderOptions  `json:"options"`
	Supersede  bool                  `json:"supersede,omitempty"`
}

// RangeDTO 描述号段：前缀与起止数字（文本，保留补零宽度）。
type RangeDTO struct {
	Prefix string `json:"prefix"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

func (r RenderRequest) toServiceRequest() (labels.Request, error) {
	entries := append([]layout.Entry(nil), r.Entries...)
	if r.Range != nil {
		more, err := ingest.Range(r.Range.Prefix, r.Range.Start, r.Range.End)
		if err != nil {
			return labels.Request{}, err
		}
		entries = append(entries, more...)
	}
	if strings.TrimSpace(r.CSV) != "" {
		more, err := ingest.ReadCSV(strings.NewReader(r.CSV))
		if err != nil {
			return labels.Request{}, err
		}
		entries = append(entries, more...)
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Code) == "" {
			return labels.Request{}, NewInvalidArgumentError(fmt.Sprintf("entries[%d].code 为空", i))
		}
	}
	return labels.Request{
		Entries:    entries,
		Geometry:   r.Geometry,
		ViewportPx: r.ViewportPx,
		Meta:       r.Meta,
		Overrides:  r.Options,
		Supersede:  r.Supersede,
	}, nil
}

// LabelDTO 是单张标签，位图以 PNG data URL 返回。
type LabelDTO struct {
	Index    int    `json:"index"`
	Code     string `json:"code"`
	Caption  string `json:"caption,omitempty"`
	WidthPx  int    `json:"widthPx"`
	HeightPx int    `json:"heightPx"`
	DataURL  string `json:"dataUrl"`
}

// PageDTO 是一行标签；Labels 是 RenderResponse.Labels 中的下标。
type PageDTO struct {
	Index  int   `json:"index"`
	Labels []int `json:"labels"`
}

// PreviewDTO 是预览缩放信息。
type PreviewDTO struct {
	Scale       float64 `json:"scale"`
	ViewportPx  float64 `json:"viewportPx"`
	RowWidthPx  float64 `json:"rowWidthPx"`
	RowHeightPx float64 `json:"rowHeightPx"`
}

// RenderResponse 是 /labels/render 与 /labels/latest 的响应体。
type RenderResponse struct {
	BatchID   string                 `json:"batchId"`
	Geometry  layout.Geometry        `json:"geometry"`
	PrintSpec layout.PrintSpec       `json:"printSpec"`
	PrintCSS  string                 `json:"printCss"`
	Labels    []LabelDTO             `json:"labels"`
	Pages     []PageDTO              `json:"pages"`
	Failures  []layout.RenderFailure `json:"failures"`
	Preview   PreviewDTO             `json:"preview"`
}

func newRenderResponse(res *layout.Result) RenderResponse {
	out := RenderResponse{
		BatchID:   res.BatchID,
		Geometry:  res.Geometry,
		PrintSpec: res.PrintSpec,
		PrintCSS:  res.PrintSpec.CSS(),
		Labels:    make([]LabelDTO, 0, len(res.Rendered)),
		Pages:     make([]PageDTO, 0, len(res.Pages)),
		Failures:  res.Failures,
		Preview: PreviewDTO{
			Scale:       res.Preview.Scale,
			ViewportPx:  res.Preview.ViewportPx,
			RowWidthPx:  res.Preview.RowWidthPx,
			RowHeightPx: res.Preview.RowHeightPx,
		},
	}
	for _, r := range res.Rendered {
		out.Labels = append(out.Labels, LabelDTO{
			Index:    r.Index,
			Code:     r.Code,
			Caption:  r.Caption,
			WidthPx:  r.WidthPx,
			HeightPx: r.HeightPx,
			DataURL:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(r.Image),
		})
	}
	pos := 0
	for _, p := range res.Pages {
		idx := make([]int, len(p.Labels))
		for i := range p.Labels {
			idx[i] = pos
			pos++
		}
		out.Pages = append(out.Pages, PageDTO{Index: p.Index, Labels: idx})
	}
	if out.Failures == nil {
		out.Failures = []layout.RenderFailure{}
	}
	return out
}

// PresetsResponse 是 /presets 的响应体。
type PresetsResponse struct {
	Default string          `json:"default"`
	Presets []layout.Preset `json:"presets"`
}
