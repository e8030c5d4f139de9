package layout

// 该文件定义几何、渲染结果与分页结构，供渲染器、打印输出与调试 JSON 共用。

// Preset 是固定的标签规格（宽、高、列数），进程启动时确定且不可修改。
type Preset struct {
	ID          string  `json:"id"`
	WidthMM     float64 `json:"widthMm"`
	HeightMM    float64 `json:"heightMm"`
	Columns     int     `json:"columns"`
	Description string  `json:"description"`
}

// GeometryKind 区分预设与自定义尺寸。
type GeometryKind string

const (
	GeometryPreset GeometryKind = "preset"
	GeometryCustom GeometryKind = "custom"
)

// GeometryConfig 描述用户选择的标签规格。
// 自定义模式下 Width/Height/Columns 保留用户输入的原始文本，在 Resolve 时解析。
// 自定义宽高表示整页（整行标签纸）的尺寸，单个标签宽度为 Width / Columns。
type GeometryConfig struct {
	Kind     GeometryKind `json:"kind" yaml:"kind"`
	PresetID string       `json:"presetId,omitempty" yaml:"preset,omitempty"`
	Width    string       `json:"width,omitempty" yaml:"width,omitempty"`
	Height   string       `json:"height,omitempty" yaml:"height,omitempty"`
	Columns  string       `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// Geometry 是解析后的物理尺寸（单位：mm）。每次配置变化时重新计算，不原地修改。
type Geometry struct {
	PageWidthMM   float64 `json:"pageWidthMm"`
	PageHeightMM  float64 `json:"pageHeightMm"`
	LabelWidthMM  float64 `json:"labelWidthMm"`
	LabelHeightMM float64 `json:"labelHeightMm"`
	Columns       int     `json:"columns"`
}

// Entry 是一条待渲染的条码数据，顺序即打印顺序。
type Entry struct {
	Code    string `json:"code"`
	Caption string `json:"caption,omitempty"`
}

// RenderedBarcode 是一条 Entry 的渲染结果，创建后不可修改。
// Image 为 PNG 编码的位图。
type RenderedBarcode struct {
	Index    int    `json:"index"`
	Code     string `json:"code"`
	Caption  string `json:"caption,omitempty"`
	Image    []byte `json:"-"`
	WidthPx  int    `json:"widthPx"`
	HeightPx int    `json:"heightPx"`
}

// RenderFailure 记录单条数据的编码失败，不影响同批次其他数据。
type RenderFailure struct {
	Index  int    `json:"index"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Page 是一行（一张）标签，长度不超过 Geometry.Columns。
type Page struct {
	Index  int               `json:"index"`
	Labels []RenderedBarcode `json:"labels"`
}

// PrintSpec 描述打印面的物理纸张尺寸，页边距恒为 0。
type PrintSpec struct {
	PageWidthMM  float64 `json:"pageWidthMm"`
	PageHeightMM float64 `json:"pageHeightMm"`
	MarginMM     float64 `json:"marginMm"`
}

// Preview 描述预览面板中的缩放结果，只影响显示，不影响位图与打印尺寸。
type Preview struct {
	Scale       float64 `json:"scale"`
	ViewportPx  float64 `json:"viewportPx"`
	RowWidthPx  float64 `json:"rowWidthPx"`
	RowHeightPx float64 `json:"rowHeightPx"`
	Rows        []Page  `json:"rows"`
}

// Result 汇总一次完整渲染的所有输出。
type Result struct {
	BatchID   string            `json:"batchId"`
	Meta      DocumentMeta      `json:"meta"`
	Geometry  Geometry          `json:"geometry"`
	PrintSpec PrintSpec         `json:"printSpec"`
	Rendered  []RenderedBarcode `json:"rendered"`
	Failures  []RenderFailure   `json:"failures"`
	Pages     []Page            `json:"pages"`
	Preview   Preview           `json:"preview"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
