package layout

// CompileOptions 配置任务编译阶段所需的依赖，例如外部数据来源。
type CompileOptions struct {
	Entries EntrySource
}

// RenderOptions 是任务文件 options 段可覆盖的渲染参数，零值表示沿用配置。
type RenderOptions struct {
	Symbology   string  `json:"symbology,omitempty"`
	ShowCaption *bool   `json:"showCaption,omitempty"`
	Supersample int     `json:"supersample,omitempty"`
	ViewportPx  float64 `json:"viewportPx,omitempty"`
}

// EntrySource 负责读取外部条目（CSV 文件、号段），使 layout 本身不做 I/O。
type EntrySource interface {
	LoadCSV(path string) ([]Entry, error)
	Range(prefix, start, end string) ([]Entry, error)
}
