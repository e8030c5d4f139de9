package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ByLCY/barlabel/layout"
)

// Source 实现 layout.EntrySource：相对路径以 BaseDir 为根解析。
type Source struct {
	BaseDir string
	// Charset 是无 BOM 时 CSV 的编码，空表示 UTF-8。
	Charset string
}

var _ layout.EntrySource = Source{}

// LoadCSV 读取 path 指向的 CSV 文件。
func (s Source) LoadCSV(path string) ([]layout.Entry, error) {
	full := path
	if !filepath.IsAbs(full) && s.BaseDir != "" {
		full = filepath.Join(s.BaseDir, full)
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("读取 CSV %s 失败: %w", path, err)
	}
	defer f.Close()
	entries, err := ReadCSVEncoded(f, s.Charset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Range 见包级函数 Range。
func (Source) Range(prefix, start, end string) ([]layout.Entry, error) {
	return Range(prefix, start, end)
}
