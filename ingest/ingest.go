// Package ingest 从 CSV 文件与号段生成待渲染的条目。
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ByLCY/barlabel/layout"
)

var (
	// ErrNoEntries 表示 CSV 中没有任何有效行。
	ErrNoEntries = errors.New("no valid entries")
	// ErrInvalidRange 表示号段的起止不是整数或起点大于终点。
	ErrInvalidRange = errors.New("invalid range")
)

// MaxRangeSize 限制单个号段展开的条目数。
const MaxRangeSize = 100000

// ReadCSV 读取 UTF-8 CSV（可带 BOM；带 BOM 的 UTF-16 也可识别）。
// 第一列为条码内容，第二列（可选）为说明；条码为空的行被跳过。
func ReadCSV(r io.Reader) ([]layout.Entry, error) {
	return ReadCSVEncoded(r, "")
}

// ReadCSVEncoded 与 ReadCSV 相同，但允许指定无 BOM 时的回退编码：
// 空或 "utf-8" 为 UTF-8，"utf-16le"/"utf-16be"，"shift_jis"/"cp932"。
func ReadCSVEncoded(r io.Reader, charset string) ([]layout.Entry, error) {
	fallback, err := lookupEncoding(charset)
	if err != nil {
		return nil, err
	}
	decoded := transform.NewReader(r, unicode.BOMOverride(fallback.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var out []layout.Entry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取 CSV 失败: %w", err)
		}
		if len(rec) == 0 {
			continue
		}
		code := strings.TrimSpace(rec[0])
		if code == "" {
			continue
		}
		e := layout.Entry{Code: code}
		if len(rec) > 1 {
			e.Caption = strings.TrimSpace(rec[1])
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, ErrNoEntries
	}
	return out, nil
}

func lookupEncoding(charset string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "utf-16le", "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf-16be", "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "shift_jis", "shift-jis", "sjis", "cp932":
		return japanese.ShiftJIS, nil
	}
	return nil, fmt.Errorf("不支持的编码 %q", charset)
}

// Range 生成 prefix+start … prefix+end，数字按 end 的原始文本长度补零。
// 例如 Range("BIN-", "8", "10") 得到 BIN-08、BIN-09、BIN-10。
func Range(prefix, start, end string) ([]layout.Entry, error) {
	from, err := strconv.Atoi(strings.TrimSpace(start))
	if err != nil {
		return nil, fmt.Errorf("%w: 起点 %q 不是整数", ErrInvalidRange, start)
	}
	to, err := strconv.Atoi(strings.TrimSpace(end))
	if err != nil {
		return nil, fmt.Errorf("%w: 终点 %q 不是整数", ErrInvalidRange, end)
	}
	if from > to {
		return nil, fmt.Errorf("%w: 起点 %d 大于终点 %d", ErrInvalidRange, from, to)
	}
	// from <= to，按无符号计算跨度不会溢出
	span := uint64(to) - uint64(from)
	if span >= MaxRangeSize {
		return nil, fmt.Errorf("%w: 号段 %d…%d 超过上限 %d 条", ErrInvalidRange, from, to, MaxRangeSize)
	}
	width := len(strings.TrimSpace(end))
	out := make([]layout.Entry, 0, span+1)
	for k := uint64(0); k <= span; k++ {
		out = append(out, layout.Entry{Code: prefix + pad(from+int(k), width)})
	}
	return out, nil
}

// pad 左侧补零到 width 位；负数的符号保留在最前。
func pad(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	if n < 0 {
		return "-" + strings.Repeat("0", width-len(s)) + s[1:]
	}
	return strings.Repeat("0", width-len(s)) + s
}
