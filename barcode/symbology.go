// Package barcode validates payloads and encodes them into 1-D bar modules.
package barcode

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"strings"
	"unicode/utf8"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
)

// DefaultSymbology 是未指定时使用的码制。
const DefaultSymbology = "code128"

// Modules 是编码后的条/空序列，true 表示黑条，每个元素宽度为一个模块。
type Modules []bool

// Runs 将相邻的黑条合并，返回每段的起始模块与长度。
func (m Modules) Runs() [][2]int {
	var runs [][2]int
	for i := 0; i < len(m); {
		if !m[i] {
			i++
			continue
		}
		j := i
		for j < len(m) && m[j] {
			j++
		}
		runs = append(runs, [2]int{i, j - i})
		i = j
	}
	return runs
}

// ErrUnknownSymbology 表示码制名称未注册。
var ErrUnknownSymbology = errors.New("barcode: 不支持的码制")

// EncodingError 表示某条数据无法被码制编码，只影响该条数据。
type EncodingError struct {
	Code   string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("barcode: 无法编码 %q: %s", e.Code, e.Reason)
}

// Symbology 是一种一维码制。
type Symbology interface {
	Name() string
	// Validate 在编码前检查字符集与长度。
	Validate(payload string) error
	// Encode 返回条空模块序列；失败时返回 *EncodingError。
	Encode(payload string) (Modules, error)
	// Text 返回条码下方显示的人读文本。
	Text(payload string) string
}

var registry = map[string]Symbology{
	"code128": code128Symbology{},
	"code39":  code39Symbology{},
	"ean13":   eanSymbology{name: "ean13", digits: 13},
	"ean8":    eanSymbology{name: "ean8", digits: 8},
}

// Lookup 按名称查找码制（大小写与连字符不敏感，例如 "Code-128"）。
func Lookup(name string) (Symbology, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	if key == "" {
		key = DefaultSymbology
	}
	s, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w %q（支持 %s）", ErrUnknownSymbology, name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names 返回已注册码制的名称（已排序）。
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func reject(payload, format string, args ...any) error {
	return &EncodingError{Code: payload, Reason: fmt.Sprintf(format, args...)}
}

func modulesOf(code bc.Barcode) Modules {
	b := code.Bounds()
	out := make(Modules, b.Dx())
	for x := b.Min.X; x < b.Max.X; x++ {
		out[x-b.Min.X] = isDark(code.At(x, b.Min.Y))
	}
	return out
}

func isDark(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return (r+g+b)/3 < 0x8000
}

type code128Symbology struct{}

func (code128Symbology) Name() string { return "code128" }

// Code 128 覆盖 ASCII 0–127，最多 80 个字符。
func (code128Symbology) Validate(payload string) error {
	if payload == "" {
		return reject(payload, "内容为空")
	}
	if n := utf8.RuneCountInString(payload); n > 80 {
		return reject(payload, "长度 %d 超过 80", n)
	}
	for i, r := range payload {
		if r > 127 {
			return reject(payload, "第 %d 个字节处的字符 %q 不在 Code 128 字符集中", i, r)
		}
	}
	return nil
}

func (s code128Symbology) Encode(payload string) (Modules, error) {
	if err := s.Validate(payload); err != nil {
		return nil, err
	}
	code, err := code128.Encode(payload)
	if err != nil {
		return nil, reject(payload, "%v", err)
	}
	return modulesOf(code), nil
}

func (code128Symbology) Text(payload string) string { return payload }

type code39Symbology struct{}

const code39Charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-. $/+%"

func (code39Symbology) Name() string { return "code39" }

func (code39Symbology) Validate(payload string) error {
	if payload == "" {
		return reject(payload, "内容为空")
	}
	for _, r := range payload {
		if !strings.ContainsRune(code39Charset, r) {
			return reject(payload, "字符 %q 不在 Code 39 字符集中", r)
		}
	}
	return nil
}

func (s code39Symbology) Encode(payload string) (Modules, error) {
	if err := s.Validate(payload); err != nil {
		return nil, err
	}
	code, err := code39.Encode(payload, false, false)
	if err != nil {
		return nil, reject(payload, "%v", err)
	}
	return modulesOf(code), nil
}

func (code39Symbology) Text(payload string) string { return "*" + payload + "*" }

type eanSymbology struct {
	name   string
	digits int
}

func (s eanSymbology) Name() string { return s.name }

// EAN 接受不含校验位（digits-1 位）或含校验位（digits 位）的纯数字。
func (s eanSymbology) Validate(payload string) error {
	n := len(payload)
	if n != s.digits && n != s.digits-1 {
		return reject(payload, "%s 需要 %d 或 %d 位数字，实际 %d 位", strings.ToUpper(s.name), s.digits-1, s.digits, n)
	}
	for _, r := range payload {
		if r < '0' || r > '9' {
			return reject(payload, "字符 %q 不是数字", r)
		}
	}
	return nil
}

func (s eanSymbology) Encode(payload string) (Modules, error) {
	if err := s.Validate(payload); err != nil {
		return nil, err
	}
	code, err := ean.Encode(payload)
	if err != nil {
		return nil, reject(payload, "%v", err)
	}
	return modulesOf(code), nil
}

// Text 返回补全校验位后的数字。
func (s eanSymbology) Text(payload string) string {
	if code, err := ean.Encode(payload); err == nil {
		return code.Content()
	}
	return payload
}
