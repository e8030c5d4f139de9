package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimension 表示自定义宽/高不是正的有限数值。
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrUnknownPreset 表示预设编号不在目录中。
	ErrUnknownPreset = errors.New("unknown preset")
)

// GeometryError 携带出错字段与原始输入，Unwrap 后为上面的哨兵错误之一。
type GeometryError struct {
	Field string
	Value string
	Err   error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("layout: %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }
