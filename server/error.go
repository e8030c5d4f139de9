package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ByLCY/barlabel/barcode"
	"github.com/ByLCY/barlabel/ingest"
	"github.com/ByLCY/barlabel/labels"
	"github.com/ByLCY/barlabel/layout"
	"github.com/ByLCY/barlabel/renderer"
)

// DomainError 是返回给客户端的错误体，Code 为下方的通用错误码之一。
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// 通用错误码
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeInternal        = "INTERNAL"
)

// NewNotFoundError 创建 NOT_FOUND 错误。
func NewNotFoundError(msg string) error {
	return &DomainError{Code: ErrCodeNotFound, Message: msg}
}

// NewInvalidArgumentError 创建 INVALID_ARGUMENT 错误。
func NewInvalidArgumentError(msg string) error {
	return &DomainError{Code: ErrCodeInvalidArgument, Message: msg}
}

// toDomainError 将各层的错误映射为带错误码的 DomainError。
func toDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	switch {
	case errors.Is(err, layout.ErrInvalidDimension),
		errors.Is(err, barcode.ErrUnknownSymbology),
		errors.Is(err, ingest.ErrInvalidRange),
		errors.Is(err, ingest.ErrNoEntries),
		errors.Is(err, renderer.ErrNoPages),
		errors.Is(err, renderer.ErrRasterTooLarge):
		return &DomainError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	case errors.Is(err, layout.ErrUnknownPreset):
		return &DomainError{Code: ErrCodeNotFound, Message: err.Error()}
	case errors.Is(err, labels.ErrSuperseded):
		return &DomainError{Code: ErrCodeConflict, Message: err.Error()}
	}
	return &DomainError{Code: ErrCodeInternal, Message: err.Error()}
}

func toHTTPStatus(de *DomainError) int {
	switch de.Code {
	case ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errDTO struct {
	Error *DomainError `json:"error"`
}
