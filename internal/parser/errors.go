package parser

import (
	"errors"
	"fmt"
)

// 文档读取的基础错误类型
var (
	ErrUnsupportedFormat = errors.New("不支持的文档格式")
	ErrDecodeFailed      = errors.New("文档解码失败")
	ErrEmptyDocument     = errors.New("文档未包含任何文本")
)

// DocumentError 携带文件路径和操作信息的读取错误
// errors.Is 可同时匹配基础错误和底层原因
type DocumentError struct {
	Path    string
	Op      string
	BaseErr error
	Cause   error
}

func (e *DocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (操作:%s, 文件:%s): %v", e.BaseErr, e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s (操作:%s, 文件:%s)", e.BaseErr, e.Op, e.Path)
}

func (e *DocumentError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.BaseErr}
	}
	return []error{e.BaseErr, e.Cause}
}

// NewUnsupportedError 扩展名不在支持列表中
func NewUnsupportedError(path, ext string) error {
	return &DocumentError{
		Path:    path,
		Op:      "dispatch",
		BaseErr: ErrUnsupportedFormat,
		Cause:   fmt.Errorf("extension %q", ext),
	}
}

// NewDecodeError 解码阶段失败
func NewDecodeError(path, op string, cause error) error {
	return &DocumentError{
		Path:    path,
		Op:      op,
		BaseErr: ErrDecodeFailed,
		Cause:   cause,
	}
}

// NewEmptyDocumentError 解码成功但文本为空
func NewEmptyDocumentError(path string) error {
	return &DocumentError{
		Path:    path,
		Op:      "read",
		BaseErr: ErrEmptyDocument,
	}
}
