package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrReaderNotInit    = errors.New("reader is not initialized")
	ErrExtractorNotInit = errors.New("extractor is not initialized")
	ErrNoInputs         = errors.New("没有可解析的输入文件")
)

// Failure 批量解析中被跳过的文档
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}
