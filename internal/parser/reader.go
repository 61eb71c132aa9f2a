package parser

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TextExtractor 从单一格式的文件中提取纯文本
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// DocumentReader 按扩展名把文件分发给对应的提取器
type DocumentReader struct {
	extractors map[string]TextExtractor
	logger     zerolog.Logger
}

// ReaderOption DocumentReader 的配置选项
type ReaderOption func(*DocumentReader)

// WithReaderLogger 设置日志记录器
func WithReaderLogger(logger zerolog.Logger) ReaderOption {
	return func(r *DocumentReader) {
		r.logger = logger
	}
}

// WithExtractor 注册或替换某个扩展名(带点，小写)的提取器
func WithExtractor(ext string, extractor TextExtractor) ReaderOption {
	return func(r *DocumentReader) {
		r.extractors[strings.ToLower(ext)] = extractor
	}
}

// NewDocumentReader 创建读取器，默认支持 .pdf .docx .txt
func NewDocumentReader(pdfExtractor TextExtractor, options ...ReaderOption) *DocumentReader {
	r := &DocumentReader{
		extractors: map[string]TextExtractor{
			".docx": NewDocxExtractor(),
			".txt":  NewTextFileExtractor(),
		},
		logger: zerolog.Nop(),
	}
	if pdfExtractor != nil {
		r.extractors[".pdf"] = pdfExtractor
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Supports 判断路径的扩展名是否受支持（大小写不敏感）
func (r *DocumentReader) Supports(path string) bool {
	_, ok := r.extractors[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions 返回已注册的扩展名，按字母排序
func (r *DocumentReader) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ReadText 读取文档全文
// 失败时返回 *DocumentError，可用 errors.Is 匹配 ErrUnsupportedFormat / ErrDecodeFailed / ErrEmptyDocument
func (r *DocumentReader) ReadText(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	extractor, ok := r.extractors[ext]
	if !ok {
		return "", NewUnsupportedError(path, ext)
	}

	start := time.Now()
	text, err := extractor.ExtractText(ctx, path)
	if err != nil {
		var docErr *DocumentError
		if errors.As(err, &docErr) {
			return "", err
		}
		return "", NewDecodeError(path, "extract"+ext, err)
	}
	if text == "" {
		return "", NewEmptyDocumentError(path)
	}

	r.logger.Debug().
		Str("file", filepath.Base(path)).
		Int("chars", len([]rune(text))).
		Dur("took", time.Since(start)).
		Msg("文档读取完成")
	return text, nil
}
