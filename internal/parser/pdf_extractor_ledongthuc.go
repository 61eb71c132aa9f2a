package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

// PageTextPDFExtractor 使用 ledongthuc/pdf 逐页读取纯文本
// 任一页失败则整份文档失败
type PageTextPDFExtractor struct {
	logger zerolog.Logger
}

// NewPageTextPDFExtractor 创建逐页PDF提取器
func NewPageTextPDFExtractor(logger zerolog.Logger) *PageTextPDFExtractor {
	return &PageTextPDFExtractor{logger: logger}
}

// ExtractText 实现 TextExtractor
func (e *PageTextPDFExtractor) ExtractText(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewDecodeError(path, "parse_pdf", fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", NewDecodeError(path, "open_pdf", err)
	}
	defer f.Close()

	var b strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", NewDecodeError(path, "parse_pdf", err)
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", NewDecodeError(path, "parse_pdf", fmt.Errorf("page %d: %w", i, err))
		}
		b.WriteString(pageText)
	}

	e.logger.Debug().Str("file", path).Int("pages", numPages).Msg("PDF提取完成")
	return b.String(), nil
}
