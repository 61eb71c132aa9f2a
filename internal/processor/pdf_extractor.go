package processor

import (
	"context"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/parser"

	"github.com/rs/zerolog"
)

// BuildPDFExtractor 统一构建PDF解析器的逻辑
// 根据配置返回合适的PDF解析器实现
func BuildPDFExtractor(ctx context.Context, cfg *config.ReaderConfig, logger zerolog.Logger) (parser.TextExtractor, error) {
	timeout := config.GetDuration(cfg.PDFTimeoutSeconds, 30*time.Second)
	switch cfg.PDFBackend {
	case config.PDFBackendLedongthuc:
		logger.Info().Msg("使用 ledongthuc/pdf 作为PDF解析器")
		return parser.NewPageTextPDFExtractor(logger.With().Str("component", "pdf_ledongthuc").Logger()), nil
	default:
		logger.Info().Dur("timeout", timeout).Msg("使用 Eino 作为PDF解析器")
		return parser.NewEinoPDFTextExtractor(ctx,
			parser.WithEinoLogger(logger.With().Str("component", "pdf_eino").Logger()),
			parser.WithEinoTimeout(timeout),
		)
	}
}

// BuildDocumentReader 构建按扩展名分发的文档读取器
func BuildDocumentReader(ctx context.Context, cfg *config.ReaderConfig, logger zerolog.Logger) (*parser.DocumentReader, error) {
	pdfExtractor, err := BuildPDFExtractor(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	reader := parser.NewDocumentReader(pdfExtractor, parser.WithReaderLogger(logger))
	logger.Debug().Strs("extensions", reader.SupportedExtensions()).Msg("文档读取器已就绪")
	return reader, nil
}
