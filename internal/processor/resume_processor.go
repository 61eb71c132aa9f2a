package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
	"resume-parser-go/pkg/utils"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// 定义tracer
var tracer = otel.Tracer("processor")

// ResumeParser 把单个文件变成一条 ResumeRecord
// 构建后只读，可被多个 goroutine 同时使用
type ResumeParser struct {
	components Components
	settings   Settings
}

// NewResumeParser 使用明确分离的组件和设置创建解析器
func NewResumeParser(comp *Components, set *Settings, opts ...SettingOpt) (*ResumeParser, error) {
	if comp == nil || comp.Reader == nil {
		return nil, ErrReaderNotInit
	}
	if comp.Extractor == nil {
		return nil, ErrExtractorNotInit
	}

	settings := Settings{Logger: zerolog.Nop()}
	if set != nil {
		settings = *set
	}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.CacheTTL <= 0 {
		settings.CacheTTL = constants.RecordCacheTTL
	}
	if settings.Workers <= 0 {
		settings.Workers = 1
	}

	return &ResumeParser{components: *comp, settings: settings}, nil
}

// Supports 判断文件扩展名是否受支持
func (p *ResumeParser) Supports(path string) bool {
	return p.components.Reader.Supports(path)
}

// Parse 读取并抽取单个文件
// 文档无法读取时记录日志并返回 nil 和读取错误，调用方应跳过该文档
func (p *ResumeParser) Parse(ctx context.Context, path string) (*types.ResumeRecord, error) {
	fileName := filepath.Base(path)
	ctx, span := tracer.Start(ctx, "ParseResume",
		trace.WithAttributes(attribute.String("file.name",
			tracing.SafeAttributeValue("file.name", fileName, tracing.DefaultMaxLength))))
	defer span.End()

	log := p.settings.Logger.With().Str("file", fileName).Logger()

	cacheKey := p.cacheKey(path, log)
	if cacheKey != "" {
		if cached := p.lookup(ctx, cacheKey, log); cached != nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			record := cached.Clone()
			record.FileName = fileName
			return record, nil
		}
	}

	text, err := p.components.Reader.ReadText(ctx, path)
	if err != nil {
		log.Warn().Err(err).Msg("无法读取文档，已跳过")
		tracing.RecordError(span, err, readErrorType(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int("text.length", len(text)))

	record := p.components.Extractor.Extract(ctx, fileName, text)

	if cacheKey != "" {
		if err := p.components.Cache.SetRecord(ctx, cacheKey, record, p.settings.CacheTTL); err != nil {
			log.Warn().Err(err).Str("key", tracing.SafeRedisKey(cacheKey)).Msg("写入解析缓存失败")
		}
	}

	log.Info().Str("name", tracing.MaskPII(record.Name)).Msg("简历解析完成")
	return record, nil
}

// cacheKey 未配置缓存或文件不受支持时返回空串
func (p *ResumeParser) cacheKey(path string, log zerolog.Logger) string {
	if p.components.Cache == nil || !p.components.Reader.Supports(path) {
		return ""
	}
	sum, err := utils.FileMD5(path)
	if err != nil {
		log.Debug().Err(err).Msg("计算文件MD5失败，不使用缓存")
		return ""
	}
	return fmt.Sprintf(constants.KeyResumeRecord, p.fingerprint(), sum)
}

// fingerprint 抽取器未提供指纹时固定为 default
func (p *ResumeParser) fingerprint() string {
	if fp, ok := p.components.Extractor.(Fingerprinter); ok {
		if v := fp.Fingerprint(); v != "" {
			return v
		}
	}
	return "default"
}

func readErrorType(err error) tracing.ErrorType {
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return tracing.ErrorTypeValidation
	case errors.Is(err, context.DeadlineExceeded):
		return tracing.ErrorTypeTimeout
	default:
		return tracing.ErrorTypeDecode
	}
}

func (p *ResumeParser) lookup(ctx context.Context, key string, log zerolog.Logger) *types.ResumeRecord {
	record, err := p.components.Cache.GetRecord(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", tracing.SafeRedisKey(key)).Msg("读取解析缓存失败")
		return nil
	}
	if record != nil {
		log.Debug().Msg("命中解析缓存")
	}
	return record
}
