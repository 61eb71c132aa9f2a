package handler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ResumeParser 处理器依赖的解析能力
type ResumeParser interface {
	Parse(ctx context.Context, path string) (*types.ResumeRecord, error)
	Supports(path string) bool
}

// ResumeHandler 简历解析接口处理器
type ResumeHandler struct {
	parser         ResumeParser
	maxUploadBytes int64
}

// NewResumeHandler 创建一个新的简历处理器
func NewResumeHandler(parser ResumeParser, maxUploadMB int) *ResumeHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &ResumeHandler{
		parser:         parser,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
	}
}

// HandleHealth 健康检查
func (h *ResumeHandler) HandleHealth(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "ok"})
}

// HandleParse 接收 multipart 上传的简历，解析后返回 ResumeRecord
// 上传文件以原始文件名写入临时目录，使 file_name 与 CLI 模式一致
// 服务端 span 由 hertz 追踪中间件创建，这里只补充属性
func (h *ResumeHandler) HandleParse(ctx context.Context, c *app.RequestContext) {
	span := trace.SpanFromContext(ctx)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.fail(c, span, consts.StatusBadRequest, "文件未找到", err)
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		h.fail(c, span, consts.StatusRequestEntityTooLarge,
			fmt.Sprintf("文件大小不能超过 %d MB", h.maxUploadBytes/1024/1024), nil)
		return
	}

	name := filepath.Base(strings.ReplaceAll(fileHeader.Filename, "\\", "/"))
	span.SetAttributes(
		attribute.String("file.name", tracing.SafeAttributeValue("file.name", name, tracing.DefaultMaxLength)),
		attribute.Int64("file.size", fileHeader.Size),
	)
	if name == "." || name == "/" || name == "" {
		h.fail(c, span, consts.StatusBadRequest, "文件名无效", nil)
		return
	}
	if !h.parser.Supports(name) {
		h.fail(c, span, consts.StatusUnsupportedMediaType,
			fmt.Sprintf("不支持的文件类型: %s", strings.ToLower(filepath.Ext(name))), parser.ErrUnsupportedFormat)
		return
	}

	dir, err := os.MkdirTemp("", "resume-upload-*")
	if err != nil {
		h.fail(c, span, consts.StatusInternalServerError, "创建临时目录失败", err)
		return
	}
	defer os.RemoveAll(dir)

	dst := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		h.fail(c, span, consts.StatusInternalServerError, "保存上传文件失败", err)
		return
	}

	record, err := h.parser.Parse(ctx, dst)
	if err != nil {
		status := statusForParseError(err)
		h.fail(c, span, status, err.Error(), err)
		return
	}

	logger.Info().Str("file", name).Msg("上传简历解析完成")
	c.JSON(consts.StatusOK, record)
}

// statusForParseError 把读取错误映射为HTTP状态码
func statusForParseError(err error) int {
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return consts.StatusUnsupportedMediaType
	case errors.Is(err, parser.ErrDecodeFailed), errors.Is(err, parser.ErrEmptyDocument):
		return consts.StatusUnprocessableEntity
	default:
		return consts.StatusInternalServerError
	}
}

func (h *ResumeHandler) fail(c *app.RequestContext, span trace.Span, status int, msg string, err error) {
	if err == nil {
		err = errors.New(msg)
	}
	tracing.RecordHTTPError(span, err, status)
	if status >= consts.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("简历解析请求失败")
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("简历解析请求被拒绝")
	}
	c.JSON(status, utils.H{"error": msg})
}
