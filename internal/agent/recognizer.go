package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/tracing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("agent")

// LabelPerson 人名实体标签
const LabelPerson = "PERSON"

// ErrRecognizerUnavailable 识别器无法初始化，进程内改用首行回退
var ErrRecognizerUnavailable = errors.New("命名实体识别器不可用")

// Entity 识别出的命名实体
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// EntityRecognizer 对文本做命名实体识别，实现必须可并发调用
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// NullRecognizer 不识别任何实体
type NullRecognizer struct{}

// Recognize 实现 EntityRecognizer
func (NullRecognizer) Recognize(context.Context, string) ([]Entity, error) {
	return nil, nil
}

const entityPrompt = `You are a named-entity recognizer for resumes.
Return ONLY a JSON array of the entities found in the user's text, in order of appearance.
Each element must be {"text": "<exact span from the input>", "label": "<PERSON|ORG|GPE|DATE>"}.
Return [] when nothing is found. Do not add explanations.`

// LLMEntityRecognizer 借助聊天模型做实体识别
type LLMEntityRecognizer struct {
	chatModel    model.ChatModel
	modelName    string
	modelOptions []model.Option
	timeout      time.Duration
}

// LLMRecognizerOption 识别器配置选项
type LLMRecognizerOption func(*LLMEntityRecognizer)

// WithModelOptions 每次调用附带的模型参数
func WithModelOptions(opts ...model.Option) LLMRecognizerOption {
	return func(r *LLMEntityRecognizer) {
		r.modelOptions = append(r.modelOptions, opts...)
	}
}

// WithModelName 记录所用模型名，用于指纹和链路属性
func WithModelName(name string) LLMRecognizerOption {
	return func(r *LLMEntityRecognizer) {
		r.modelName = name
	}
}

// WithRecognizeTimeout 单次识别超时
func WithRecognizeTimeout(timeout time.Duration) LLMRecognizerOption {
	return func(r *LLMEntityRecognizer) {
		r.timeout = timeout
	}
}

// NewLLMEntityRecognizer 创建基于聊天模型的识别器
func NewLLMEntityRecognizer(chatModel model.ChatModel, options ...LLMRecognizerOption) (*LLMEntityRecognizer, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is nil", ErrRecognizerUnavailable)
	}
	r := &LLMEntityRecognizer{chatModel: chatModel}
	for _, option := range options {
		option(r)
	}
	return r, nil
}

// Fingerprint 模型不同时识别结果可能不同
func (r *LLMEntityRecognizer) Fingerprint() string {
	return r.modelName
}

// Recognize 实现 EntityRecognizer
func (r *LLMEntityRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	ctx, span := tracer.Start(ctx, "RecognizeEntities", trace.WithAttributes(
		attribute.String("llm.model", r.modelName),
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	resp, err := r.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(entityPrompt),
		schema.UserMessage(text),
	}, r.modelOptions...)
	if err != nil {
		err = fmt.Errorf("实体识别调用失败: %w", err)
		errType := tracing.ErrorTypeExternal
		if errors.Is(err, context.DeadlineExceeded) {
			errType = tracing.ErrorTypeTimeout
		}
		tracing.RecordError(span, err, errType)
		return nil, err
	}
	if resp == nil {
		err = fmt.Errorf("实体识别返回空消息")
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return nil, err
	}

	entities, err := ParseEntities(resp.Content)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}
	span.SetAttributes(attribute.Int("entities.count", len(entities)))
	return entities, nil
}

// ParseEntities 解析模型输出的实体列表，容忍 markdown 代码块和 {"entities": [...]} 包装
func ParseEntities(content string) ([]Entity, error) {
	raw := stripCodeFence(strings.TrimSpace(content))
	if raw == "" {
		return nil, nil
	}

	var entities []Entity
	if strings.HasPrefix(raw, "{") {
		var wrapped struct {
			Entities []Entity `json:"entities"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
			return nil, fmt.Errorf("解析实体JSON失败: %w", err)
		}
		entities = wrapped.Entities
	} else {
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start < 0 || end < start {
			return nil, fmt.Errorf("模型输出中没有JSON数组: %q", tracing.SafeResumeContent(raw))
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &entities); err != nil {
			return nil, fmt.Errorf("解析实体JSON失败: %w", err)
		}
	}

	out := entities[:0]
	for _, e := range entities {
		e.Text = strings.TrimSpace(e.Text)
		e.Label = strings.ToUpper(strings.TrimSpace(e.Label))
		if e.Text == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// BuildRecognizer 按配置构建识别器
// 无法使用时只记录一次告警，返回 NullRecognizer，此后整个进程使用首行回退
func BuildRecognizer(cfg *config.RecognizerConfig, logger zerolog.Logger) EntityRecognizer {
	if cfg == nil || !cfg.Enabled {
		logger.Info().Msg("命名实体识别已禁用，姓名将取自首个非空行")
		return NullRecognizer{}
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Warn().Err(ErrRecognizerUnavailable).Msg("未配置识别模型的API Key，姓名将取自首个非空行")
		return NullRecognizer{}
	}

	timeout := config.GetDuration(cfg.TimeoutSeconds, 20*time.Second)
	chatModel, err := NewOpenAICompatibleChatModel(cfg.APIKey, cfg.Model, cfg.APIURL,
		WithHTTPTimeout(timeout),
		WithChatModelLogger(logger),
	)
	if err != nil {
		logger.Warn().Err(fmt.Errorf("%w: %v", ErrRecognizerUnavailable, err)).Msg("识别模型初始化失败，姓名将取自首个非空行")
		return NullRecognizer{}
	}

	var limited model.ChatModel = chatModel
	if cfg.QPM > 0 {
		limited = NewRateLimitedChatModel(chatModel, cfg.QPM,
			time.Duration(cfg.RetryWaitMillis)*time.Millisecond, cfg.MaxRetries)
	}

	recognizer, err := NewLLMEntityRecognizer(limited,
		WithModelOptions(model.WithTemperature(float32(cfg.Temperature))),
		WithModelName(chatModel.modelName),
		WithRecognizeTimeout(timeout),
	)
	if err != nil {
		logger.Warn().Err(err).Msg("识别器初始化失败，姓名将取自首个非空行")
		return NullRecognizer{}
	}

	logger.Info().Str("model", cfg.Model).Int("qpm", cfg.QPM).Msg("命名实体识别器已就绪")
	return recognizer
}
