package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DashScope 的 OpenAI 兼容入口
	defaultBaseURL       = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	defaultChatModelName = "qwen-turbo"
)

// OpenAICompatibleChatModel 通过 OpenAI chat/completions 协议调用模型，实现 model.ChatModel
type OpenAICompatibleChatModel struct {
	client    *openai.Client
	modelName string
	baseURL   string
	timeout   time.Duration
	logger    zerolog.Logger
}

// ChatModelOption 聊天模型的配置选项
type ChatModelOption func(*OpenAICompatibleChatModel)

// WithHTTPTimeout 设置单次请求超时
func WithHTTPTimeout(timeout time.Duration) ChatModelOption {
	return func(m *OpenAICompatibleChatModel) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// WithChatModelLogger 设置日志记录器
func WithChatModelLogger(logger zerolog.Logger) ChatModelOption {
	return func(m *OpenAICompatibleChatModel) {
		m.logger = logger
	}
}

// NewOpenAICompatibleChatModel 创建聊天模型，modelName 与 baseURL 为空时使用默认值
func NewOpenAICompatibleChatModel(apiKey, modelName, baseURL string, options ...ChatModelOption) (*OpenAICompatibleChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultChatModelName
	}
	baseURL = normalizeBaseURL(baseURL)

	m := &OpenAICompatibleChatModel{
		modelName: modelName,
		baseURL:   baseURL,
		timeout:   30 * time.Second,
		logger:    zerolog.Nop(),
	}
	for _, option := range options {
		option(m)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = baseURL
	clientCfg.HTTPClient = &http.Client{Timeout: m.timeout}
	m.client = openai.NewClientWithConfig(clientCfg)
	return m, nil
}

// normalizeBaseURL 兼容旧配置里写完整 chat/completions 地址的情况
func normalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultBaseURL
	}
	raw = strings.TrimRight(raw, "/")
	return strings.TrimSuffix(raw, "/chat/completions")
}

// Generate 实现 model.ChatModel 接口
func (m *OpenAICompatibleChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	opts := model.GetCommonOptions(&model.Options{}, options...)

	req := openai.ChatCompletionRequest{
		Model:    m.modelName,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	if opts.Model != nil && *opts.Model != "" {
		req.Model = *opts.Model
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: string(msg.Role), Content: msg.Content})
	}

	start := time.Now()
	resp, err := m.client.CreateChatCompletion(ctx, req)
	m.logger.Debug().
		Str("model", req.Model).
		Dur("took", time.Since(start)).
		Err(err).
		Msg("模型请求完成")
	if err != nil {
		return nil, describeAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("从 API 收到空选项: id=%s", resp.ID)
	}

	apiMessage := resp.Choices[0].Message
	result := schema.AssistantMessage(apiMessage.Content, nil)
	if apiMessage.Role != "" {
		result.Role = schema.RoleType(apiMessage.Role)
	}
	return result, nil
}

// describeAPIError 把状态码写进错误文本，限流包装据此判断是否重试
func describeAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("API 请求失败，状态 %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("API 请求失败，状态 %d: %w", reqErr.HTTPStatusCode, err)
	}
	return fmt.Errorf("发送模型请求失败: %w", err)
}

// Stream 实现 model.ChatModel 接口，识别场景只需要一次性结果
func (m *OpenAICompatibleChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("OpenAICompatibleChatModel 的 Stream 方法未实现")
}

// BindTools 实现 model.ChatModel 接口，本模型不使用工具
func (m *OpenAICompatibleChatModel) BindTools(tools []*schema.ToolInfo) error {
	if len(tools) > 0 {
		return fmt.Errorf("OpenAICompatibleChatModel 不支持工具调用")
	}
	return nil
}

var _ model.ChatModel = (*OpenAICompatibleChatModel)(nil)
