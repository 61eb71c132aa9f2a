package agent

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"resume-parser-go/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntities(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Entity
		wantErr bool
	}{
		{
			name:    "纯JSON数组",
			content: `[{"text":"Jane Doe","label":"PERSON"},{"text":"Acme","label":"org"}]`,
			want:    []Entity{{Text: "Jane Doe", Label: "PERSON"}, {Text: "Acme", Label: "ORG"}},
		},
		{
			name:    "markdown代码块",
			content: "```json\n[{\"text\":\" John Smith \",\"label\":\"person\"}]\n```",
			want:    []Entity{{Text: "John Smith", Label: "PERSON"}},
		},
		{
			name:    "对象包装",
			content: `{"entities":[{"text":"Berlin","label":"GPE"}]}`,
			want:    []Entity{{Text: "Berlin", Label: "GPE"}},
		},
		{
			name:    "前后有说明文字",
			content: `Here you go: [{"text":"Ann Lee","label":"PERSON"}] done`,
			want:    []Entity{{Text: "Ann Lee", Label: "PERSON"}},
		},
		{
			name:    "空实体被丢弃",
			content: `[{"text":"  ","label":"PERSON"}]`,
			want:    []Entity{},
		},
		{name: "空输出", content: "   ", want: nil},
		{name: "不是JSON", content: "no entities here", wantErr: true},
		{name: "坏的JSON", content: `[{"text":}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntities(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNullRecognizer(t *testing.T) {
	entities, err := NullRecognizer{}.Recognize(context.Background(), "Jane Doe")
	assert.NoError(t, err)
	assert.Empty(t, entities)
}

func TestLLMEntityRecognizer(t *testing.T) {
	mock := NewMockChatClient(`[{"text":"Jane Doe","label":"PERSON"}]`, nil)
	r, err := NewLLMEntityRecognizer(mock)
	require.NoError(t, err)

	entities, err := r.Recognize(context.Background(), "Jane Doe\nSoftware Engineer")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, LabelPerson, entities[0].Label)

	require.Len(t, mock.ReceivedMessages, 2, "应发送system与user两条消息")
	assert.Equal(t, "Jane Doe\nSoftware Engineer", mock.ReceivedMessages[1].Content)

	// 空文本不调用模型
	_, err = r.Recognize(context.Background(), "  \n")
	require.NoError(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestLLMEntityRecognizerErrors(t *testing.T) {
	_, err := NewLLMEntityRecognizer(nil)
	assert.True(t, errors.Is(err, ErrRecognizerUnavailable))

	boom := errors.New("rate limited")
	r, err := NewLLMEntityRecognizer(NewMockChatClient("", boom))
	require.NoError(t, err)
	_, err = r.Recognize(context.Background(), "Jane")
	assert.True(t, errors.Is(err, boom), "应保留模型调用的原始错误")

	r, err = NewLLMEntityRecognizer(NewMockChatClient("sorry, nothing", nil))
	require.NoError(t, err)
	_, err = r.Recognize(context.Background(), "Jane")
	assert.ErrorContains(t, err, "没有JSON数组", "模型输出无法解析时应报错")
}

func TestLLMEntityRecognizerTimeout(t *testing.T) {
	slow := NewMockChatClient("", context.DeadlineExceeded)
	r, err := NewLLMEntityRecognizer(slow, WithRecognizeTimeout(time.Millisecond), WithModelName("qwen-plus"))
	require.NoError(t, err)
	assert.Equal(t, "qwen-plus", r.Fingerprint())

	_, err = r.Recognize(context.Background(), "Jane")
	assert.ErrorIs(t, err, context.DeadlineExceeded, "超时错误应可被识别")
}

func TestBuildRecognizer(t *testing.T) {
	t.Run("禁用", func(t *testing.T) {
		var buf bytes.Buffer
		rec := BuildRecognizer(&config.RecognizerConfig{Enabled: false}, zerolog.New(&buf))
		assert.IsType(t, NullRecognizer{}, rec)
		assert.NotContains(t, buf.String(), `"level":"warn"`, "主动禁用不应告警")
	})

	t.Run("缺少API Key只告警一次", func(t *testing.T) {
		var buf bytes.Buffer
		rec := BuildRecognizer(&config.RecognizerConfig{Enabled: true}, zerolog.New(&buf))
		assert.IsType(t, NullRecognizer{}, rec)
		assert.Equal(t, 1, strings.Count(buf.String(), `"level":"warn"`))
		assert.Contains(t, buf.String(), ErrRecognizerUnavailable.Error())
	})

	t.Run("nil配置", func(t *testing.T) {
		assert.IsType(t, NullRecognizer{}, BuildRecognizer(nil, zerolog.Nop()))
	})

	t.Run("可用", func(t *testing.T) {
		rec := BuildRecognizer(&config.RecognizerConfig{
			Enabled:        true,
			APIKey:         "sk-test",
			APIURL:         "http://127.0.0.1:1/v1",
			Model:          "qwen-turbo",
			TimeoutSeconds: 1,
		}, zerolog.Nop())
		require.IsType(t, &LLMEntityRecognizer{}, rec)
		llm := rec.(*LLMEntityRecognizer)
		assert.IsType(t, &OpenAICompatibleChatModel{}, llm.chatModel, "QPM为0时不限流")
		assert.Equal(t, "qwen-turbo", llm.Fingerprint(), "指纹应包含模型名")
	})

	t.Run("限流包装", func(t *testing.T) {
		rec := BuildRecognizer(&config.RecognizerConfig{
			Enabled:         true,
			APIKey:          "sk-test",
			TimeoutSeconds:  1,
			QPM:             30,
			MaxRetries:      1,
			RetryWaitMillis: 10,
		}, zerolog.Nop())
		require.IsType(t, &LLMEntityRecognizer{}, rec)
		limited, ok := rec.(*LLMEntityRecognizer).chatModel.(*RateLimitedChatModel)
		require.True(t, ok, "配置QPM后应包装限流模型")
		assert.Equal(t, 1, limited.maxRetries)
		assert.Equal(t, 10*time.Millisecond, limited.retryWait)
	})
}
