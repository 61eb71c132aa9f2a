package tracing

import (
	"context"
	"errors"
	"testing"

	"resume-parser-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMaskPII(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"a", "*"},
		{"ab", "a*"},
		{"abcd", "a**d"},
		{"jane@example.com", "ja************om"},
		{"555-123-4567", "55********67"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskPII(tt.in), "输入: %q", tt.in)
	}

	assert.Equal(t, "", MaskPIIPtr(nil))
	v := "abcd"
	assert.Equal(t, "a**d", MaskPIIPtr(&v))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abc", TruncateString("abcdef", 3))
	assert.Equal(t, "ab...gh", TruncateString("abcdefgh", 7))
	assert.Equal(t, "简历...内容", TruncateString("简历的全部文本内容", 7), "应按字符而不是字节截断")
}

func TestSafeAttributeValue(t *testing.T) {
	assert.Equal(t, "ja************om", SafeAttributeValue("candidate.email", "jane@example.com", 100))
	assert.Equal(t, "ab...kl", SafeAttributeValue("file.path", "abcdefghijkl", 7), "非敏感字段只做截断")
}

func TestRecordError(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	RecordErrorWithInfo(span, errors.New("boom"), ErrorTypeDecode, attribute.String("file.name", "a.pdf"))
	RecordError(span, nil, ErrorTypeDecode)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "decode", attrs["error.type"].AsString())
	assert.Equal(t, "boom", attrs["error.message"].AsString())
	assert.Equal(t, "a.pdf", attrs["file.name"].AsString())
}

func TestRecordHTTPError(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "http")
	RecordHTTPError(span, errors.New("bad upload"), 422)
	span.End()

	require.Len(t, sr.Ended(), 1)
	found := false
	for _, kv := range sr.Ended()[0].Attributes() {
		if kv.Key == "error.category" {
			found = true
			assert.Equal(t, "client_error", kv.Value.AsString())
		}
	}
	assert.True(t, found, "应记录错误分类")
}

func TestInitProviderDisabled(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), &config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	shutdown, err = InitProvider(context.Background(), nil, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
