package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"
)

// NewQPMLimiter 按每分钟请求数创建限流器，突发容量取 qpm 的一半
func NewQPMLimiter(qpm int) *rate.Limiter {
	if qpm <= 0 {
		qpm = 1
	}
	burst := qpm / 2
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(qpm)/60.0), burst)
}

// RateLimitedChatModel 给聊天模型加上限流和退避重试，批量解析时多个 worker 共享同一个限流器
type RateLimitedChatModel struct {
	inner      model.ChatModel
	limiter    *rate.Limiter
	retryWait  time.Duration
	maxRetries int
}

// NewRateLimitedChatModel 包装 inner；retryWait 为首次退避时长，之后按指数增长
func NewRateLimitedChatModel(inner model.ChatModel, qpm int, retryWait time.Duration, maxRetries int) *RateLimitedChatModel {
	if retryWait <= 0 {
		retryWait = time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RateLimitedChatModel{
		inner:      inner,
		limiter:    NewQPMLimiter(qpm),
		retryWait:  retryWait,
		maxRetries: maxRetries,
	}
}

// Generate 实现 model.ChatModel
func (rl *RateLimitedChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return backoff.RetryWithData(func() (*schema.Message, error) {
		if err := rl.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := rl.inner.Generate(ctx, messages, opts...)
		return resp, classify(err)
	}, rl.policy(ctx))
}

// Stream 实现 model.ChatModel
func (rl *RateLimitedChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return backoff.RetryWithData(func() (*schema.StreamReader[*schema.Message], error) {
		if err := rl.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		stream, err := rl.inner.Stream(ctx, messages, opts...)
		return stream, classify(err)
	}, rl.policy(ctx))
}

// BindTools 实现 model.ChatModel
func (rl *RateLimitedChatModel) BindTools(tools []*schema.ToolInfo) error {
	return rl.inner.BindTools(tools)
}

func (rl *RateLimitedChatModel) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = rl.retryWait
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(rl.maxRetries)), ctx)
}

// classify 不可重试的错误包装为 Permanent，立即返回
func classify(err error) error {
	if err == nil || isRetryableError(err) {
		return err
	}
	return backoff.Permanent(err)
}

var retryableMarkers = []string{
	"timeout",
	"connection reset",
	"connection refused",
	"eof",
	"429",
	"rate limit",
	"服务器繁忙",
	"请求超过限额",
}

// isRetryableError 调用方取消不重试，其余按错误文本判断
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range retryableMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

var _ model.ChatModel = (*RateLimitedChatModel)(nil)
