// Package generation 封装对外部补全服务的调用与固定间隔重试
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"collab-novel-api/pkg/logger"
	"collab-novel-api/pkg/metrics"
	"collab-novel-api/pkg/tracer"
)

const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 5 * time.Second
)

// ErrEmptyPrompt 提示词为空
var ErrEmptyPrompt = errors.New("prompt is empty")

// Purpose 生成用途，chat 后端据此选择系统提示词
type Purpose string

const (
	PurposeNovel   Purpose = "novel"
	PurposeChapter Purpose = "chapter"
)

// Params 单次补全的参数，零值表示使用提供商默认值
type Params struct {
	Purpose     Purpose
	MaxTokens   int
	Temperature *float32
}

// Completer 外部补全服务的最小依赖
type Completer interface {
	Complete(ctx context.Context, prompt string, params Params) (string, error)
}

// GenerationError 重试耗尽后的终止错误
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// permanentError 重试无意义的错误，例如提供商未配置
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent 标记 err 不再重试
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent 判断 err 是否被标记为不可重试
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Option 单次调用选项
type Option func(*Params)

// WithMaxTokens 覆盖最大生成长度
func WithMaxTokens(n int) Option {
	return func(p *Params) {
		p.MaxTokens = n
	}
}

// WithPurpose 指定生成用途
func WithPurpose(p Purpose) Option {
	return func(params *Params) {
		params.Purpose = p
	}
}

// WithTemperature 覆盖采样温度
func WithTemperature(t float32) Option {
	return func(p *Params) {
		p.Temperature = &t
	}
}

// Config 客户端配置
type Config struct {
	Provider    string
	MaxAttempts int
	Delay       time.Duration
}

// Client 生成客户端，不缓存结果
type Client struct {
	completer   Completer
	provider    string
	maxAttempts int
	delay       time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewClient 创建生成客户端
func NewClient(completer Completer, cfg Config) *Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	return &Client{
		completer:   completer,
		provider:    cfg.Provider,
		maxAttempts: cfg.MaxAttempts,
		delay:       cfg.Delay,
		sleep:       sleepContext,
	}
}

// Generate 为提示词生成文本
// 上游失败时按固定间隔重试，最多 maxAttempts 次，之后返回 *GenerationError
func (c *Client) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	params := Params{Purpose: PurposeNovel}
	for _, opt := range opts {
		opt(&params)
	}

	ctx, span := tracer.Start(ctx, "generation.Client.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", c.provider),
		attribute.Int("llm.prompt_length", len(prompt)),
	)

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		text, err := c.completer.Complete(ctx, prompt, params)
		if err == nil {
			metrics.GenerationAttemptsTotal.WithLabelValues(c.provider, "success").Inc()
			metrics.GenerationDuration.WithLabelValues(c.provider, "success").Observe(time.Since(start).Seconds())
			span.SetAttributes(attribute.Int("generation.attempts", attempt))
			return strings.TrimSpace(text), nil
		}

		lastErr = err
		metrics.GenerationAttemptsTotal.WithLabelValues(c.provider, "error").Inc()
		logger.Warn(ctx, "completion attempt failed",
			"provider", c.provider,
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"error", err.Error(),
		)

		if IsPermanent(err) {
			return "", c.fail(ctx, span, start, &GenerationError{Attempts: attempt, Err: err})
		}
		if attempt == c.maxAttempts {
			break
		}
		if sleepErr := c.sleep(ctx, c.delay); sleepErr != nil {
			return "", c.fail(ctx, span, start, &GenerationError{Attempts: attempt, Err: errors.Join(lastErr, sleepErr)})
		}
	}

	return "", c.fail(ctx, span, start, &GenerationError{Attempts: c.maxAttempts, Err: lastErr})
}

func (c *Client) fail(ctx context.Context, span trace.Span, start time.Time, genErr *GenerationError) error {
	metrics.GenerationFailuresTotal.WithLabelValues(c.provider).Inc()
	metrics.GenerationDuration.WithLabelValues(c.provider, "error").Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("generation.attempts", genErr.Attempts))
	tracer.RecordError(span, genErr)
	logger.Error(ctx, "generation failed", genErr, "provider", c.provider)
	return genErr
}

// sleepContext 等待 d，context 取消时提前返回
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
