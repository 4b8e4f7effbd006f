package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"

	"collab-novel-api/internal/application/generation"
	einoobs "collab-novel-api/internal/observability/eino"
	"collab-novel-api/internal/workflow/prompt"
	"collab-novel-api/pkg/metrics"
)

// ErrEmptyResponse 上游返回空内容
var ErrEmptyResponse = errors.New("empty llm response")

// ChatCompleter 通过 ChatModel 完成单轮生成
type ChatCompleter struct {
	factory   ChatModelFactory
	templates *prompt.Registry
	provider  string
	model     string
}

// NewChatCompleter 创建基于 ChatModel 的补全器
func NewChatCompleter(factory ChatModelFactory, templates *prompt.Registry, provider, modelName string) *ChatCompleter {
	return &ChatCompleter{
		factory:   factory,
		templates: templates,
		provider:  provider,
		model:     modelName,
	}
}

// Complete 实现 generation.Completer
func (c *ChatCompleter) Complete(ctx context.Context, text string, params generation.Params) (string, error) {
	chatModel, err := c.factory.Get(ctx, c.provider)
	if err != nil {
		return "", generation.Permanent(err)
	}

	promptID := prompt.PromptNovelistV1
	if params.Purpose == generation.PurposeChapter {
		promptID = prompt.PromptChapterV1
	}
	tpl, err := c.templates.ChatTemplate(promptID)
	if err != nil {
		return "", generation.Permanent(err)
	}
	msgs, err := tpl.Format(ctx, map[string]any{prompt.VarPrompt: text})
	if err != nil {
		return "", generation.Permanent(fmt.Errorf("failed to format prompt: %w", err))
	}

	var opts []model.Option
	if params.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(params.MaxTokens))
	}
	if params.Temperature != nil {
		opts = append(opts, model.WithTemperature(*params.Temperature))
	}

	// 单独调用 ChatModel 时需显式挂载全局回调
	ctx = einoobs.WithPurpose(einoobs.WithProvider(ctx, c.provider), string(params.Purpose))
	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      c.provider,
		Type:      c.model,
		Component: components.ComponentOfChatModel,
	})
	out, err := chatModel.Generate(ctx, msgs, opts...)
	if err != nil {
		return "", err
	}
	if out == nil || out.Content == "" {
		return "", ErrEmptyResponse
	}

	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		usage := out.ResponseMeta.Usage
		metrics.LLMTokensUsed.WithLabelValues(c.provider, c.model, "prompt").Add(float64(usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(c.provider, c.model, "completion").Add(float64(usage.CompletionTokens))
	}
	return out.Content, nil
}
