package llm

import (
	"context"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"collab-novel-api/internal/application/generation"
	"collab-novel-api/internal/config"
	"collab-novel-api/pkg/metrics"
)

// CompletionClient 调用文本补全接口 (/v1/completions)
type CompletionClient struct {
	client      *openai.Client
	provider    string
	model       string
	maxTokens   int
	temperature float32
}

// NewCompletionClient 创建文本补全客户端
func NewCompletionClient(provider string, cfg config.ProviderConfig) *CompletionClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = openai.GPT3Dot5TurboInstruct
	}

	return &CompletionClient{
		client:      openai.NewClientWithConfig(clientCfg),
		provider:    provider,
		model:       modelName,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

// Complete 实现 generation.Completer，只取第一条候选
func (c *CompletionClient) Complete(ctx context.Context, text string, params generation.Params) (string, error) {
	req := openai.CompletionRequest{
		Model:       c.model,
		Prompt:      text,
		MaxTokens:   c.maxTokens,
		N:           1,
		Temperature: c.temperature,
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = params.MaxTokens
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}

	resp, err := c.client.CreateCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Text == "" {
		return "", ErrEmptyResponse
	}

	metrics.LLMTokensUsed.WithLabelValues(c.provider, c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(c.provider, c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	return resp.Choices[0].Text, nil
}
