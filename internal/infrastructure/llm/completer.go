package llm

import (
	"fmt"

	"collab-novel-api/internal/application/generation"
	"collab-novel-api/internal/config"
	"collab-novel-api/internal/workflow/prompt"
)

// NewCompleter 按默认提供商的 api 类型选择补全实现
func NewCompleter(cfg *config.LLMConfig, factory ChatModelFactory, templates *prompt.Registry) (generation.Completer, error) {
	name := cfg.DefaultProvider
	providerCfg, ok := cfg.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}

	switch providerCfg.API {
	case config.APICompletion:
		return NewCompletionClient(name, providerCfg), nil
	case config.APIChat, "":
		return NewChatCompleter(factory, templates, name, providerCfg.Model), nil
	default:
		return nil, fmt.Errorf("provider %s: unsupported api %q", name, providerCfg.API)
	}
}
