// Package novel 编排故事参数、迭代、章节与反馈的业务流程
package novel

import (
	"context"

	"collab-novel-api/internal/application/generation"
	"collab-novel-api/internal/domain/entity"
	"collab-novel-api/internal/domain/repository"
	"collab-novel-api/pkg/logger"
)

// Generator 文本生成依赖
type Generator interface {
	Generate(ctx context.Context, prompt string, opts ...generation.Option) (string, error)
}

// IterationCache 最新迭代读缓存
type IterationCache interface {
	Latest(ctx context.Context, load func(ctx context.Context) (*entity.NovelIteration, error)) (*entity.NovelIteration, error)
	Invalidate(ctx context.Context) error
}

// EventPublisher 领域事件发布
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, payload any) (string, error)
}

// Service 小说业务服务
type Service struct {
	txm        repository.Transactor
	inputs     repository.StoryInputRepository
	iterations repository.NovelIterationRepository
	feedback   repository.FeedbackRepository
	generator  Generator
	cache      IterationCache
	events     EventPublisher

	chapterMaxTokens int
}

// Deps 服务依赖，Cache 与 Events 可为空
type Deps struct {
	Transactor       repository.Transactor
	StoryInputs      repository.StoryInputRepository
	Iterations       repository.NovelIterationRepository
	Feedback         repository.FeedbackRepository
	Generator        Generator
	Cache            IterationCache
	Events           EventPublisher
	ChapterMaxTokens int
}

// NewService 创建小说业务服务
func NewService(deps Deps) *Service {
	if deps.ChapterMaxTokens <= 0 {
		deps.ChapterMaxTokens = 1024
	}
	return &Service{
		txm:              deps.Transactor,
		inputs:           deps.StoryInputs,
		iterations:       deps.Iterations,
		feedback:         deps.Feedback,
		generator:        deps.Generator,
		cache:            deps.Cache,
		events:           deps.Events,
		chapterMaxTokens: deps.ChapterMaxTokens,
	}
}

// publish 尽力投递事件，失败只记录日志
func (s *Service) publish(ctx context.Context, eventType string, payload any) {
	if s.events == nil {
		return
	}
	if _, err := s.events.PublishEvent(ctx, eventType, payload); err != nil {
		logger.Warn(ctx, "failed to publish event", "type", eventType, "error", err.Error())
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
