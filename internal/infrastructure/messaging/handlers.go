package messaging

import (
	"context"
	"fmt"

	"collab-novel-api/internal/domain/entity"
	"collab-novel-api/pkg/logger"
)

// LatestStore 最新迭代缓存写入
type LatestStore interface {
	Store(ctx context.Context, it *entity.NovelIteration) error
}

// LatestSource 最新迭代读取
type LatestSource interface {
	GetLatest(ctx context.Context) (*entity.NovelIteration, error)
}

// EventHandlers event-worker 的事件处理器
type EventHandlers struct {
	cache  LatestStore
	source LatestSource
}

// NewEventHandlers 创建事件处理器
func NewEventHandlers(cache LatestStore, source LatestSource) *EventHandlers {
	return &EventHandlers{cache: cache, source: source}
}

// Register 向消费者注册全部事件类型
func (h *EventHandlers) Register(c *Consumer) {
	c.RegisterHandler(EventIterationCreated, h.HandleIterationCreated)
	c.RegisterHandler(EventStoryInputCreated, h.HandleStoryInputCreated)
	c.RegisterHandler(EventFeedbackSubmitted, h.HandleFeedbackSubmitted)
	c.RegisterHandler(EventUserRegistered, h.HandleUserRegistered)
}

// HandleIterationCreated 以数据库中的最新迭代刷新缓存
// 事件可能乱序，始终回源读取
func (h *EventHandlers) HandleIterationCreated(ctx context.Context, msg *Message) error {
	var ev IterationCreatedEvent
	if err := msg.UnmarshalPayload(&ev); err != nil {
		return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}

	latest, err := h.source.GetLatest(ctx)
	if err != nil {
		return fmt.Errorf("failed to load latest iteration: %w", err)
	}
	if latest == nil {
		return nil
	}
	if err := h.cache.Store(ctx, latest); err != nil {
		return fmt.Errorf("failed to refresh latest iteration cache: %w", err)
	}

	logger.Info(ctx, "iteration created",
		"iteration_id", ev.IterationID,
		"iteration_number", ev.IterationNumber,
		"word_count", ev.WordCount,
		"cached_iteration_number", latest.IterationNumber,
	)
	return nil
}

// HandleStoryInputCreated 审计日志
func (h *EventHandlers) HandleStoryInputCreated(ctx context.Context, msg *Message) error {
	var ev StoryInputCreatedEvent
	if err := msg.UnmarshalPayload(&ev); err != nil {
		return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	logger.Info(ctx, "story input recorded", "input_id", ev.InputID, "owner", ev.UserID)
	return nil
}

// HandleFeedbackSubmitted 审计日志
func (h *EventHandlers) HandleFeedbackSubmitted(ctx context.Context, msg *Message) error {
	var ev FeedbackSubmittedEvent
	if err := msg.UnmarshalPayload(&ev); err != nil {
		return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	logger.Info(ctx, "feedback submitted", "feedback_id", ev.FeedbackID, "owner", ev.UserID, "length", ev.Length)
	return nil
}

// HandleUserRegistered 审计日志
func (h *EventHandlers) HandleUserRegistered(ctx context.Context, msg *Message) error {
	var ev UserRegisteredEvent
	if err := msg.UnmarshalPayload(&ev); err != nil {
		return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	logger.Info(ctx, "user registered", "registered_user_id", ev.UserID, "username", ev.Username)
	return nil
}
