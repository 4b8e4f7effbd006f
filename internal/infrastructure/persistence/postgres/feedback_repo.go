package postgres

import (
	"context"
	"fmt"

	"collab-novel-api/internal/domain/entity"
)

// FeedbackRepository 反馈仓储实现
type FeedbackRepository struct {
	client *Client
}

// NewFeedbackRepository 创建反馈仓储
func NewFeedbackRepository(client *Client) *FeedbackRepository {
	return &FeedbackRepository{client: client}
}

// Create 保存反馈
func (r *FeedbackRepository) Create(ctx context.Context, feedback *entity.Feedback) error {
	ctx, span := tracer.Start(ctx, "postgres.FeedbackRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(feedback).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create feedback: %w", translateError(err))
	}
	return nil
}
