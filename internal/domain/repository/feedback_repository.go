package repository

import (
	"context"

	"collab-novel-api/internal/domain/entity"
)

// FeedbackRepository 反馈仓储接口
type FeedbackRepository interface {
	// Create 保存反馈
	Create(ctx context.Context, feedback *entity.Feedback) error
}
