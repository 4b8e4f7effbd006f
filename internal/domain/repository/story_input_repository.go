package repository

import (
	"context"

	"collab-novel-api/internal/domain/entity"
)

// StoryInputRepository 故事参数仓储接口
type StoryInputRepository interface {
	// Create 保存故事参数
	Create(ctx context.Context, input *entity.StoryInput) error

	// GetByID 根据 ID 获取，不存在返回 nil, nil
	GetByID(ctx context.Context, id string) (*entity.StoryInput, error)
}
