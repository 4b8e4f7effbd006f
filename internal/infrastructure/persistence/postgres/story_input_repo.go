package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"collab-novel-api/internal/domain/entity"
)

// StoryInputRepository 故事参数仓储实现
type StoryInputRepository struct {
	client *Client
}

// NewStoryInputRepository 创建故事参数仓储
func NewStoryInputRepository(client *Client) *StoryInputRepository {
	return &StoryInputRepository{client: client}
}

// Create 保存故事参数
func (r *StoryInputRepository) Create(ctx context.Context, input *entity.StoryInput) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryInputRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(input).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create story input: %w", translateError(err))
	}
	return nil
}

// GetByID 根据 ID 获取故事参数
func (r *StoryInputRepository) GetByID(ctx context.Context, id string) (*entity.StoryInput, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryInputRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var input entity.StoryInput
	if err := db.Where("id = ?", id).First(&input).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get story input: %w", err)
	}
	return &input, nil
}
