package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"collab-novel-api/internal/domain/entity"
	"collab-novel-api/internal/domain/repository"
)

// NovelIterationRepository 小说迭代仓储实现
type NovelIterationRepository struct {
	client *Client
}

// NewNovelIterationRepository 创建小说迭代仓储
func NewNovelIterationRepository(client *Client) *NovelIterationRepository {
	return &NovelIterationRepository{client: client}
}

// Create 追加迭代
func (r *NovelIterationRepository) Create(ctx context.Context, iteration *entity.NovelIteration) error {
	ctx, span := tracer.Start(ctx, "postgres.NovelIterationRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(iteration).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create novel iteration: %w", translateError(err))
	}
	return nil
}

// GetLatest 获取最近创建的迭代，同一时间戳时取序号大者
func (r *NovelIterationRepository) GetLatest(ctx context.Context) (*entity.NovelIteration, error) {
	ctx, span := tracer.Start(ctx, "postgres.NovelIterationRepository.GetLatest")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var iteration entity.NovelIteration
	err := db.Order("created_at DESC").Order("iteration_number DESC").Take(&iteration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get latest novel iteration: %w", err)
	}
	return &iteration, nil
}

// MaxIterationNumber 获取当前最大序号
func (r *NovelIterationRepository) MaxIterationNumber(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "postgres.NovelIterationRepository.MaxIterationNumber")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var maxNumber int
	if err := db.Model(&entity.NovelIteration{}).Select("COALESCE(MAX(iteration_number), 0)").Scan(&maxNumber).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to get max iteration number: %w", err)
	}
	return maxNumber, nil
}

// List 按创建时间倒序分页
func (r *NovelIterationRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.NovelIteration], error) {
	ctx, span := tracer.Start(ctx, "postgres.NovelIterationRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var total int64
	if err := db.Model(&entity.NovelIteration{}).Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count novel iterations: %w", err)
	}

	var items []*entity.NovelIteration
	if err := db.Order("created_at DESC").Order("iteration_number DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&items).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list novel iterations: %w", err)
	}

	return repository.NewPagedResult(items, total, pagination), nil
}
