package repository

import (
	"context"

	"collab-novel-api/internal/domain/entity"
)

// NovelIterationRepository 小说迭代仓储接口
type NovelIterationRepository interface {
	// Create 追加一条迭代，序号冲突时返回 ErrDuplicateKey
	Create(ctx context.Context, iteration *entity.NovelIteration) error

	// GetLatest 获取最近创建的迭代，没有时返回 nil, nil
	GetLatest(ctx context.Context) (*entity.NovelIteration, error)

	// MaxIterationNumber 获取当前最大序号，没有迭代时为 0
	MaxIterationNumber(ctx context.Context) (int, error)

	// List 按创建时间倒序分页
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.NovelIteration], error)
}
