package repository

import (
	"context"

	"collab-novel-api/internal/domain/entity"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	// Create 创建用户，用户名或邮箱冲突时返回 ErrDuplicateKey
	Create(ctx context.Context, user *entity.User) error

	// GetByID 根据 ID 获取用户，不存在返回 nil, nil
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// GetByEmail 根据邮箱获取用户，不存在返回 nil, nil
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// ExistsByUsername 检查用户名是否存在
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail 检查邮箱是否存在
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
