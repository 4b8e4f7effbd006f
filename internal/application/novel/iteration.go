package novel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"collab-novel-api/internal/domain/entity"
	"collab-novel-api/internal/domain/repository"
	"collab-novel-api/internal/infrastructure/messaging"
	apperrors "collab-novel-api/pkg/errors"
	"collab-novel-api/pkg/logger"
	"collab-novel-api/pkg/metrics"
)

// BuildIterationPrompt 将当前最新迭代与新输入拼接为提示词
func BuildIterationPrompt(latest *entity.NovelIteration, input string) string {
	input = strings.TrimSpace(input)
	if latest == nil || strings.TrimSpace(latest.Content) == "" {
		return input
	}
	return fmt.Sprintf("Current story:\n%s\n\nContinue the story with:\n%s", strings.TrimSpace(latest.Content), input)
}

// IterateNovel 以最新迭代为上下文生成下一段并追加
func (s *Service) IterateNovel(ctx context.Context, input string) (*entity.NovelIteration, error) {
	if strings.TrimSpace(input) == "" {
		return nil, inputRequired()
	}

	latest, err := s.iterations.GetLatest(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load latest iteration")
	}

	// 生成期间不持有事务
	content, err := s.generator.Generate(ctx, BuildIterationPrompt(latest, input))
	if err != nil {
		return nil, apperrors.ErrGenerationFailed.WithError(err)
	}

	var created *entity.NovelIteration
	err = s.txm.WithTransaction(ctx, func(ctx context.Context) error {
		maxNumber, err := s.iterations.MaxIterationNumber(ctx)
		if err != nil {
			return err
		}
		created = entity.NewNovelIteration(maxNumber, content)
		return s.iterations.Create(ctx, created)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperrors.ErrConflict.
				WithDetail("another iteration was appended concurrently, retry the request").
				WithError(err)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to save iteration")
	}

	metrics.IterationsCreatedTotal.Inc()
	metrics.IterationWordCount.Observe(float64(created.WordCount()))

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.Warn(ctx, "failed to invalidate latest iteration cache", "error", err.Error())
		}
	}
	s.publish(ctx, messaging.EventIterationCreated, messaging.IterationCreatedEvent{
		IterationID:     created.ID,
		IterationNumber: created.IterationNumber,
		WordCount:       created.WordCount(),
		CreatedAt:       created.CreatedAt,
	})

	return created, nil
}

// LatestIteration 返回最新迭代，没有时返回 ErrIterationNotFound
func (s *Service) LatestIteration(ctx context.Context) (*entity.NovelIteration, error) {
	var (
		latest *entity.NovelIteration
		err    error
	)
	if s.cache != nil {
		latest, err = s.cache.Latest(ctx, s.iterations.GetLatest)
	} else {
		latest, err = s.iterations.GetLatest(ctx)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load latest iteration")
	}
	if latest == nil {
		return nil, apperrors.ErrIterationNotFound
	}
	return latest, nil
}

// ListIterations 分页返回迭代历史，最新在前
func (s *Service) ListIterations(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.NovelIteration], error) {
	page, err := s.iterations.List(ctx, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list iterations")
	}
	return page, nil
}

func inputRequired() error {
	return apperrors.Validation("input", "Input is required.")
}
