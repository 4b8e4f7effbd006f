package novel

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"collab-novel-api/internal/domain/entity"
	"collab-novel-api/internal/infrastructure/messaging"
	apperrors "collab-novel-api/pkg/errors"
	"collab-novel-api/pkg/metrics"
)

// StoryInputCommand 提交故事参数
type StoryInputCommand struct {
	UserID                *string
	Plot                  string
	Setting               string
	Theme                 string
	Conflict              string
	AdditionalPreferences map[string]any
}

// Validate 按 plot、setting、theme、conflict 顺序返回第一个缺失字段，再校验 user_id
func (c StoryInputCommand) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"plot", c.Plot},
		{"setting", c.Setting},
		{"theme", c.Theme},
		{"conflict", c.Conflict},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return apperrors.MissingField(f.name)
		}
	}
	return validateUserID(c.UserID)
}

// validateUserID user_id 列为 UUID 类型，非法值须在写库前拒绝
func validateUserID(userID *string) error {
	if userID == nil {
		return nil
	}
	if _, err := uuid.Parse(*userID); err != nil {
		return apperrors.Validation("user_id", "Invalid user_id")
	}
	return nil
}

// CreateStoryInput 校验并保存故事参数
func (s *Service) CreateStoryInput(ctx context.Context, cmd StoryInputCommand) (*entity.StoryInput, error) {
	if err := cmd.Validate(); err != nil {
		metrics.ValidationTotal.WithLabelValues("story_input", "rejected").Inc()
		return nil, err
	}
	metrics.ValidationTotal.WithLabelValues("story_input", "accepted").Inc()

	input := entity.NewStoryInput(cmd.Plot, cmd.Setting, cmd.Theme, cmd.Conflict)
	input.UserID = cmd.UserID
	input.AdditionalPreferences = cmd.AdditionalPreferences

	err := s.txm.WithTransaction(ctx, func(ctx context.Context) error {
		return s.inputs.Create(ctx, input)
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to record user inputs")
	}

	metrics.StoryInputsCreatedTotal.Inc()
	s.publish(ctx, messaging.EventStoryInputCreated, messaging.StoryInputCreatedEvent{
		InputID: input.ID,
		UserID:  derefString(input.UserID),
	})
	return input, nil
}
