package novel

import (
	"context"
	"strings"
	"unicode/utf8"

	"collab-novel-api/internal/domain/entity"
	"collab-novel-api/internal/infrastructure/messaging"
	apperrors "collab-novel-api/pkg/errors"
	"collab-novel-api/pkg/metrics"
)

// SubmitFeedback 保存读者反馈
func (s *Service) SubmitFeedback(ctx context.Context, text string, userID *string) (*entity.Feedback, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.MissingField("feedback")
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	fb := entity.NewFeedback(text)
	fb.UserID = userID

	err := s.txm.WithTransaction(ctx, func(ctx context.Context) error {
		return s.feedback.Create(ctx, fb)
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to record feedback")
	}

	metrics.FeedbackCreatedTotal.Inc()
	s.publish(ctx, messaging.EventFeedbackSubmitted, messaging.FeedbackSubmittedEvent{
		FeedbackID: fb.ID,
		UserID:     derefString(userID),
		Length:     utf8.RuneCountInString(text),
	})
	return fb, nil
}
