// Package account 处理注册与登录
package account

import (
	"context"
	"errors"
	"time"

	"collab-novel-api/internal/domain/entity"
	"collab-novel-api/internal/domain/repository"
	"collab-novel-api/internal/domain/validation"
	"collab-novel-api/internal/infrastructure/messaging"
	apperrors "collab-novel-api/pkg/errors"
	"collab-novel-api/pkg/logger"
	"collab-novel-api/pkg/metrics"
	"collab-novel-api/pkg/utils"
)

// EventPublisher 领域事件发布
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, payload any) (string, error)
}

// Session 登录结果
type Session struct {
	Token     string
	ExpiresIn time.Duration
	User      *entity.User
}

// Service 账号服务
type Service struct {
	txm    repository.Transactor
	users  repository.UserRepository
	jwt    *utils.JWTManager
	events EventPublisher
}

// NewService 创建账号服务，events 可为空
func NewService(txm repository.Transactor, users repository.UserRepository, jwt *utils.JWTManager, events EventPublisher) *Service {
	return &Service{
		txm:    txm,
		users:  users,
		jwt:    jwt,
		events: events,
	}
}

// Signup 校验、查重、哈希密码并创建用户
func (s *Service) Signup(ctx context.Context, username, email, password string) (*entity.User, error) {
	if err := validation.ValidateSignup(username, email, password); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	user := entity.NewUser(username, email)
	if err := user.SetPassword(password); err != nil {
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to hash password")
	}

	err := s.txm.WithTransaction(ctx, func(ctx context.Context) error {
		taken, err := s.users.ExistsByUsername(ctx, user.Username)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.ErrDuplicateUser.WithField("username").WithDetail("username already exists")
		}

		taken, err = s.users.ExistsByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.ErrDuplicateUser.WithField("email").WithDetail("email already exists")
		}

		return s.users.Create(ctx, user)
	})
	if err != nil {
		switch {
		case apperrors.IsAppError(err):
			metrics.SignupsTotal.WithLabelValues("conflict").Inc()
			return nil, err
		case errors.Is(err, repository.ErrDuplicateKey):
			// 查重与写入之间被并发注册抢先
			metrics.SignupsTotal.WithLabelValues("conflict").Inc()
			return nil, apperrors.ErrDuplicateUser.WithError(err)
		default:
			metrics.SignupsTotal.WithLabelValues("error").Inc()
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create user")
		}
	}

	metrics.SignupsTotal.WithLabelValues("success").Inc()
	if s.events != nil {
		if _, err := s.events.PublishEvent(ctx, messaging.EventUserRegistered, messaging.UserRegisteredEvent{
			UserID:   user.ID,
			Username: user.Username,
		}); err != nil {
			logger.Warn(ctx, "failed to publish event", "type", messaging.EventUserRegistered, "error", err.Error())
		}
	}
	return user, nil
}

// Login 校验邮箱密码并签发 JWT
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if !validation.ValidateEmailAddress(email) {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, apperrors.Validation("email", "Invalid email address")
	}
	if password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, apperrors.MissingField("password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "login failed")
	}
	if user == nil || !user.CheckPassword(password) {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to issue token")
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &Session{Token: token, ExpiresIn: s.jwt.TTL(), User: user}, nil
}
