//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"collab-novel-api/internal/config"
	"collab-novel-api/internal/domain/entity"
	"collab-novel-api/internal/domain/repository"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	client    *Client
	users     *UserRepository
	inputs    *StoryInputRepository
	iters     *NovelIterationRepository
	feedback  *FeedbackRepository
	txm       *TxManager
}

func TestPostgresIntegration(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.container, err = tcpostgres.Run(s.ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("collab_novel_test"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	s.Require().NoError(err)

	connStr, err := s.container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	migrator, err := NewMigrator(connStr)
	s.Require().NoError(err)
	s.Require().NoError(migrator.Up())
	// 重复执行应为无操作
	s.Require().NoError(migrator.Up())
	version, dirty, err := migrator.Version()
	s.Require().NoError(err)
	s.False(dirty)
	s.EqualValues(4, version)
	s.Require().NoError(migrator.Close())

	s.client, err = NewClient(&config.PostgresConfig{
		URL:          connStr,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	s.Require().NoError(err)

	s.users = NewUserRepository(s.client)
	s.inputs = NewStoryInputRepository(s.client)
	s.iters = NewNovelIterationRepository(s.client)
	s.feedback = NewFeedbackRepository(s.client)
	s.txm = NewTxManager(s.client)
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	s.Require().NoError(s.client.DB().Exec(
		"TRUNCATE users, user_inputs, novel_iterations, feedback").Error)
}

func (s *PostgresIntegrationSuite) TestUserUniqueness() {
	u := entity.NewUser("validuser", "valid@example.com")
	s.Require().NoError(u.SetPassword("Validpass1"))
	s.Require().NoError(s.users.Create(s.ctx, u))

	dup := entity.NewUser("validuser", "other@example.com")
	s.Require().NoError(dup.SetPassword("Validpass1"))
	err := s.users.Create(s.ctx, dup)
	s.ErrorIs(err, repository.ErrDuplicateKey)

	got, err := s.users.GetByEmail(s.ctx, "VALID@example.com")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.True(got.CheckPassword("Validpass1"))

	exists, err := s.users.ExistsByUsername(s.ctx, "validuser")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *PostgresIntegrationSuite) TestStoryInputRoundTrip() {
	input := entity.NewStoryInput("A hero saves the day", "A futuristic city", "Courage", "An impending disaster")
	input.AdditionalPreferences = map[string]any{"tone": "hopeful"}
	s.Require().NoError(s.inputs.Create(s.ctx, input))

	got, err := s.inputs.GetByID(s.ctx, input.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("hopeful", got.AdditionalPreferences["tone"])
}

func (s *PostgresIntegrationSuite) TestIterationsAppendAndLatest() {
	latest, err := s.iters.GetLatest(s.ctx)
	s.Require().NoError(err)
	s.Nil(latest)

	for i, content := range []string{"first", "second", "third"} {
		err := s.txm.WithTransaction(s.ctx, func(ctx context.Context) error {
			maxNumber, err := s.iters.MaxIterationNumber(ctx)
			if err != nil {
				return err
			}
			s.Equal(i, maxNumber)
			return s.iters.Create(ctx, entity.NewNovelIteration(maxNumber, content))
		})
		s.Require().NoError(err)
	}

	latest, err = s.iters.GetLatest(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(latest)
	s.Equal(3, latest.IterationNumber)
	s.Equal("third", latest.Content)

	page, err := s.iters.List(s.ctx, repository.NewPagination(1, 2))
	s.Require().NoError(err)
	s.EqualValues(3, page.Total)
	s.Len(page.Items, 2)
	s.Equal(3, page.Items[0].IterationNumber)

	err = s.iters.Create(s.ctx, entity.NewNovelIteration(2, "clash"))
	s.ErrorIs(err, repository.ErrDuplicateKey)
}

func (s *PostgresIntegrationSuite) TestTransactionRollback() {
	err := s.txm.WithTransaction(s.ctx, func(ctx context.Context) error {
		if err := s.feedback.Create(ctx, entity.NewFeedback("kept?")); err != nil {
			return err
		}
		return context.Canceled
	})
	s.ErrorIs(err, context.Canceled)

	var count int64
	require.NoError(s.T(), s.client.DB().Model(&entity.Feedback{}).Count(&count).Error)
	s.Zero(count)
}

func (s *PostgresIntegrationSuite) TestHealthCheck() {
	s.NoError(s.client.HealthCheck(s.ctx))
}
