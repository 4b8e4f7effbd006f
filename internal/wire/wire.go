//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"collab-novel-api/internal/config"
	"collab-novel-api/internal/domain/repository"
	"collab-novel-api/internal/infrastructure/persistence/postgres"
	"collab-novel-api/internal/interfaces/http/handler"
	"collab-novel-api/internal/interfaces/http/router"
)

// InitializeApp 初始化 API 进程（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		OptionalRedisSet,
		ServiceSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeWorker 初始化事件消费进程
func InitializeWorker(ctx context.Context, cfg *config.Config) (*WorkerDeps, func(), error) {
	wire.Build(
		RepoSet,
		ProvideRedisClient,
		ProvideEventConsumer,
		ProvideWorkerIterationCache,
		wire.Struct(new(WorkerDeps), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewUserRepository,
	postgres.NewStoryInputRepository,
	postgres.NewNovelIterationRepository,
	postgres.NewFeedbackRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	// 接口绑定
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(repository.StoryInputRepository), new(*postgres.StoryInputRepository)),
	wire.Bind(new(repository.NovelIterationRepository), new(*postgres.NovelIterationRepository)),
	wire.Bind(new(repository.FeedbackRepository), new(*postgres.FeedbackRepository)),
)

// OptionalRedisSet 可选的缓存与事件
var OptionalRedisSet = wire.NewSet(
	ProvideRedisClientOptional,
	ProvideLatestIterationCache,
	ProvideMessagingProducer,
)

// ServiceSet 应用服务集合
var ServiceSet = wire.NewSet(
	ProvideJWTManager,
	ProvideGenerationClient,
	ProvideNovelService,
	ProvideAccountService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewAuthHandler,
	handler.NewStoryHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
