// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"fmt"
	"os"

	"collab-novel-api/internal/application/account"
	"collab-novel-api/internal/application/generation"
	"collab-novel-api/internal/application/novel"
	"collab-novel-api/internal/config"
	"collab-novel-api/internal/domain/repository"
	"collab-novel-api/internal/infrastructure/llm"
	"collab-novel-api/internal/infrastructure/messaging"
	"collab-novel-api/internal/infrastructure/persistence/postgres"
	"collab-novel-api/internal/infrastructure/persistence/redis"
	"collab-novel-api/internal/interfaces/http/handler"
	"collab-novel-api/internal/workflow/prompt"
	"collab-novel-api/pkg/logger"
	"collab-novel-api/pkg/utils"
)

// WorkerDeps 事件消费进程依赖
type WorkerDeps struct {
	Consumer   *messaging.Consumer
	Cache      *redis.LatestIterationCache
	Iterations repository.NovelIterationRepository
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClientOptional API 进程可选 Redis（不可达时禁用缓存与事件，不阻塞启动）
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Enabled && !cfg.Messaging.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, cache and events disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideLatestIterationCache 缓存未启用时返回 nil
func ProvideLatestIterationCache(client *redis.Client, cfg *config.Config) *redis.LatestIterationCache {
	if client == nil || !cfg.Cache.Enabled {
		return nil
	}
	return redis.NewLatestIterationCache(redis.NewCache(client), cfg.Cache.LatestIterationTTL)
}

// ProvideMessagingProducer 消息未启用时返回 nil
func ProvideMessagingProducer(client *redis.Client, cfg *config.Config) *messaging.Producer {
	if client == nil || !cfg.Messaging.Enabled {
		return nil
	}
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(client.Redis(), messaging.Stream(cfg.Messaging.RedisStream.Stream), maxLen)
}

// ProvideJWTManager 提供 JWT 管理器
func ProvideJWTManager(cfg *config.Config) *utils.JWTManager {
	return utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer, cfg.Security.JWT.Expiration)
}

// ProvideGenerationClient 按默认提供商构建带重试的生成客户端
func ProvideGenerationClient(cfg *config.Config) (*generation.Client, error) {
	completer, err := llm.NewCompleter(&cfg.LLM, llm.NewEinoFactory(&cfg.LLM), prompt.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("failed to create completer: %w", err)
	}
	return generation.NewClient(completer, generation.Config{
		Provider:    cfg.LLM.DefaultProvider,
		MaxAttempts: cfg.LLM.Retry.MaxAttempts,
		Delay:       cfg.LLM.Retry.Delay,
	}), nil
}

// ProvideNovelService 组装小说服务，可选依赖为 nil 时不注入，避免带类型的 nil 接口
func ProvideNovelService(
	cfg *config.Config,
	txm repository.Transactor,
	inputs repository.StoryInputRepository,
	iterations repository.NovelIterationRepository,
	feedback repository.FeedbackRepository,
	gen *generation.Client,
	cache *redis.LatestIterationCache,
	producer *messaging.Producer,
) *novel.Service {
	deps := novel.Deps{
		Transactor:       txm,
		StoryInputs:      inputs,
		Iterations:       iterations,
		Feedback:         feedback,
		Generator:        gen,
		ChapterMaxTokens: cfg.LLM.ChapterMaxTokens,
	}
	if cache != nil {
		deps.Cache = cache
	}
	if producer != nil {
		deps.Events = producer
	}
	return novel.NewService(deps)
}

// ProvideAccountService 组装账号服务
func ProvideAccountService(
	txm repository.Transactor,
	users repository.UserRepository,
	jwt *utils.JWTManager,
	producer *messaging.Producer,
) *account.Service {
	var events account.EventPublisher
	if producer != nil {
		events = producer
	}
	return account.NewService(txm, users, jwt, events)
}

// ProvideHealthHandler Redis 未启用时不参与就绪检查
func ProvideHealthHandler(pg *postgres.Client, rc *redis.Client) *handler.HealthHandler {
	var redisChecker handler.HealthChecker
	if rc != nil {
		redisChecker = rc
	}
	return handler.NewHealthHandler(pg, redisChecker)
}

// ProvideEventConsumer 提供事件消费者
func ProvideEventConsumer(client *redis.Client, cfg *config.Config) *messaging.Consumer {
	rs := cfg.Messaging.RedisStream
	hostname, _ := os.Hostname()
	return messaging.NewConsumer(client.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.Stream(rs.Stream),
		Group:         rs.ConsumerGroup,
		ConsumerName:  fmt.Sprintf("event-worker-%s-%d", hostname, os.Getpid()),
		BatchSize:     rs.BatchSize,
		BlockTimeout:  rs.BlockTimeout,
		ClaimInterval: rs.ClaimInterval,
		RetryLimit:    rs.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    rs.RetryBackoff.Initial,
			Max:        rs.RetryBackoff.Max,
			Multiplier: rs.RetryBackoff.Multiplier,
		},
	})
}

// ProvideWorkerIterationCache 消费进程总是刷新缓存
func ProvideWorkerIterationCache(client *redis.Client, cfg *config.Config) *redis.LatestIterationCache {
	return redis.NewLatestIterationCache(redis.NewCache(client), cfg.Cache.LatestIterationTTL)
}
