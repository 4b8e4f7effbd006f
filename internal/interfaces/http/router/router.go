// Package router 提供 HTTP 路由配置
package router

import (
	"collab-novel-api/internal/config"
	"collab-novel-api/internal/interfaces/http/handler"
	"collab-novel-api/internal/interfaces/http/middleware"
	"collab-novel-api/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Health *handler.HealthHandler
	Auth   *handler.AuthHandler
	Story  *handler.StoryHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	jwt      *utils.JWTManager
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers, jwt *utils.JWTManager) *Router {
	// 设置 Gin 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		handlers: handlers,
		jwt:      jwt,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// 追踪中间件
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	r.engine.Use(middleware.AccessLog(middleware.DefaultSkipPaths...))

	// 指标中间件
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	// CORS 中间件
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	if h := r.handlers.Health; h != nil {
		r.engine.GET("/health", h.Health)
		r.engine.GET("/health/ready", h.Ready)
		r.engine.GET("/health/live", h.Live)
	}

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 账号端点不需要认证
	RegisterAccountRoutes(r.engine, r.handlers.Auth)

	v1 := r.engine.Group("/api/v1")
	v1.Use(middleware.Auth(middleware.AuthConfig{
		Enabled: r.cfg.Security.AuthEnabled,
		JWT:     r.jwt,
		BasicAuth: middleware.BasicAuthAccount{
			Enabled:  r.cfg.Security.BasicAuth.Enabled,
			Username: r.cfg.Security.BasicAuth.Username,
			Password: r.cfg.Security.BasicAuth.Password,
		},
	}))
	RegisterV1Routes(v1, r.handlers.Story)
}
