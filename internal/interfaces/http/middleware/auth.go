// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"collab-novel-api/pkg/logger"
	"collab-novel-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthConfig 认证配置
type AuthConfig struct {
	// Enabled 是否启用认证
	Enabled bool
	// JWT 会话 Token 校验器，为空时不接受 Bearer
	JWT *utils.JWTManager
	// BasicAuth 固定管理员账号
	BasicAuth BasicAuthAccount
	// SkipPaths 跳过认证的路径前缀
	SkipPaths []string
}

// BasicAuthAccount 管理员账号
type BasicAuthAccount struct {
	Enabled  bool
	Username string
	Password string
}

// AdminSubject Basic 认证通过时注入的主体标识
const AdminSubject = "admin"

type userIDKey struct{}

// Auth 认证中间件，接受 Bearer JWT 或管理员 Basic 凭据
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 如果未启用认证，直接放行
		if !cfg.Enabled {
			c.Next()
			return
		}

		for _, path := range cfg.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, cfg, "missing authorization header")
			return
		}

		scheme, credentials, _ := strings.Cut(authHeader, " ")
		switch {
		case strings.EqualFold(scheme, "Bearer") && cfg.JWT != nil:
			claims, err := cfg.JWT.ParseToken(strings.TrimSpace(credentials))
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, utils.ErrExpiredToken) {
					msg = "token expired"
				}
				abortUnauthorized(c, cfg, msg)
				return
			}
			setUser(c, claims.UserID)

		case strings.EqualFold(scheme, "Basic") && cfg.BasicAuth.Enabled:
			username, password, ok := c.Request.BasicAuth()
			if !ok || !basicAuthMatches(cfg.BasicAuth, username, password) {
				abortUnauthorized(c, cfg, "invalid credentials")
				return
			}
			setUser(c, AdminSubject)

		default:
			abortUnauthorized(c, cfg, "invalid authorization format")
			return
		}

		c.Next()
	}
}

func basicAuthMatches(account BasicAuthAccount, username, password string) bool {
	if account.Username == "" || account.Password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(account.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(account.Password)) == 1
	return userOK && passOK
}

func setUser(c *gin.Context, userID string) {
	c.Set("user_id", userID)
	ctx := context.WithValue(c.Request.Context(), userIDKey{}, userID)
	ctx = logger.WithContext(ctx, logger.UserIDKey, userID)
	c.Request = c.Request.WithContext(ctx)
}

// GetUserID 获取已认证的主体，未认证返回空串
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey{}).(string); ok {
		return v
	}
	return ""
}

// abortUnauthorized 终止请求并返回 401
func abortUnauthorized(c *gin.Context, cfg AuthConfig, msg string) {
	if cfg.BasicAuth.Enabled {
		c.Header("WWW-Authenticate", `Basic realm="collab-novel-api"`)
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":     http.StatusUnauthorized,
		"message":  msg,
		"trace_id": c.GetString("trace_id"),
	})
}

// DefaultSkipPaths 默认跳过认证的路径
var DefaultSkipPaths = []string{
	"/health",
	"/metrics",
}
