// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"collab-novel-api/internal/interfaces/http/dto"
	"collab-novel-api/internal/interfaces/http/middleware"
)

// bindJSON 解析请求体，失败时写入 400 并返回 false
// 空请求体按空对象处理，由业务校验报告缺失字段
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// resolveUserID 请求体未携带 user_id 时使用已认证用户
func resolveUserID(c *gin.Context, fromBody *string) *string {
	if fromBody != nil && *fromBody != "" {
		return fromBody
	}
	id := middleware.GetUserID(c.Request.Context())
	if id == "" || id == middleware.AdminSubject {
		return nil
	}
	return &id
}
