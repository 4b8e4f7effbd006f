package dto

import (
	"time"

	"collab-novel-api/internal/domain/entity"
)

// SignupRequest 注册请求，字段规则由校验模块负责
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupResponse 注册响应
type SignupResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"` // 秒
	UserID    string `json:"user_id"`
}

// ToSignupResponse 将用户实体转换为注册响应
func ToSignupResponse(u *entity.User) *SignupResponse {
	if u == nil {
		return nil
	}
	return &SignupResponse{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// NewLoginResponse 构造登录响应
func NewLoginResponse(token string, ttl time.Duration, userID string) *LoginResponse {
	return &LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(ttl.Seconds()),
		UserID:    userID,
	}
}
