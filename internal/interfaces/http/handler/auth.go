package handler

import (
	"github.com/gin-gonic/gin"

	"collab-novel-api/internal/application/account"
	"collab-novel-api/internal/interfaces/http/dto"
)

// AuthHandler 注册与登录处理器
type AuthHandler struct {
	accounts *account.Service
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(accounts *account.Service) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Signup 注册
// @Summary 用户注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.SignupRequest true "注册信息"
// @Success 201 {object} dto.Response[dto.SignupResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /users [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.accounts.Signup(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.CreatedWithMessage(c, "User created successfully.", dto.ToSignupResponse(user))
}

// Login 登录
// @Summary 用户登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.Response[dto.LoginResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /sessions [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.Success(c, dto.NewLoginResponse(session.Token, session.ExpiresIn, session.User.ID))
}
