package router

import (
	"collab-novel-api/internal/interfaces/http/handler"

	"github.com/gin-gonic/gin"
)

// RegisterAccountRoutes 注册账号路由
func RegisterAccountRoutes(r gin.IRouter, authHandler *handler.AuthHandler) {
	if authHandler == nil {
		return
	}
	r.POST("/users", authHandler.Signup)
	r.POST("/sessions", authHandler.Login)
}

// RegisterV1Routes 注册 v1 版本路由
// 写接口的事务由服务层开启，提交成功后才写响应和发布事件
func RegisterV1Routes(v1 *gin.RouterGroup, storyHandler *handler.StoryHandler) {
	if storyHandler == nil {
		return
	}

	v1.POST("/user-inputs", storyHandler.CreateUserInput)
	v1.POST("/feedback", storyHandler.SubmitFeedback)

	v1.POST("/generate-content", storyHandler.GenerateContent)
	v1.POST("/iterate-novel", storyHandler.IterateNovel)
	v1.GET("/latest-iteration", storyHandler.LatestIteration)
	v1.GET("/iterations", storyHandler.ListIterations)

	chapters := v1.Group("/chapters")
	{
		chapters.POST("/generate", storyHandler.GenerateChapter)
	}
}
