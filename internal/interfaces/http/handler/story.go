package handler

import (
	"github.com/gin-gonic/gin"

	"collab-novel-api/internal/application/novel"
	"collab-novel-api/internal/interfaces/http/dto"
)

// StoryHandler 故事参数、内容生成与迭代处理器
type StoryHandler struct {
	svc *novel.Service
}

// NewStoryHandler 创建处理器
func NewStoryHandler(svc *novel.Service) *StoryHandler {
	return &StoryHandler{svc: svc}
}

// CreateUserInput 记录故事参数
// @Summary 提交故事参数
// @Tags Story
// @Accept json
// @Produce json
// @Param body body dto.StoryInputRequest true "plot/setting/theme/conflict"
// @Success 201 {object} dto.Response[dto.StoryInputResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/user-inputs [post]
func (h *StoryHandler) CreateUserInput(c *gin.Context) {
	var req dto.StoryInputRequest
	if !bindJSON(c, &req) {
		return
	}

	input, err := h.svc.CreateStoryInput(c.Request.Context(), novel.StoryInputCommand{
		UserID:                resolveUserID(c, req.UserID),
		Plot:                  req.Plot,
		Setting:               req.Setting,
		Theme:                 req.Theme,
		Conflict:              req.Conflict,
		AdditionalPreferences: req.AdditionalPreferences,
	})
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.CreatedWithMessage(c, "User inputs successfully recorded.", &dto.StoryInputResponse{InputID: input.ID})
}

// GenerateContent 对单条输入直接生成文本
// @Summary 生成内容
// @Tags Story
// @Accept json
// @Produce json
// @Param body body dto.GenerateContentRequest true "input"
// @Success 200 {object} dto.Response[dto.GenerateContentResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/generate-content [post]
func (h *StoryHandler) GenerateContent(c *gin.Context) {
	var req dto.GenerateContentRequest
	if !bindJSON(c, &req) {
		return
	}

	content, err := h.svc.GenerateContent(c.Request.Context(), req.Input)
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.Success(c, &dto.GenerateContentResponse{Content: content})
}

// IterateNovel 基于最新迭代生成并追加下一段
// @Summary 迭代小说
// @Tags Story
// @Accept json
// @Produce json
// @Param body body dto.IterateNovelRequest true "input"
// @Success 201 {object} dto.Response[dto.IterationResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/iterate-novel [post]
func (h *StoryHandler) IterateNovel(c *gin.Context) {
	var req dto.IterateNovelRequest
	if !bindJSON(c, &req) {
		return
	}

	it, err := h.svc.IterateNovel(c.Request.Context(), req.Input)
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.CreatedWithMessage(c, "Novel iteration created.", dto.ToIterationResponse(it, true))
}

// LatestIteration 获取最新迭代
// @Summary 最新迭代
// @Tags Story
// @Produce json
// @Success 200 {object} dto.Response[dto.IterationResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/latest-iteration [get]
func (h *StoryHandler) LatestIteration(c *gin.Context) {
	it, err := h.svc.LatestIteration(c.Request.Context())
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.SuccessWithMessage(c, "Latest iteration retrieved successfully.", dto.ToIterationResponse(it, true))
}

// ListIterations 分页获取迭代历史
// @Summary 迭代历史
// @Tags Story
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[[]dto.IterationResponse]
// @Router /api/v1/iterations [get]
func (h *StoryHandler) ListIterations(c *gin.Context) {
	pageReq := dto.BindPage(c)

	result, err := h.svc.ListIterations(c.Request.Context(), pageReq.ToPagination())
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.SuccessWithPage(c, dto.ToIterationResponses(result.Items),
		dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// GenerateChapter 生成章节草稿
// @Summary 生成章节
// @Tags Story
// @Accept json
// @Produce json
// @Param body body dto.ChapterRequest true "title/previous_content/user_prompts"
// @Success 201 {object} dto.Response[entity.ChapterDraft]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/chapters/generate [post]
func (h *StoryHandler) GenerateChapter(c *gin.Context) {
	var req dto.ChapterRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := h.svc.GenerateChapter(c.Request.Context(), novel.ChapterCommand{
		Title:           req.Title,
		PreviousContent: req.PreviousContent,
		UserPrompts:     req.UserPrompts,
	})
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.Created(c, draft)
}

// SubmitFeedback 提交反馈
// @Summary 提交反馈
// @Tags Story
// @Accept json
// @Produce json
// @Param body body dto.FeedbackRequest true "feedback"
// @Success 201 {object} dto.Response[dto.FeedbackResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/feedback [post]
func (h *StoryHandler) SubmitFeedback(c *gin.Context) {
	var req dto.FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	fb, err := h.svc.SubmitFeedback(c.Request.Context(), req.Feedback, resolveUserID(c, req.UserID))
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.CreatedWithMessage(c, "Feedback successfully recorded.", &dto.FeedbackResponse{FeedbackID: fb.ID})
}
