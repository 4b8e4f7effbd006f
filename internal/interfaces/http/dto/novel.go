package dto

import (
	"time"

	"collab-novel-api/internal/domain/entity"
)

// StoryInputRequest 故事参数请求
type StoryInputRequest struct {
	UserID                *string        `json:"user_id"`
	Plot                  string         `json:"plot"`
	Setting               string         `json:"setting"`
	Theme                 string         `json:"theme"`
	Conflict              string         `json:"conflict"`
	AdditionalPreferences map[string]any `json:"additional_preferences"`
}

// StoryInputResponse 故事参数响应
type StoryInputResponse struct {
	InputID string `json:"input_id"`
}

// GenerateContentRequest 直接生成请求
type GenerateContentRequest struct {
	Input string `json:"input"`
}

// GenerateContentResponse 直接生成响应
type GenerateContentResponse struct {
	Content string `json:"content"`
}

// IterateNovelRequest 迭代请求
type IterateNovelRequest struct {
	Input string `json:"input"`
}

// IterationResponse 迭代
type IterationResponse struct {
	IterationID     string    `json:"iteration_id"`
	IterationNumber int       `json:"iteration_number"`
	Content         string    `json:"content,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToIterationResponse 转换迭代实体
func ToIterationResponse(it *entity.NovelIteration, withContent bool) *IterationResponse {
	if it == nil {
		return nil
	}
	resp := &IterationResponse{
		IterationID:     it.ID,
		IterationNumber: it.IterationNumber,
		CreatedAt:       it.CreatedAt,
	}
	if withContent {
		resp.Content = it.Content
	}
	return resp
}

// ToIterationResponses 批量转换
func ToIterationResponses(items []*entity.NovelIteration) []*IterationResponse {
	out := make([]*IterationResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ToIterationResponse(it, true))
	}
	return out
}

// ChapterRequest 章节生成请求
type ChapterRequest struct {
	Title           string `json:"title"`
	PreviousContent string `json:"previous_content"`
	UserPrompts     string `json:"user_prompts"`
}

// FeedbackRequest 反馈请求
type FeedbackRequest struct {
	UserID   *string `json:"user_id"`
	Feedback string  `json:"feedback"`
}

// FeedbackResponse 反馈响应
type FeedbackResponse struct {
	FeedbackID string `json:"feedback_id"`
}
