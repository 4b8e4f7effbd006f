package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChapterDraft 按标题与前文生成的章节草稿，不落库
type ChapterDraft struct {
	ID        string    `json:"chapter_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChapterDraft 创建章节草稿
func NewChapterDraft(title, content string) *ChapterDraft {
	return &ChapterDraft{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
