package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NovelIteration 小说的一次生成迭代，只追加不修改
type NovelIteration struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid"`
	IterationNumber int       `json:"iteration_number" gorm:"uniqueIndex;not null"`
	Content         string    `json:"content" gorm:"type:text;not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`
}

// TableName 表名
func (NovelIteration) TableName() string {
	return "novel_iterations"
}

// NewNovelIteration 基于上一次最大序号创建下一次迭代
func NewNovelIteration(prevMax int, content string) *NovelIteration {
	return &NovelIteration{
		ID:              uuid.NewString(),
		IterationNumber: prevMax + 1,
		Content:         content,
		CreatedAt:       time.Now().UTC(),
	}
}

// WordCount 统计内容词数
func (n *NovelIteration) WordCount() int {
	return len(strings.Fields(n.Content))
}
