package entity

import (
	"time"

	"github.com/google/uuid"
)

// Feedback 读者对生成内容的反馈
type Feedback struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    *string   `json:"user_id,omitempty" gorm:"type:uuid"`
	Feedback  string    `json:"feedback" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 表名
func (Feedback) TableName() string {
	return "feedback"
}

// NewFeedback 创建反馈
func NewFeedback(text string) *Feedback {
	now := time.Now().UTC()
	return &Feedback{
		ID:        uuid.NewString(),
		Feedback:  text,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
