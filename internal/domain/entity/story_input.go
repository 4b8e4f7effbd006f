package entity

import (
	"time"

	"github.com/google/uuid"
)

// StoryInput 用户提交的故事参数，创建后不再修改
type StoryInput struct {
	ID                    string         `json:"id" gorm:"primaryKey;type:uuid"`
	UserID                *string        `json:"user_id,omitempty" gorm:"type:uuid"`
	Plot                  string         `json:"plot" gorm:"type:text;not null"`
	Setting               string         `json:"setting" gorm:"type:text;not null"`
	Theme                 string         `json:"theme" gorm:"type:text;not null"`
	Conflict              string         `json:"conflict" gorm:"type:text;not null"`
	AdditionalPreferences map[string]any `json:"additional_preferences,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// TableName 表名
func (StoryInput) TableName() string {
	return "user_inputs"
}

// NewStoryInput 创建故事参数
func NewStoryInput(plot, setting, theme, conflict string) *StoryInput {
	now := time.Now().UTC()
	return &StoryInput{
		ID:        uuid.NewString(),
		Plot:      plot,
		Setting:   setting,
		Theme:     theme,
		Conflict:  conflict,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
