// Package messaging 提供基于 Redis Stream 的领域事件投递
package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// 事件类型
const (
	EventIterationCreated  = "iteration.created"
	EventStoryInputCreated = "story_input.created"
	EventFeedbackSubmitted = "feedback.submitted"
	EventUserRegistered    = "user.registered"
)

// Message 消息结构
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 创建新消息
func NewMessage(msgType string, payload any) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   payloadBytes,
		Metadata:  make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// GetMetadata 获取元数据
func (m *Message) GetMetadata(key string) string {
	if m.Metadata == nil {
		return ""
	}
	return m.Metadata[key]
}

// UnmarshalPayload 解析消息载荷
func (m *Message) UnmarshalPayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// Stream 流定义
type Stream string

// StreamNovelEvents 默认事件流
const StreamNovelEvents Stream = "stream:novel:events"

// DLQStream 获取对应的死信队列流名称
func (s Stream) DLQStream() string {
	return "dlq:" + string(s)
}

// ConsumerGroupEventWorker 默认消费者组
const ConsumerGroupEventWorker = "cg-event-worker"

// IterationCreatedEvent 迭代已写入
type IterationCreatedEvent struct {
	IterationID     string    `json:"iteration_id"`
	IterationNumber int       `json:"iteration_number"`
	WordCount       int       `json:"word_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// StoryInputCreatedEvent 故事输入已记录
type StoryInputCreatedEvent struct {
	InputID string `json:"input_id"`
	UserID  string `json:"user_id,omitempty"`
}

// FeedbackSubmittedEvent 反馈已提交
type FeedbackSubmittedEvent struct {
	FeedbackID string `json:"feedback_id"`
	UserID     string `json:"user_id,omitempty"`
	Length     int    `json:"length"`
}

// UserRegisteredEvent 用户已注册
type UserRegisteredEvent struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// BackoffConfig 退避配置
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// DefaultBackoffConfig 默认退避配置
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		Initial:    time.Second,
		Max:        time.Minute,
		Multiplier: 2,
	}
}

// CalculateBackoff 计算退避时间
func (c BackoffConfig) CalculateBackoff(retryCount int) time.Duration {
	backoff := c.Initial
	for i := 0; i < retryCount; i++ {
		backoff = time.Duration(float64(backoff) * c.Multiplier)
		if backoff > c.Max {
			backoff = c.Max
			break
		}
	}
	return backoff
}
