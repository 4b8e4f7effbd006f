package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collab-novel-api/pkg/logger"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{Initial: time.Second, Max: 5 * time.Second, Multiplier: 2}
	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 4*time.Second, cfg.CalculateBackoff(2))
	assert.Equal(t, 5*time.Second, cfg.CalculateBackoff(3))
	assert.Equal(t, 5*time.Second, cfg.CalculateBackoff(10))
}

func TestProducerPublishEvent(t *testing.T) {
	rdb := newRedis(t)
	p := NewProducer(rdb, "", 0)
	assert.Equal(t, StreamNovelEvents, p.Stream())

	ctx := logger.WithContext(context.Background(), logger.RequestIDKey, "req-42")
	id, err := p.PublishEvent(ctx, EventIterationCreated, IterationCreatedEvent{
		IterationID:     "it-1",
		IterationNumber: 1,
		WordCount:       3,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	entries, err := rdb.XRange(ctx, string(StreamNovelEvents), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["data"].(string)), &msg))
	assert.Equal(t, EventIterationCreated, msg.Type)
	assert.Equal(t, "req-42", msg.GetMetadata("request_id"))

	var payload IterationCreatedEvent
	require.NoError(t, msg.UnmarshalPayload(&payload))
	assert.Equal(t, "it-1", payload.IterationID)
	assert.Equal(t, 3, payload.WordCount)
}

func TestConsumerDispatchesByType(t *testing.T) {
	rdb := newRedis(t)
	stream := Stream("stream:test:dispatch")
	p := NewProducer(rdb, stream, 100)

	c := NewConsumer(rdb, ConsumerConfig{
		Stream:       stream,
		Group:        "cg-test",
		ConsumerName: "worker-1",
		BlockTimeout: 50 * time.Millisecond,
	})

	got := make(chan FeedbackSubmittedEvent, 1)
	c.RegisterHandler(EventFeedbackSubmitted, func(ctx context.Context, msg *Message) error {
		var ev FeedbackSubmittedEvent
		if err := msg.UnmarshalPayload(&ev); err != nil {
			return err
		}
		got <- ev
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))
	defer c.Stop()
	assert.Error(t, c.Start(ctx), "second start must fail")

	// 无处理器的事件直接确认
	_, err := p.PublishEvent(ctx, "unknown.event", map[string]string{"x": "y"})
	require.NoError(t, err)
	_, err = p.PublishEvent(ctx, EventFeedbackSubmitted, FeedbackSubmittedEvent{FeedbackID: "fb-1", Length: 12})
	require.NoError(t, err)

	select {
	case ev := <-got:
		assert.Equal(t, "fb-1", ev.FeedbackID)
		assert.Equal(t, 12, ev.Length)
	case <-time.After(3 * time.Second):
		t.Fatal("handler was not invoked")
	}

	require.Eventually(t, func() bool {
		pending, err := rdb.XPending(ctx, string(stream), "cg-test").Result()
		return err == nil && pending.Count == 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestConsumerMovesPoisonMessageToDLQ(t *testing.T) {
	rdb := newRedis(t)
	stream := Stream("stream:test:dlq")
	p := NewProducer(rdb, stream, 100)

	c := NewConsumer(rdb, ConsumerConfig{
		Stream:       stream,
		Group:        "cg-test",
		ConsumerName: "worker-1",
		BlockTimeout: 20 * time.Millisecond,
		RetryLimit:   3,
		Backoff:      BackoffConfig{Initial: time.Millisecond, Max: 5 * time.Millisecond, Multiplier: 2},
	})

	var attempts int32
	c.RegisterHandler(EventUserRegistered, func(ctx context.Context, msg *Message) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("handler always fails")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	_, err := p.PublishEvent(ctx, EventUserRegistered, UserRegisteredEvent{UserID: "u-1", Username: "validuser"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		n, err := rdb.XLen(ctx, stream.DLQStream()).Result()
		return err == nil && n == 1
	}, 5*time.Second, 20*time.Millisecond)

	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))

	entries, err := rdb.XRange(ctx, stream.DLQStream(), "-", "+").Result()
	require.NoError(t, err)
	var dlq struct {
		OriginalStream string  `json:"original_stream"`
		Data           Message `json:"data"`
		Error          string  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["data"].(string)), &dlq))
	assert.Equal(t, string(stream), dlq.OriginalStream)
	assert.Equal(t, EventUserRegistered, dlq.Data.Type)
	assert.Equal(t, "handler always fails", dlq.Error)
}

func TestConsumerStopIsIdempotent(t *testing.T) {
	rdb := newRedis(t)
	c := NewConsumer(rdb, ConsumerConfig{ConsumerName: "worker-1", BlockTimeout: 10 * time.Millisecond})

	require.NoError(t, c.Start(context.Background()))
	c.Stop()
	c.Stop()
}
