package eino

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"collab-novel-api/pkg/metrics"
)

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", ProviderFromContext(ctx))
	assert.Equal(t, "default", PurposeFromContext(ctx))

	ctx = WithPurpose(WithProvider(ctx, "openai"), "chapter")
	assert.Equal(t, "openai", ProviderFromContext(ctx))
	assert.Equal(t, "chapter", PurposeFromContext(ctx))
}

func TestChatModelCallbackRecordsOutcome(t *testing.T) {
	h := newChatModelCallbackHandler()
	ctx := WithPurpose(WithProvider(context.Background(), "cb-test"), "iteration")

	success := metrics.LLMCallsTotal.WithLabelValues("cb-test", "iteration", "success")
	failure := metrics.LLMCallsTotal.WithLabelValues("cb-test", "iteration", "error")
	beforeOK, beforeErr := testutil.ToFloat64(success), testutil.ToFloat64(failure)

	started := h.OnStart(ctx, nil, &model.CallbackInput{Config: &model.Config{Model: "gpt-4o-mini"}})
	h.OnEnd(started, nil, &model.CallbackOutput{
		Message:    schema.AssistantMessage("ok", nil),
		TokenUsage: &model.TokenUsage{PromptTokens: 3, CompletionTokens: 5},
	})

	started = h.OnStart(ctx, nil, nil)
	h.OnError(started, nil, errors.New("boom"))

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(success))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(failure))
}

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}
