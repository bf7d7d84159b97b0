package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/stretchr/testify/assert"
)

func TestFromStatus_Classification(t *testing.T) {
	tests := []struct {
		status    int
		message   string
		kind      ErrorKind
		retryable bool
	}{
		{401, "bad key", KindAuth, false},
		{403, "forbidden", KindAuth, false},
		{429, "slow down", KindRateLimit, true},
		{500, "boom", KindUnavailable, true},
		{503, "overloaded", KindUnavailable, true},
		{529, "overloaded", KindUnavailable, true},
		{504, "gateway", KindTimeout, true},
		{400, "This model's maximum context length is 128000 tokens", KindContextLength, false},
		{400, "prompt is too long", KindContextLength, false},
		{400, "invalid tool schema", KindInvalidRequest, false},
		{404, "model not found", KindInvalidRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			err := FromStatus("openai", tt.status, tt.message, nil, nil)
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, "openai", err.Provider)
		})
	}
}

func TestFromStatus_RetryAfterHeader(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "12")

	err := FromStatus("anthropic", 429, "rate limited", h, nil)

	assert.Equal(t, 12*time.Second, err.RetryAfter)
}

func TestFromTransport(t *testing.T) {
	assert.Same(t, context.Canceled, FromTransport("x", context.Canceled))
	assert.Equal(t, KindTimeout, KindOf(FromTransport("x", context.DeadlineExceeded)))

	cause := errors.New("connection refused")
	err := FromTransport("x", cause)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, FromTransport("x", nil))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), ParseRetryAfter(""))
	assert.Equal(t, 1500*time.Millisecond, ParseRetryAfter("1.5"))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("soon"))

	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	d := ParseRetryAfter(future)
	assert.Greater(t, d, 50*time.Second)
}

func TestEnsureCallIDs(t *testing.T) {
	calls := []ToolCall{{Name: "a"}, {ID: "dup", Name: "b"}, {ID: "dup", Name: "c"}}

	EnsureCallIDs(calls)

	assert.NotEmpty(t, calls[0].ID)
	assert.Equal(t, "dup", calls[1].ID)
	assert.NotEqual(t, "dup", calls[2].ID)
	assert.NotNil(t, calls[0].Arguments)
}

func TestSplitSystem(t *testing.T) {
	conv := []Message{SystemMessage("one"), UserMessage("hi"), SystemMessage("two")}

	sys, rest := SplitSystem(conv)

	assert.Equal(t, "one\n\ntwo", sys)
	assert.Equal(t, []Message{UserMessage("hi")}, rest)
}

func TestToolMessage_CarriesRenderedContent(t *testing.T) {
	res := tool.Failed("c1", "read_file", tool.KindNotFound, "file does not exist: x")

	msg := ToolMessage(res)

	assert.Equal(t, RoleTool, msg.Role)
	assert.Equal(t, "c1", msg.ToolResult.CallID)
	assert.Equal(t, res.Content(), msg.Content)
}
