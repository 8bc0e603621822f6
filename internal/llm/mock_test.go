package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_FIFO(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockProvider(MockResponse{Text: "first"}, MockResponse{Err: boom})

	text, err := m.Complete(context.Background(), UserPrompt("Generate exactly 2", 10, 0))
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	_, err = m.Complete(context.Background(), UserPrompt("The following is malformed", 10, 0))
	assert.ErrorIs(t, err, boom)

	_, err = m.Complete(context.Background(), UserPrompt("Generate exactly 2", 10, 0))
	assert.ErrorIs(t, err, ErrNoMockResponses)

	assert.Equal(t, 3, m.CallCount())
	assert.Equal(t, 2, m.CallsWithPrefix("Generate exactly"))
}

func TestMockProvider_Fallback(t *testing.T) {
	m := NewMockProvider()
	m.Fallback = func(req Request) (string, error) { return "fallback:" + req.Messages[0].Content, nil }

	text, err := m.Complete(context.Background(), UserPrompt("x", 1, 0))
	require.NoError(t, err)
	assert.Equal(t, "fallback:x", text)
}

func TestMockProvider_CancelledContext(t *testing.T) {
	m := NewMockProvider(MockResponse{Text: "unused"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Complete(ctx, UserPrompt("x", 1, 0))
	assert.ErrorIs(t, err, context.Canceled)
}
