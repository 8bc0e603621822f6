package llm

import (
	"context"
	"testing"
	"time"

	contextutils "quizgen/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedProvider_AppliesTimeout(t *testing.T) {
	slow := ProviderFunc(func(ctx context.Context, _ Request) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
			return "too late", nil
		}
	})

	p := WithInstrumentation(slow, 20*time.Millisecond, nil)
	_, err := p.Complete(context.Background(), UserPrompt("x", 1, 0))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, contextutils.IsError(err, contextutils.ErrTimeout))
}

func TestInstrumentedProvider_CallerDeadlineNotRelabelled(t *testing.T) {
	slow := ProviderFunc(func(ctx context.Context, _ Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := WithInstrumentation(slow, time.Minute, nil).Complete(ctx, UserPrompt("x", 1, 0))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, contextutils.IsError(err, contextutils.ErrTimeout))
}

func TestInstrumentedProvider_PassesThrough(t *testing.T) {
	m := NewMockProvider(MockResponse{Text: "hello"})
	p := WithInstrumentation(m, time.Second, nil)

	text, err := p.Complete(context.Background(), UserPrompt("x", 1, 0))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, "mock", p.ModelID())
	assert.Equal(t, 1, m.CallCount())
}
