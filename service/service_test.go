package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, respCh <-chan Response, errCh <-chan error) ([]Response, error) {
	t.Helper()
	var out []Response
	for r := range respCh {
		out = append(out, r)
	}
	return out, <-errCh
}

func TestMockService_Generate(t *testing.T) {
	m := NewMockService()
	m.AddResponse("hello", "world")

	respCh, errCh := m.Generate(context.Background(), Request{Prompt: "hello"})
	responses, err := collect(t, respCh, errCh)
	require.NoError(t, err)

	require.Len(t, responses, 1)
	assert.False(t, responses[0].Partial)
	assert.Equal(t, "world", responses[0].Text)
	assert.Equal(t, "stop", responses[0].FinishReason)
	require.NotNil(t, responses[0].Usage)
	assert.Positive(t, responses[0].Usage.TotalTokens)
}

func TestMockService_GenerateStreaming(t *testing.T) {
	m := NewMockService()
	m.AddResponse("hello", "abc")

	respCh, errCh := m.Generate(context.Background(), Request{Prompt: "hello", Stream: true})
	responses, err := collect(t, respCh, errCh)
	require.NoError(t, err)

	// Three partial single-char chunks then the final response.
	require.Len(t, responses, 4)
	var text strings.Builder
	for _, r := range responses[:3] {
		assert.True(t, r.Partial)
		text.WriteString(r.Text)
	}
	assert.Equal(t, "abc", text.String())
	assert.False(t, responses[3].Partial)
	assert.Equal(t, "abc", responses[3].Text)
}

func TestMockService_UnmatchedPromptEchoes(t *testing.T) {
	m := NewMockService()

	respCh, errCh := m.Generate(context.Background(), Request{Prompt: "anything"})
	responses, err := collect(t, respCh, errCh)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].Text, "anything")
}

func TestMockService_FailWith(t *testing.T) {
	m := NewMockService()
	m.FailWith(errors.New("provider down"))

	respCh, errCh := m.Generate(context.Background(), Request{Prompt: "x"})
	responses, err := collect(t, respCh, errCh)
	assert.Empty(t, responses)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
}

func TestMockService_ContextCancel(t *testing.T) {
	m := NewMockService()
	m.AddResponse("x", strings.Repeat("y", 1024))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	respCh, errCh := m.Generate(ctx, Request{Prompt: "x", Stream: true})

	seen := 0
	for range respCh {
		seen++
		if seen == 2 {
			cancel()
		}
	}
	assert.NoError(t, <-errCh)
	assert.Less(t, seen, 1024)
}

func TestMockService_Info(t *testing.T) {
	m := NewMockService()
	assert.Equal(t, Info{Name: "mock", Provider: "mock"}, m.Info())
}

func TestEstimateUsage(t *testing.T) {
	usage := EstimateUsage("gpt-4o-mini", "Summarize: the quick brown fox", "A fox runs.")
	require.NotNil(t, usage)
	assert.Positive(t, usage.PromptTokens)
	assert.Positive(t, usage.CompletionTokens)
	assert.Equal(t, usage.PromptTokens+usage.CompletionTokens, usage.TotalTokens)
}

func TestEstimateUsage_EmptyText(t *testing.T) {
	usage := EstimateUsage("", "", "")
	require.NotNil(t, usage)
	assert.Zero(t, usage.TotalTokens)
}

func TestEstimateUsage_UnknownModel(t *testing.T) {
	usage := EstimateUsage("claude-sonnet-4-0", "hello world", "hi")
	require.NotNil(t, usage)
	assert.Positive(t, usage.TotalTokens, "unknown models still get an estimate")
}
