// Package openai provides a service.ChatService implementation using the
// OpenAI Chat Completions API (including streaming). It adapts kernelmesh's
// normalized Request/Response structures into the SDK's message format and
// back.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/hupe1980/kernelmesh/core"
	"github.com/hupe1980/kernelmesh/service"
)

// Options configure the OpenAI service adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Service wraps the OpenAI Chat Completions API behind the generic
// service.ChatService interface.
type Service struct {
	client *openai.Client
	opts   Options
}

// NewService creates a new OpenAI service using the official client.
func NewService(optFns ...func(o *Options)) *Service {
	client := openai.NewClient()
	return NewServiceFromClient(&client, optFns...)
}

// NewServiceFromClient creates a new OpenAI service from an existing client.
func NewServiceFromClient(client *openai.Client, optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Service{client: client, opts: opts}
}

// Generate implements unified streaming / non-streaming generation.
func (s *Service) Generate(ctx context.Context, req service.Request) (<-chan service.Response, <-chan error) {
	out := make(chan service.Response, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		params := s.buildParams(req)
		if req.Stream {
			s.handleStreaming(ctx, req, params, out, errCh)
			return
		}
		s.handleNonStreaming(ctx, params, out, errCh)
	}()
	return out, errCh
}

// buildParams assembles the OpenAI request parameters. Per-request settings
// (model, temperature, max tokens) override the adapter defaults.
func (s *Service) buildParams(req service.Request) openai.ChatCompletionNewParams {
	model := s.opts.Model
	if req.Model != "" {
		model = req.Model
	}
	temperature := s.opts.Temperature
	if req.Temperature != 0 {
		temperature = req.Temperature
	}
	maxTokens := s.opts.MaxCompletionTokens
	if req.MaxTokens != 0 {
		maxTokens = req.MaxTokens
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	return openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               model,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}
}

// handleStreaming processes streaming responses and forwards partial / final
// events. OpenAI does not attach usage to streamed chunks, so the final
// response carries an estimate.
func (s *Service) handleStreaming(
	ctx context.Context,
	req service.Request,
	params openai.ChatCompletionNewParams,
	out chan<- service.Response,
	errCh chan<- error,
) {
	stream := s.client.Chat.Completions.NewStreaming(ctx, params)
	var textBuilder strings.Builder
	finishReason := "stop"
	for stream.Next() {
		ck := stream.Current()
		for _, ch := range ck.Choices {
			if ch.Delta.Content != "" {
				textBuilder.WriteString(ch.Delta.Content)
				select {
				case <-ctx.Done():
					return
				case out <- service.Response{Partial: true, Text: ch.Delta.Content}:
				}
			}
			if ch.FinishReason != "" {
				finishReason = ch.FinishReason
			}
		}
	}
	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("openai streaming error: %w", err)
		return
	}
	full := textBuilder.String()
	select {
	case <-ctx.Done():
	case out <- service.Response{
		Partial:      false,
		Text:         full,
		FinishReason: finishReason,
		Usage:        service.EstimateUsage(params.Model, req.Prompt, full),
	}:
	}
}

// handleNonStreaming processes a normal (non-streaming) completion.
func (s *Service) handleNonStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- service.Response,
	errCh chan<- error,
) {
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		errCh <- fmt.Errorf("openai api error: %w", err)
		return
	}
	if len(resp.Choices) == 0 {
		errCh <- fmt.Errorf("no choices returned")
		return
	}
	ch0 := resp.Choices[0]
	out <- service.Response{
		Partial:      false,
		Text:         ch0.Message.Content,
		FinishReason: ch0.FinishReason,
		Usage: &core.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
}

// Info returns metadata describing this OpenAI service implementation.
func (s *Service) Info() service.Info {
	return service.Info{
		Name:     s.opts.Model,
		Provider: "openai",
	}
}
