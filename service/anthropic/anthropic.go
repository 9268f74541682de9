// Package anthropic provides a service.ChatService wrapper for the Anthropic
// Claude Messages API.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/kernelmesh/core"
	"github.com/hupe1980/kernelmesh/service"
)

// Options configures the Anthropic service adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Service wraps the Anthropic Messages API behind the generic
// service.ChatService interface.
type Service struct {
	client *anthropic.Client
	opts   Options
}

// NewService creates a new Anthropic service using the official client.
func NewService(optFns ...func(o *Options)) *Service {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Service{client: &client, opts: opts}
}

// NewServiceFromClient creates a new Anthropic service from an existing client.
func NewServiceFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Service {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Service{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Generate implements service.ChatService.
//
// TODO: implement streaming via anthropic.MessageStreamEvent handling; for
// now streaming requests are rejected and callers should use the non-streaming
// path with Anthropic models.
func (s *Service) Generate(ctx context.Context, req service.Request) (<-chan service.Response, <-chan error) {
	out := make(chan service.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		if req.Stream {
			errCh <- fmt.Errorf("streaming not yet implemented for Anthropic service")
			return
		}

		model := s.opts.Model
		if req.Model != "" {
			model = anthropic.Model(req.Model)
		}
		temperature := s.opts.Temperature
		if req.Temperature != 0 {
			temperature = req.Temperature
		}
		maxTokens := s.opts.MaxTokens
		if req.MaxTokens != 0 {
			maxTokens = req.MaxTokens
		}

		params := anthropic.MessageNewParams{
			Model:       model,
			Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
			MaxTokens:   maxTokens,
			Temperature: anthropic.Float(temperature),
		}
		if req.System != "" {
			params.System = []anthropic.TextBlockParam{{Text: req.System}}
		}

		resp, err := s.client.Messages.New(ctx, params)
		if err != nil {
			errCh <- fmt.Errorf("anthropic api error: %w", err)
			return
		}

		var text string
		for _, block := range resp.Content {
			if block.Type == "text" {
				text += block.AsText().Text
			}
		}

		finishReason := "stop"
		if resp.StopReason != "" {
			finishReason = string(resp.StopReason)
		}

		usage := &core.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
		}
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

		out <- service.Response{
			Partial:      false,
			Text:         text,
			FinishReason: finishReason,
			Usage:        usage,
		}
	}()

	return out, errCh
}

// Info returns metadata describing this Anthropic service implementation.
func (s *Service) Info() service.Info {
	return service.Info{
		Name:     string(s.opts.Model),
		Provider: "anthropic",
	}
}
