package function

import (
	"context"
	"fmt"

	"github.com/hupe1980/kernelmesh/core"
	"github.com/hupe1980/kernelmesh/service"
	"github.com/hupe1980/kernelmesh/template"
)

// PromptFunction is a Function whose body is a prompt template plus execution
// settings, executed against a service.ChatService. The render step and the
// model call are exposed separately (PromptBacked) so the kernel can thread
// prompt-render filters between them; Invoke composes both for standalone use.
type PromptFunction struct {
	cfg  *template.Config
	tmpl *template.Template
	svc  service.ChatService
}

// NewPromptFunction constructs a PromptFunction from a validated config and a
// backing chat service.
func NewPromptFunction(cfg *template.Config, svc service.ChatService) (*PromptFunction, error) {
	if svc == nil {
		return nil, fmt.Errorf("prompt function %q: chat service is required", cfg.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tmpl, err := template.Parse(cfg.Template)
	if err != nil {
		return nil, err
	}
	return &PromptFunction{cfg: cfg, tmpl: tmpl, svc: svc}, nil
}

// NewPromptFunctionFromYAML constructs a PromptFunction from a YAML prompt
// definition (name, description, template, input variables, execution
// settings).
func NewPromptFunctionFromYAML(data []byte, svc service.ChatService) (*PromptFunction, error) {
	cfg, err := template.ConfigFromYAML(data)
	if err != nil {
		return nil, err
	}
	return NewPromptFunction(cfg, svc)
}

// Name returns the function name from the template config.
func (f *PromptFunction) Name() string { return f.cfg.Name }

// Description returns the function description from the template config.
func (f *PromptFunction) Description() string { return f.cfg.Description }

// Config returns the template configuration backing this function.
func (f *PromptFunction) Config() *template.Config { return f.cfg }

// Service returns the backing chat service.
func (f *PromptFunction) Service() service.ChatService { return f.svc }

// Render implements PromptBacked: applies input defaults, checks required
// inputs and renders the template to the prompt string.
func (f *PromptFunction) Render(_ context.Context, args core.Arguments) (string, error) {
	values := f.cfg.ApplyDefaults(args)
	if err := f.cfg.CheckRequired(values); err != nil {
		return "", &FunctionError{
			Function: f.cfg.Name,
			Message:  err.Error(),
			Code:     CodeRender,
		}
	}
	return f.tmpl.Render(values), nil
}

// Invoke renders the template and executes the model call in one step. The
// kernel does not use this path for prompt functions (it drives Render and
// InvokeRendered separately so render filters can intervene); it exists so a
// PromptFunction is a complete Function on its own.
func (f *PromptFunction) Invoke(ctx context.Context, args core.Arguments) (*core.Result, error) {
	prompt, err := f.Render(ctx, args)
	if err != nil {
		return nil, err
	}
	return f.InvokeRendered(ctx, prompt)
}

// InvokeRendered sends the rendered prompt to the chat service and collects
// the final response into a Result with provenance metadata.
func (f *PromptFunction) InvokeRendered(ctx context.Context, prompt string) (*core.Result, error) {
	respCh, errCh := f.svc.Generate(ctx, f.request(prompt, false))

	var final *service.Response
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !resp.Partial {
				r := resp
				final = &r
			}

		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("prompt function %s: %w", f.cfg.Name, err)
			}
		}
	}

	if final == nil {
		return nil, NewFunctionError(f.cfg.Name, "service produced no final response", CodeModel)
	}

	result := core.NewResult(final.Text)
	result.Usage = final.Usage
	result.SetMetadata(core.MetadataModel, f.modelName())
	result.SetMetadata(core.MetadataFinishReason, final.FinishReason)
	result.SetMetadata(core.MetadataRenderedPrompt, prompt)
	return result, nil
}

// InvokeRenderedStream starts a streaming model call for the rendered prompt
// and adapts service responses into chunks. The returned sequence is a single
// pass over the provider stream; cancellation of ctx ends it early without an
// error chunk.
func (f *PromptFunction) InvokeRenderedStream(ctx context.Context, prompt string) (<-chan core.Chunk, <-chan error) {
	out := make(chan core.Chunk, 32)
	errOut := make(chan error, 1)

	respCh, errCh := f.svc.Generate(ctx, f.request(prompt, true))

	go func() {
		defer close(out)
		defer close(errOut)

		for respCh != nil || errCh != nil {
			select {
			case <-ctx.Done():
				return

			case resp, ok := <-respCh:
				if !ok {
					respCh = nil
					continue
				}
				chunk := core.Chunk{Text: resp.Text}
				if !resp.Partial {
					chunk.Final = true
					chunk.FinishReason = resp.FinishReason
					chunk.Usage = resp.Usage
					// Final service responses repeat the accumulated text;
					// the stream already delivered it chunk by chunk.
					chunk.Text = ""
				}
				select {
				case <-ctx.Done():
					return
				case out <- chunk:
				}

			case err, ok := <-errCh:
				if !ok {
					errCh = nil
					continue
				}
				if err != nil {
					errOut <- fmt.Errorf("prompt function %s: %w", f.cfg.Name, err)
					return
				}
			}
		}
	}()

	return out, errOut
}

// InvokeStream renders the template then streams the model call, for
// standalone use outside the kernel pipeline.
func (f *PromptFunction) InvokeStream(ctx context.Context, args core.Arguments) (<-chan core.Chunk, <-chan error) {
	prompt, err := f.Render(ctx, args)
	if err != nil {
		out := make(chan core.Chunk)
		errCh := make(chan error, 1)
		errCh <- err
		close(out)
		close(errCh)
		return out, errCh
	}
	return f.InvokeRenderedStream(ctx, prompt)
}

func (f *PromptFunction) request(prompt string, stream bool) service.Request {
	return service.Request{
		Prompt:      prompt,
		Stream:      stream,
		Model:       f.cfg.Execution.Model,
		Temperature: f.cfg.Execution.Temperature,
		MaxTokens:   f.cfg.Execution.MaxTokens,
	}
}

func (f *PromptFunction) modelName() string {
	if f.cfg.Execution.Model != "" {
		return f.cfg.Execution.Model
	}
	return f.svc.Info().Name
}
