package function

import (
	"context"

	"github.com/hupe1980/kernelmesh/core"
	"github.com/hupe1980/kernelmesh/internal/util"
)

// NativeFunction is a generic adapter that exposes a plain Go function as a
// kernelmesh Function.
//
// Responsibilities:
//   - Holds a lightweight JSON-Schema-like parameter specification
//   - Validates supplied arguments against that schema before execution
//   - Normalizes error handling so callers receive *FunctionError with
//     consistent codes:
//     VALIDATION_ERROR -> schema / argument mismatch
//     EXECUTION_ERROR  -> underlying callback returned an error (non-FunctionError)
//     (custom codes preserved if the callback returns *FunctionError directly)
//
// Concurrency:
//
//	A NativeFunction has no internal mutable state after construction and is
//	safe for concurrent use by multiple goroutines.
//
// Parameter Schema Expectations:
//
//	The parameters map should follow a minimal JSON Schema shape. Only the
//	subset actually validated by util.ValidateArguments needs to be supplied
//	(type, properties, required).
type NativeFunction struct {
	// Function identifier (snake_case recommended)
	name string
	// Human-readable description shown to models and hosts
	description string
	// JSON schema describing accepted arguments; nil disables validation
	parameters map[string]any
	// User supplied implementation
	fn func(ctx context.Context, args core.Arguments) (any, error)
}

// NewNativeFunction constructs a NativeFunction from explicit schema and callback.
//
// Example:
//
//	sum := NewNativeFunction(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(_ context.Context, args core.Arguments) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewNativeFunction(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args core.Arguments) (any, error),
) *NativeFunction {
	return &NativeFunction{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewNativeFunctionFromStruct derives the parameter schema from a struct using
// reflection. It is a convenience for simple argument containers and produces
// a schema equivalent to util.SchemaFromStruct(structType).
func NewNativeFunctionFromStruct(
	name, description string,
	structType any,
	fn func(ctx context.Context, args core.Arguments) (any, error),
) *NativeFunction {
	schema := util.SchemaFromStruct(structType)
	return NewNativeFunction(name, description, schema, fn)
}

// Name returns the unique function name used in plugin registration and routing.
func (f *NativeFunction) Name() string { return f.name }

// Description returns the short natural language description of the function.
func (f *NativeFunction) Description() string { return f.description }

// Parameters returns the (minimal) JSON schema describing expected arguments.
func (f *NativeFunction) Parameters() map[string]any { return f.parameters }

// Invoke validates the provided args against the declared schema then calls
// the underlying function. Validation or execution failures are wrapped (or
// passed through) as *FunctionError for uniform downstream handling.
//
// Error Semantics:
//
//	*FunctionError (returned directly) -> forwarded unchanged
//	validation failure                 -> *FunctionError{Code: "VALIDATION_ERROR"}
//	other error                        -> *FunctionError{Code: "EXECUTION_ERROR"}
func (f *NativeFunction) Invoke(ctx context.Context, args core.Arguments) (*core.Result, error) {
	if f.parameters != nil {
		if err := util.ValidateArguments(args, f.parameters); err != nil {
			return nil, &FunctionError{
				Function: f.name,
				Message:  "argument validation failed: " + err.Error(),
				Code:     CodeValidation,
				Details:  err,
			}
		}
	}

	value, err := f.fn(ctx, args)
	if err != nil {
		if fnErr, ok := err.(*FunctionError); ok { // Already a FunctionError -> forward
			return nil, fnErr
		}
		return nil, &FunctionError{
			Function: f.name,
			Message:  err.Error(),
			Code:     CodeExecution,
		}
	}

	return core.NewResult(value), nil
}

// InvokeStream runs the callback once and emits its result as a single final
// chunk. Native functions have no natural partial output; the streaming shape
// exists so native and prompt functions are interchangeable in the pipeline.
func (f *NativeFunction) InvokeStream(ctx context.Context, args core.Arguments) (<-chan core.Chunk, <-chan error) {
	out := make(chan core.Chunk, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		result, err := f.Invoke(ctx, args)
		if err != nil {
			errCh <- err
			return
		}
		select {
		case <-ctx.Done():
		case out <- core.Chunk{Text: result.String(), Final: true, FinishReason: "stop"}:
		}
	}()

	return out, errCh
}
