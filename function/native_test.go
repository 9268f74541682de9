package function

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kernelmesh/core"
)

func sumSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}
}

func TestNativeFunction_Invoke(t *testing.T) {
	sum := NewNativeFunction("calculate_sum", "Calculate the sum of two numbers", sumSchema(),
		func(_ context.Context, args core.Arguments) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		})

	assert.Equal(t, "calculate_sum", sum.Name())
	assert.Equal(t, "Calculate the sum of two numbers", sum.Description())

	result, err := sum.Invoke(context.Background(), core.Arguments{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.Value)
}

func TestNativeFunction_ValidationError(t *testing.T) {
	sum := NewNativeFunction("calculate_sum", "", sumSchema(),
		func(context.Context, core.Arguments) (any, error) { return nil, nil })

	tests := []struct {
		name string
		args core.Arguments
	}{
		{name: "missing required", args: core.Arguments{"a": 1.0}},
		{name: "wrong type", args: core.Arguments{"a": 1.0, "b": "two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sum.Invoke(context.Background(), tt.args)
			require.Error(t, err)

			var fnErr *FunctionError
			require.ErrorAs(t, err, &fnErr)
			assert.Equal(t, CodeValidation, fnErr.Code)
			assert.Equal(t, "calculate_sum", fnErr.Function)
		})
	}
}

func TestNativeFunction_NilSchemaSkipsValidation(t *testing.T) {
	fn := NewNativeFunction("anything", "", nil,
		func(_ context.Context, args core.Arguments) (any, error) {
			return len(args), nil
		})

	result, err := fn.Invoke(context.Background(), core.Arguments{"whatever": true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Value)
}

func TestNativeFunction_ExecutionErrorWrapped(t *testing.T) {
	fn := NewNativeFunction("flaky", "", nil,
		func(context.Context, core.Arguments) (any, error) {
			return nil, errors.New("backend unavailable")
		})

	_, err := fn.Invoke(context.Background(), nil)
	require.Error(t, err)

	var fnErr *FunctionError
	require.ErrorAs(t, err, &fnErr)
	assert.Equal(t, CodeExecution, fnErr.Code)
	assert.Contains(t, fnErr.Message, "backend unavailable")
}

func TestNativeFunction_FunctionErrorPassedThrough(t *testing.T) {
	custom := NewFunctionError("flaky", "rate limited", "RATE_LIMITED")
	fn := NewNativeFunction("flaky", "", nil,
		func(context.Context, core.Arguments) (any, error) {
			return nil, custom
		})

	_, err := fn.Invoke(context.Background(), nil)
	require.Error(t, err)

	var fnErr *FunctionError
	require.ErrorAs(t, err, &fnErr)
	assert.Equal(t, "RATE_LIMITED", fnErr.Code, "custom codes survive the wrapper")
}

func TestNewNativeFunctionFromStruct(t *testing.T) {
	type searchArgs struct {
		Query string `json:"query" description:"Search query"`
		Limit int    `json:"limit,omitempty"`
	}

	fn := NewNativeFunctionFromStruct("search", "Search documents", searchArgs{},
		func(_ context.Context, args core.Arguments) (any, error) {
			q, _ := args.GetString("query")
			return "results for " + q, nil
		})

	// Required field enforced from the derived schema.
	_, err := fn.Invoke(context.Background(), core.Arguments{"limit": 5.0})
	require.Error(t, err)
	var fnErr *FunctionError
	require.ErrorAs(t, err, &fnErr)
	assert.Equal(t, CodeValidation, fnErr.Code)

	result, err := fn.Invoke(context.Background(), core.Arguments{"query": "golang"})
	require.NoError(t, err)
	assert.Equal(t, "results for golang", result.Value)
}

func TestNativeFunction_InvokeStream(t *testing.T) {
	fn := NewNativeFunction("echo", "", nil,
		func(_ context.Context, args core.Arguments) (any, error) {
			v, _ := args.GetString("input")
			return v, nil
		})

	chunks, errCh := fn.InvokeStream(context.Background(), core.Arguments{"input": "hi"})

	var collected []core.Chunk
	for c := range chunks {
		collected = append(collected, c)
	}
	assert.NoError(t, <-errCh)
	require.Len(t, collected, 1)
	assert.Equal(t, "hi", collected[0].Text)
	assert.True(t, collected[0].Final)
}

func TestNativeFunction_InvokeStreamError(t *testing.T) {
	fn := NewNativeFunction("flaky", "", nil,
		func(context.Context, core.Arguments) (any, error) {
			return nil, errors.New("nope")
		})

	chunks, errCh := fn.InvokeStream(context.Background(), nil)

	for range chunks {
		t.Fatal("no chunks expected on failure")
	}
	err := <-errCh
	require.Error(t, err)
	var fnErr *FunctionError
	assert.ErrorAs(t, err, &fnErr)
}
