package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArguments(t *testing.T) {
	args := Arguments{"name": "Ada", "count": 3}

	v, ok := args.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", v)

	s, ok := args.GetString("name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", s)

	_, ok = args.GetString("count")
	assert.False(t, ok, "non-string values are not coerced")

	_, ok = args.Get("missing")
	assert.False(t, ok)

	args.Set("name", "Grace")
	s, _ = args.GetString("name")
	assert.Equal(t, "Grace", s)
}

func TestArguments_Clone(t *testing.T) {
	args := Arguments{"a": 1}
	clone := args.Clone()
	clone.Set("a", 2)

	assert.Equal(t, 1, args["a"], "clone mutations do not leak back")
	assert.Equal(t, 2, clone["a"])

	var nilArgs Arguments
	assert.NotNil(t, nilArgs.Clone())
}

func TestResult(t *testing.T) {
	r := NewResult("hello")
	assert.Equal(t, "hello", r.String())
	assert.False(t, r.Canceled)

	r.SetMetadata(MetadataModel, "gpt-4o-mini")
	assert.Equal(t, "gpt-4o-mini", r.Metadata[MetadataModel])

	n := NewResult(42)
	assert.Equal(t, "42", n.String(), "non-string values stringify")

	var nilResult *Result
	assert.Equal(t, "", nilResult.String())
}

func TestCanceledResult(t *testing.T) {
	r := CanceledResult()
	assert.True(t, r.Canceled)
	assert.Nil(t, r.Value)
	assert.Equal(t, "", r.String())
}

func TestInvocationLimiter(t *testing.T) {
	l := NewInvocationLimiter(2)

	require.NoError(t, l.Acquire())
	require.NoError(t, l.Acquire())
	assert.Equal(t, 2, l.Active())

	err := l.Acquire()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max concurrent")

	l.Release()
	assert.Equal(t, 1, l.Active())
	assert.NoError(t, l.Acquire())

	// Release never goes negative.
	l.Release()
	l.Release()
	l.Release()
	assert.Equal(t, 0, l.Active())
}

func TestInvocationLimiter_Unbounded(t *testing.T) {
	l := NewInvocationLimiter(0)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Acquire())
		}()
	}
	wg.Wait()
	assert.Equal(t, 64, l.Active())
}
