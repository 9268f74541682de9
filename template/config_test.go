package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const summarizeYAML = `
name: summarize
description: Summarize the given text
template: "Summarize in {{$style}} style: {{$input}}"
input_variables:
  - name: input
    description: The text to summarize
    required: true
  - name: style
    default: concise
execution:
  model: gpt-4o-mini
  temperature: 0.2
  max_tokens: 512
`

func TestConfigFromYAML(t *testing.T) {
	cfg, err := ConfigFromYAML([]byte(summarizeYAML))
	require.NoError(t, err)

	assert.Equal(t, "summarize", cfg.Name)
	assert.Equal(t, "gpt-4o-mini", cfg.Execution.Model)
	assert.Equal(t, 0.2, cfg.Execution.Temperature)
	assert.Equal(t, int64(512), cfg.Execution.MaxTokens)
	require.Len(t, cfg.InputVariables, 2)
	assert.True(t, cfg.InputVariables[0].Required)
	assert.Equal(t, "concise", cfg.InputVariables[1].Default)
}

func TestConfigFromYAML_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "not yaml", yaml: "::::"},
		{name: "missing name", yaml: "template: hi"},
		{name: "missing template", yaml: "name: x"},
		{name: "broken template", yaml: "name: x\ntemplate: \"{{$\""},
		{name: "unnamed input", yaml: "name: x\ntemplate: hi\ninput_variables:\n  - default: y"},
		{name: "duplicate input", yaml: "name: x\ntemplate: hi\ninput_variables:\n  - name: a\n  - name: a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConfigFromYAML([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg, err := ConfigFromYAML([]byte(summarizeYAML))
	require.NoError(t, err)

	in := map[string]any{"input": "the report"}
	merged := cfg.ApplyDefaults(in)

	assert.Equal(t, "the report", merged["input"])
	assert.Equal(t, "concise", merged["style"])
	assert.NotContains(t, in, "style", "the caller's map is untouched")

	// Caller-supplied values win over defaults.
	merged = cfg.ApplyDefaults(map[string]any{"input": "x", "style": "verbose"})
	assert.Equal(t, "verbose", merged["style"])
}

func TestConfig_CheckRequired(t *testing.T) {
	cfg, err := ConfigFromYAML([]byte(summarizeYAML))
	require.NoError(t, err)

	assert.NoError(t, cfg.CheckRequired(map[string]any{"input": "x"}))

	err = cfg.CheckRequired(map[string]any{"style": "verbose"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"input"`)
}
