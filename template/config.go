package template

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// InputVariable describes one template input: its name, an optional default
// applied when the invocation arguments omit it, and whether it is required.
type InputVariable struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Default     string `yaml:"default,omitempty" json:"default,omitempty"`
	Required    bool   `yaml:"required,omitempty" json:"required,omitempty"`
}

// ExecutionSettings carries the model execution parameters attached to a
// prompt function. Zero values defer to the service adapter's defaults.
type ExecutionSettings struct {
	Model       string  `yaml:"model,omitempty" json:"model,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MaxTokens   int64   `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
}

// Config is the declarative definition of a prompt-based function: template
// text, documented inputs and execution settings.
type Config struct {
	Name           string            `yaml:"name" json:"name"`
	Description    string            `yaml:"description,omitempty" json:"description,omitempty"`
	Template       string            `yaml:"template" json:"template"`
	InputVariables []InputVariable   `yaml:"input_variables,omitempty" json:"input_variables,omitempty"`
	Execution      ExecutionSettings `yaml:"execution,omitempty" json:"execution,omitempty"`
}

// ConfigFromYAML unmarshals and validates a Config from YAML bytes.
func ConfigFromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("template config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural requirements and that the template parses.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("template config: name is required")
	}
	if c.Template == "" {
		return fmt.Errorf("template config: template is required")
	}
	if _, err := Parse(c.Template); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, v := range c.InputVariables {
		if v.Name == "" {
			return fmt.Errorf("template config: input variable without a name")
		}
		if seen[v.Name] {
			return fmt.Errorf("template config: duplicate input variable %q", v.Name)
		}
		seen[v.Name] = true
	}
	return nil
}

// ApplyDefaults returns values extended with configured defaults for inputs
// the caller omitted. The input map is not mutated.
func (c *Config) ApplyDefaults(values map[string]any) map[string]any {
	merged := make(map[string]any, len(values)+len(c.InputVariables))
	for _, v := range c.InputVariables {
		if v.Default != "" {
			merged[v.Name] = v.Default
		}
	}
	for k, v := range values {
		merged[k] = v
	}
	return merged
}

// CheckRequired reports the first required input missing from values.
func (c *Config) CheckRequired(values map[string]any) error {
	for _, v := range c.InputVariables {
		if !v.Required {
			continue
		}
		if _, ok := values[v.Name]; !ok && v.Default == "" {
			return fmt.Errorf("template config: required input %q is missing", v.Name)
		}
	}
	return nil
}
