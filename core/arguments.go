package core

// Arguments is the named key/value input mapping for a function invocation.
// Insertion order is not significant. An Arguments map is owned by a single
// invocation; filters may read and mutate it freely before the wrapped
// function runs, and the same map instance is shared with the prompt-render
// step so mutations made in either place are visible in both.
type Arguments map[string]any

// NewArguments returns an empty, non-nil Arguments map.
func NewArguments() Arguments { return Arguments{} }

// Get returns the raw value for key and whether it was present.
func (a Arguments) Get(key string) (any, bool) {
	v, ok := a[key]
	return v, ok
}

// GetString returns the value for key as a string. Non-string values and
// missing keys yield the empty string with ok == false.
func (a Arguments) GetString(key string) (string, bool) {
	v, ok := a[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores value under key, replacing any previous value.
func (a Arguments) Set(key string, value any) { a[key] = value }

// Clone returns a shallow copy. Values are shared; the map itself is
// independent, so the copy can be mutated without affecting the original.
func (a Arguments) Clone() Arguments {
	c := make(Arguments, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}
