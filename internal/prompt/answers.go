package prompt

import (
	"fmt"
	"strconv"
	"strings"
)

// Answers is an ordered set of prompt results keyed by question key
type Answers struct {
	keys   []string
	values map[string]interface{}
}

// NewAnswers creates an empty answer set
func NewAnswers() *Answers {
	return &Answers{values: make(map[string]interface{})}
}

// AnswersFromMap creates an answer set from a persisted map. Keys are sorted
// by the order given in keys; unknown keys are appended.
func AnswersFromMap(m map[string]interface{}, keys ...string) *Answers {
	a := NewAnswers()
	for _, k := range keys {
		if v, ok := m[k]; ok {
			a.Set(k, v)
		}
	}
	for k, v := range m {
		if !a.Has(k) {
			a.Set(k, v)
		}
	}
	return a
}

// Set stores value under key, keeping the first insertion position
func (a *Answers) Set(key string, value interface{}) {
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Has reports whether key was answered
func (a *Answers) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Keys returns the answered keys in order
func (a *Answers) Keys() []string {
	return append([]string(nil), a.keys...)
}

// String returns the answer for key as a string
func (a *Answers) String(key string) string {
	switch v := a.values[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	case []interface{}:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the answer for key as a bool
func (a *Answers) Bool(key string) bool {
	switch v := a.values[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Strings returns a list answer
func (a *Answers) Strings(key string) []string {
	switch v := a.values[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, len(v))
		for i, p := range v {
			out[i] = fmt.Sprint(p)
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return strings.Split(v, ",")
	}
	return nil
}

// Map returns a copy of the answers, suitable for persisting
func (a *Answers) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(a.values))
	for k, v := range a.values {
		m[k] = v
	}
	return m
}

// Subset returns a map holding only keys
func (a *Answers) Subset(keys ...string) map[string]interface{} {
	m := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		if v, ok := a.values[k]; ok {
			m[k] = v
		}
	}
	return m
}
