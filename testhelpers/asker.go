package testhelpers

import (
	"fmt"
	"sync"

	"wpscaffold.dev/wpscaffold/internal/prompt"
)

// UseDefault answers a scripted question with its default
type UseDefault struct{}

// Default is the scripted answer that accepts whatever default is offered
var Default = UseDefault{}

// ScriptedAsker answers prompts from a fixed queue, in order.
// Queue entries are strings (Ask, Expand), bools (Confirm, Expand),
// []string (MultiSelect) or Default.
type ScriptedAsker struct {
	mu    sync.Mutex
	queue []interface{}
	// Asked records every message in the order it was asked.
	Asked []string
	// Defaults records the default offered for every Ask call.
	Defaults []string
}

var _ prompt.Asker = (*ScriptedAsker)(nil)

// NewScriptedAsker creates an asker that replays answers
func NewScriptedAsker(answers ...interface{}) *ScriptedAsker {
	return &ScriptedAsker{queue: answers}
}

// Remaining returns the number of unused answers
func (s *ScriptedAsker) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *ScriptedAsker) next(message string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, message)
	if len(s.queue) == 0 {
		return nil, fmt.Errorf("no scripted answer for %q", message)
	}
	v := s.queue[0]
	s.queue = s.queue[1:]
	return v, nil
}

// Ask returns the next string answer
func (s *ScriptedAsker) Ask(q prompt.Question, def string) (string, error) {
	s.mu.Lock()
	s.Defaults = append(s.Defaults, def)
	s.mu.Unlock()

	v, err := s.next(q.Message)
	if err != nil {
		return "", err
	}
	switch a := v.(type) {
	case UseDefault:
		return def, nil
	case string:
		return a, nil
	}
	return "", fmt.Errorf("scripted answer %v for %q is not a string", v, q.Message)
}

// Confirm returns the next bool answer
func (s *ScriptedAsker) Confirm(message string, def bool) (bool, error) {
	v, err := s.next(message)
	if err != nil {
		return false, err
	}
	switch a := v.(type) {
	case UseDefault:
		return def, nil
	case bool:
		return a, nil
	}
	return false, fmt.Errorf("scripted answer %v for %q is not a bool", v, message)
}

// Expand returns the next bool or "y"/"n" answer
func (s *ScriptedAsker) Expand(message, def string) (bool, error) {
	v, err := s.next(message)
	if err != nil {
		return false, err
	}
	switch a := v.(type) {
	case UseDefault:
		if def == "" {
			return false, fmt.Errorf("%q has no default", message)
		}
		return def == "y", nil
	case bool:
		return a, nil
	case string:
		return a == "y" || a == "yes", nil
	}
	return false, fmt.Errorf("scripted answer %v for %q is not a bool", v, message)
}

// MultiSelect returns the next []string answer
func (s *ScriptedAsker) MultiSelect(message string, options []string) ([]string, error) {
	v, err := s.next(message)
	if err != nil {
		return nil, err
	}
	selected, ok := v.([]string)
	if !ok {
		return nil, fmt.Errorf("scripted answer %v for %q is not a selection", v, message)
	}
	for _, sel := range selected {
		found := false
		for _, opt := range options {
			if opt == sel {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%q is not one of the offered options %v", sel, options)
		}
	}
	return selected, nil
}
