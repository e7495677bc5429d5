// Package prompt collects validated, ordered answers from the operator.
package prompt

import (
	"fmt"
	"strconv"

	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
	"wpscaffold.dev/wpscaffold/internal/validate"
)

// Kind selects how a question is rendered
type Kind int

const (
	// Input asks for free text
	Input Kind = iota
	// Password asks for hidden text
	Password
	// Confirm asks a yes/no question
	Confirm
	// Select asks for one of Options
	Select
)

// Question is one prompt
type Question struct {
	Key     string
	Message string
	Kind    Kind
	// Default is the pre-filled answer for Input, Password and Select.
	Default string
	// DefaultYes is the default for Confirm.
	DefaultYes bool
	// DefaultFunc computes the default from earlier answers and wins over Default
	// when it returns a non-empty string.
	DefaultFunc func(a *Answers) string
	// ItemDefault computes the default of the i-th item in CollectList.
	ItemDefault func(i int) string
	// Filter runs before Validate; the filtered value is stored.
	Filter   func(string) string
	Validate validate.Func
	Options  []string
	// When skips the question if it returns false.
	When func(a *Answers) bool
	Help string
}

// Asker renders single questions. SurveyAsker is the terminal implementation.
type Asker interface {
	// Ask asks an Input, Password or Select question with a default
	Ask(q Question, def string) (string, error)
	// Confirm asks a yes/no question
	Confirm(message string, def bool) (bool, error)
	// Expand asks a y/n question answered by key; def is "y", "n" or "" for no default
	Expand(message, def string) (bool, error)
	// MultiSelect lets the operator pick any number of options
	MultiSelect(message string, options []string) ([]string, error)
}

// Reporter receives validation messages
type Reporter interface {
	Warn(format string, args ...interface{})
}

// Collector asks questions in order and validates each answer
type Collector struct {
	asker    Asker
	reporter Reporter
}

// NewCollector creates a collector
func NewCollector(asker Asker, reporter Reporter) *Collector {
	return &Collector{asker: asker, reporter: reporter}
}

// Collect asks questions in order and returns the answers
func (c *Collector) Collect(questions []Question) (*Answers, error) {
	answers := NewAnswers()
	if err := c.CollectInto(answers, questions); err != nil {
		return nil, err
	}
	return answers, nil
}

// CollectInto asks questions in order and adds the results to answers, so
// defaults of later questions can read earlier ones.
func (c *Collector) CollectInto(answers *Answers, questions []Question) error {
	for _, q := range questions {
		if q.When != nil && !q.When(answers) {
			continue
		}

		if q.Kind == Confirm {
			yes, err := c.asker.Confirm(q.Message, q.DefaultYes)
			if err != nil {
				return err
			}
			answers.Set(q.Key, yes)
			continue
		}

		def := q.Default
		if q.DefaultFunc != nil {
			if computed := q.DefaultFunc(answers); computed != "" {
				def = computed
			}
		}

		value, err := c.askValid(q, def)
		if err != nil {
			return err
		}
		answers.Set(q.Key, value)
	}
	return nil
}

// askValid asks q until the filtered answer passes validation
func (c *Collector) askValid(q Question, def string) (string, error) {
	for {
		value, err := c.asker.Ask(q, def)
		if err != nil {
			return "", err
		}
		if q.Filter != nil {
			value = q.Filter(value)
		}
		if q.Validate == nil {
			return value, nil
		}
		verr := q.Validate(value)
		if verr == nil {
			return value, nil
		}
		if c.reporter != nil {
			c.reporter.Warn("%s", verr.Error())
		}
	}
}

// CollectList asks q repeatedly, each time followed by "Do you want to enter
// another?", and returns the answers in order. The list is also stored
// under q.Key. A false When skips the list entirely.
func (c *Collector) CollectList(answers *Answers, q Question) ([]string, error) {
	if q.When != nil && !q.When(answers) {
		answers.Set(q.Key, []string{})
		return nil, nil
	}

	var items []string
	for i := 0; ; i++ {
		def := q.Default
		if q.ItemDefault != nil {
			def = q.ItemDefault(i)
		}
		value, err := c.askValid(q, def)
		if err != nil {
			return nil, err
		}
		items = append(items, value)

		again, err := c.asker.Confirm("Do you want to enter another?", true)
		if err != nil {
			return nil, err
		}
		if !again {
			break
		}
	}

	answers.Set(q.Key, items)
	return items, nil
}

// ConfirmUntil asks message until the operator answers yes
func (c *Collector) ConfirmUntil(message string) error {
	for {
		yes, err := c.asker.Confirm(message, false)
		if err != nil {
			return err
		}
		if yes {
			return nil
		}
	}
}

// Ready asks whether to proceed, with no default so the operator cannot
// click straight through. Declining returns ErrAborted.
func (c *Collector) Ready(message string) error {
	yes, err := c.asker.Expand(message, "")
	if err != nil {
		return err
	}
	if !yes {
		return scaffolderrors.ErrAborted
	}
	return nil
}

// UseLastInput asks whether the cached answers should pre-fill the defaults
func (c *Collector) UseLastInput() (bool, error) {
	return c.asker.Expand("Use last input as default?", "y")
}

// Confirm asks a single yes/no question
func (c *Collector) Confirm(message string, def bool) (bool, error) {
	return c.asker.Confirm(message, def)
}

// MultiSelect asks the operator to pick targets
func (c *Collector) MultiSelect(message string, options []string) ([]string, error) {
	if len(options) == 0 {
		return nil, nil
	}
	return c.asker.MultiSelect(message, options)
}

// FormatBool renders a confirm answer the way it is cached
func FormatBool(b bool) string {
	return strconv.FormatBool(b)
}

// String describes the kind for debug output
func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Password:
		return "password"
	case Confirm:
		return "confirm"
	case Select:
		return "select"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}
