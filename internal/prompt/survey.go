package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
)

// SurveyAsker renders questions in the terminal with survey
type SurveyAsker struct {
	// PageSize is the number of options shown by select prompts.
	PageSize int
}

var _ Asker = (*SurveyAsker)(nil)

// NewSurveyAsker creates a terminal asker
func NewSurveyAsker() *SurveyAsker {
	return &SurveyAsker{PageSize: 15}
}

// Ask asks an Input, Password or Select question
func (s *SurveyAsker) Ask(q Question, def string) (string, error) {
	var answer string
	var p survey.Prompt

	switch q.Kind {
	case Password:
		message := q.Message
		if def != "" {
			message += " (leave empty to keep the stored value)"
		}
		p = &survey.Password{Message: message, Help: q.Help}
	case Select:
		sel := &survey.Select{Message: q.Message, Options: q.Options, Help: q.Help, PageSize: s.PageSize}
		if def != "" {
			sel.Default = def
		}
		p = sel
	default:
		p = &survey.Input{Message: q.Message, Default: def, Help: q.Help}
	}

	if err := survey.AskOne(p, &answer); err != nil {
		return "", mapSurveyError(err)
	}
	if q.Kind == Password && answer == "" {
		answer = def
	}
	return strings.TrimSpace(answer), nil
}

// Confirm asks a yes/no question
func (s *SurveyAsker) Confirm(message string, def bool) (bool, error) {
	var answer bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &answer); err != nil {
		return false, mapSurveyError(err)
	}
	return answer, nil
}

// Expand asks a y/n question; with an empty default an answer must be typed
func (s *SurveyAsker) Expand(message, def string) (bool, error) {
	keys := "y/n"
	switch def {
	case "y":
		keys = "Y/n"
	case "n":
		keys = "y/N"
	}

	var answer string
	p := &survey.Input{
		Message: fmt.Sprintf("%s (%s)", message, keys),
		Help:    "y - Yes\nn - No",
	}
	validator := func(ans interface{}) error {
		v := strings.ToLower(strings.TrimSpace(fmt.Sprint(ans)))
		if v == "" && def != "" {
			return nil
		}
		switch v {
		case "y", "yes", "n", "no":
			return nil
		}
		return errors.New("please answer y or n")
	}
	if err := survey.AskOne(p, &answer, survey.WithValidator(validator)); err != nil {
		return false, mapSurveyError(err)
	}

	v := strings.ToLower(strings.TrimSpace(answer))
	if v == "" {
		v = def
	}
	return v == "y" || v == "yes", nil
}

// MultiSelect lets the operator pick any number of options
func (s *SurveyAsker) MultiSelect(message string, options []string) ([]string, error) {
	var selected []string
	p := &survey.MultiSelect{Message: message, Options: options, PageSize: s.PageSize}
	if err := survey.AskOne(p, &selected); err != nil {
		return nil, mapSurveyError(err)
	}
	return selected, nil
}

// mapSurveyError turns Ctrl-C into an abort
func mapSurveyError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return fmt.Errorf("interrupted: %w", scaffolderrors.ErrAborted)
	}
	return err
}

// NonInteractiveAsker fails every question. It stands in for SurveyAsker
// when stdin is not a terminal so a piped run stops with a clear error.
type NonInteractiveAsker struct{}

var _ Asker = NonInteractiveAsker{}

func (NonInteractiveAsker) Ask(Question, string) (string, error) {
	return "", scaffolderrors.ErrNotInteractive
}

func (NonInteractiveAsker) Confirm(string, bool) (bool, error) {
	return false, scaffolderrors.ErrNotInteractive
}

func (NonInteractiveAsker) Expand(string, string) (bool, error) {
	return false, scaffolderrors.ErrNotInteractive
}

func (NonInteractiveAsker) MultiSelect(string, []string) ([]string, error) {
	return nil, scaffolderrors.ErrNotInteractive
}
