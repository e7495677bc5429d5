package bulk

import (
	"context"
	"errors"
	"strings"

	"wpscaffold.dev/wpscaffold/internal/credentials"
	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
	"wpscaffold.dev/wpscaffold/internal/github"
	"wpscaffold.dev/wpscaffold/internal/pipeline"
	"wpscaffold.dev/wpscaffold/internal/prompt"
	"wpscaffold.dev/wpscaffold/internal/runtime"
	"wpscaffold.dev/wpscaffold/internal/tui"
	"wpscaffold.dev/wpscaffold/internal/validate"
)

// Answer keys shared by the bulk commands
const (
	KeyToken = "github_token"
	KeyQuery = "query"
)

// Run processes every target concurrently behind the progress view and
// returns one result per target, in target order.
func Run(ctx context.Context, splog *tui.Splog, targets []string, fn pipeline.TargetFunc) []pipeline.TargetResult {
	reporter := tui.StartTargetProgress(targets, splog)
	results := pipeline.FanOut(ctx, targets, fn, func(idx int, result pipeline.TargetResult) {
		switch {
		case result.Err != nil:
			reporter.Update(idx, tui.TargetFailed, causeOf(result.Err))
		case result.Outcome.Skipped:
			reporter.Update(idx, tui.TargetSkipped, result.Outcome.Message)
		default:
			reporter.Update(idx, tui.TargetDone, result.Outcome.Message)
		}
	})
	reporter.Wait()

	if failed := pipeline.Failed(results); len(failed) > 0 {
		splog.Newline()
		splog.Warn("%d of %d targets failed.", len(failed), len(results))
	}
	return results
}

// causeOf strips the target prefix that the progress view already shows
func causeOf(err error) string {
	var targetErr *scaffolderrors.TargetError
	if errors.As(err, &targetErr) {
		return targetErr.Err.Error()
	}
	return err.Error()
}

// session is the token and client of one command run
type session struct {
	rt    *runtime.Context
	gh    github.Client
	token string
}

// ask collects the token and the command's questions, stores a changed
// token and caches the answers under tool.
func ask(ctx context.Context, rt *runtime.Context, tool string, questions func(last *prompt.Answers) []prompt.Question, cacheKeys ...string) (*session, *prompt.Answers, error) {
	stored, err := rt.Credentials.Get()
	if err != nil {
		return nil, nil, err
	}

	last := prompt.AnswersFromMap(rt.Config.LastInput(tool))
	all := append([]prompt.Question{{
		Key:      KeyToken,
		Message:  "GitHub API token:",
		Kind:     prompt.Password,
		Default:  stored,
		Validate: validate.NotEmpty,
	}}, questions(last)...)

	answers, err := rt.Collector.Collect(all)
	if err != nil {
		return nil, nil, err
	}

	token := answers.String(KeyToken)
	if err := credentials.StoreIfChanged(rt.Credentials, stored, token); err != nil {
		return nil, nil, err
	}
	if err := rt.Config.SetLastInput(tool, answers.Subset(cacheKeys...)); err != nil {
		return nil, nil, err
	}

	return &session{rt: rt, gh: rt.NewGitHub(ctx, token), token: token}, answers, nil
}

// lastOr returns the cached answer for key, or fallback
func lastOr(last *prompt.Answers, key, fallback string) string {
	if v := last.String(key); v != "" {
		return v
	}
	return fallback
}

// queryQuestion asks for a GitHub search query, defaulting to the configured organization
func queryQuestion(rt *runtime.Context, last *prompt.Answers) prompt.Question {
	return prompt.Question{
		Key:      KeyQuery,
		Message:  "Search query:",
		Default:  lastOr(last, KeyQuery, "user:"+rt.Config.GitHubOrganization()),
		Validate: validate.NotEmpty,
	}
}

// selectTargets lets the operator pick from options, lists the picks under
// heading and asks for the final go-ahead.
func (s *session) selectTargets(message, heading string, options []string) ([]string, error) {
	selected, err := s.rt.Collector.MultiSelect(message, options)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, scaffolderrors.ErrAborted
	}

	s.rt.Splog.Newline()
	s.rt.Splog.Info(heading, len(selected))
	s.rt.Splog.Info("%s", strings.Join(selected, ", "))
	s.rt.Splog.Newline()

	if err := s.rt.Collector.Ready("Are you ready to proceed?"); err != nil {
		return nil, err
	}
	return selected, nil
}
