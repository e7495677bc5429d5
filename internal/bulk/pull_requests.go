package bulk

import (
	"context"
	"fmt"
	"os"
	"time"

	"wpscaffold.dev/wpscaffold/internal/git"
	"wpscaffold.dev/wpscaffold/internal/github"
	"wpscaffold.dev/wpscaffold/internal/pipeline"
	"wpscaffold.dev/wpscaffold/internal/prompt"
	"wpscaffold.dev/wpscaffold/internal/runtime"
	"wpscaffold.dev/wpscaffold/internal/shell"
)

// PullRequestTool is the last-input cache key shared by merge-pr and close-pr
const PullRequestTool = "merge_pr"

// ComposerInstallArgs refresh composer dependencies without any interaction
var ComposerInstallArgs = []string{"install", "--no-progress", "--prefer-dist", "--no-ansi", "--no-interaction"}

// ModifiedFilesMessage is the commit message for files changed by composer
const ModifiedFilesMessage = "Add modified files"

// PullRequestLabel is how a pull request is offered for selection
func PullRequestLabel(pr github.PullRequestInfo) string {
	return fmt.Sprintf("%s#%d %s", pr.FullName(), pr.Number, pr.Title)
}

// searchPullRequests asks for a query and returns the matching pull requests
// keyed by label, together with the labels in result order.
func searchPullRequests(ctx context.Context, rt *runtime.Context) (*session, map[string]github.PullRequestInfo, []string, error) {
	s, answers, err := ask(ctx, rt, PullRequestTool, func(last *prompt.Answers) []prompt.Question {
		return []prompt.Question{queryQuestion(rt, last)}
	}, KeyQuery)
	if err != nil {
		return nil, nil, nil, err
	}

	prs, err := s.gh.SearchPullRequests(ctx, answers.String(KeyQuery))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("PR search failed: %w", err)
	}
	if len(prs) == 0 {
		rt.Splog.Warn("No pull requests found.")
		return s, nil, nil, nil
	}

	byLabel := make(map[string]github.PullRequestInfo, len(prs))
	labels := make([]string, 0, len(prs))
	for _, pr := range prs {
		label := PullRequestLabel(pr)
		byLabel[label] = pr
		labels = append(labels, label)
	}
	return s, byLabel, labels, nil
}

// MergePR refreshes the composer dependencies of every selected pull
// request, pushes the result and squash-merges it.
func MergePR(ctx context.Context, rt *runtime.Context) error {
	s, byLabel, labels, err := searchPullRequests(ctx, rt)
	if err != nil || len(labels) == 0 {
		return err
	}
	selected, err := s.selectTargets("Select pull requests", "Merging the following %d pull requests:", labels)
	if err != nil {
		return err
	}

	merger := &Merger{GitHub: s.gh, Shell: rt.Shell, Token: s.token, Delay: rt.Config.MergeDelay()}
	Run(ctx, rt.Splog, selected, func(ctx context.Context, label string) (pipeline.Outcome, error) {
		return merger.Merge(ctx, byLabel[label])
	})
	return nil
}

// ClosePR closes every selected pull request and deletes its branch
func ClosePR(ctx context.Context, rt *runtime.Context) error {
	s, byLabel, labels, err := searchPullRequests(ctx, rt)
	if err != nil || len(labels) == 0 {
		return err
	}
	selected, err := s.selectTargets("Select pull requests", "Closing the following %d pull requests:", labels)
	if err != nil {
		return err
	}

	Run(ctx, rt.Splog, selected, func(ctx context.Context, label string) (pipeline.Outcome, error) {
		return ClosePullRequest(ctx, s.gh, byLabel[label])
	})
	return nil
}

// ClosePullRequest closes pr and deletes its head branch
func ClosePullRequest(ctx context.Context, gh github.Client, pr github.PullRequestInfo) (pipeline.Outcome, error) {
	full, err := gh.GetPullRequest(ctx, pr.Owner, pr.Repo, pr.Number)
	if err != nil {
		return pipeline.Outcome{}, err
	}
	if err := gh.ClosePullRequest(ctx, pr.Owner, pr.Repo, pr.Number); err != nil {
		return pipeline.Outcome{}, err
	}
	if err := gh.DeleteBranch(ctx, pr.Owner, pr.Repo, full.Head); err != nil {
		return pipeline.Outcome{}, err
	}
	return pipeline.Outcome{Message: "Closed and deleted " + full.Head + "."}, nil
}

// Merger merges pull requests after refreshing their composer dependencies
type Merger struct {
	GitHub github.Client
	Shell  shell.Runner
	Token  string
	// Delay gives GitHub time to register a pushed commit before the merge.
	Delay time.Duration
}

// Merge checks out the head branch of pr in a temporary directory, runs
// composer install, commits and pushes whatever changed, then squash-merges
// pr and deletes its branch. The temporary directory is always removed.
func (m *Merger) Merge(ctx context.Context, pr github.PullRequestInfo) (pipeline.Outcome, error) {
	full, err := m.GitHub.GetPullRequest(ctx, pr.Owner, pr.Repo, pr.Number)
	if err != nil {
		return pipeline.Outcome{}, err
	}

	dir, err := os.MkdirTemp("", "merge-pr-")
	if err != nil {
		return pipeline.Outcome{}, fmt.Errorf("failed to create checkout directory: %w", err)
	}
	defer os.RemoveAll(dir)

	url := full.HeadCloneURL
	if url == "" {
		url = full.HeadSSHURL
	}
	checkout, err := git.Clone(ctx, url, dir, git.CloneOptions{Branch: full.Head, Token: m.Token})
	if err != nil {
		return pipeline.Outcome{}, err
	}

	if _, err := m.Shell.Run(ctx, dir, "composer", ComposerInstallArgs...); err != nil {
		return pipeline.Outcome{}, err
	}

	hash, err := checkout.CommitTracked(ModifiedFilesMessage)
	if err != nil {
		return pipeline.Outcome{}, err
	}
	if hash != "" {
		if err := checkout.Push(ctx); err != nil {
			return pipeline.Outcome{}, err
		}
		if err := pipeline.SleepContext(ctx, m.Delay); err != nil {
			return pipeline.Outcome{}, err
		}
	}

	if err := m.GitHub.MergePullRequest(ctx, pr.Owner, pr.Repo, pr.Number); err != nil {
		return pipeline.Outcome{}, err
	}
	if err := m.GitHub.DeleteBranch(ctx, pr.Owner, pr.Repo, full.Head); err != nil {
		return pipeline.Outcome{}, err
	}

	if hash != "" {
		return pipeline.Outcome{Message: "Pushed modified files and merged."}, nil
	}
	return pipeline.Outcome{Message: "Merged."}, nil
}
