package bulk

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"wpscaffold.dev/wpscaffold/internal/github"
	"wpscaffold.dev/wpscaffold/internal/pipeline"
	"wpscaffold.dev/wpscaffold/internal/prompt"
	"wpscaffold.dev/wpscaffold/internal/runtime"
	"wpscaffold.dev/wpscaffold/internal/utils"
	"wpscaffold.dev/wpscaffold/internal/validate"
)

// UpdateFileTool is the last-input cache key of update-file
const UpdateFileTool = "update_file"

// Answer keys of update-file
const (
	KeyPath          = "path"
	KeyBranch        = "branch"
	KeyCommitMessage = "commit_message"
	KeyFile          = "file"
)

// DefaultBranch is offered when no branch was used before
const DefaultBranch = "master"

// UpdateFileQuestions returns the update-file prompts after the token
func UpdateFileQuestions(rt *runtime.Context, last *prompt.Answers) []prompt.Question {
	return []prompt.Question{
		{
			Key:      KeyPath,
			Message:  "Path:",
			Default:  last.String(KeyPath),
			Validate: validate.NotEmpty,
		},
		{
			Key:      KeyBranch,
			Message:  "Branch:",
			Default:  lastOr(last, KeyBranch, DefaultBranch),
			Validate: validate.NotEmpty,
		},
		queryQuestion(rt, last),
		{
			Key:     KeyCommitMessage,
			Message: "Commit Message:",
			DefaultFunc: func(a *prompt.Answers) string {
				return fmt.Sprintf("Update %s.", a.String(KeyPath))
			},
			Validate: validate.NotEmpty,
		},
		{
			Key:     KeyFile,
			Message: "File:",
			Default: last.String(KeyFile),
			Filter: func(v string) string {
				if expanded, err := utils.ExpandHome(v); err == nil {
					return expanded
				}
				return v
			},
			Validate: validate.File,
		},
	}
}

// FileTarget is the commit update-file makes in every selected repository
type FileTarget struct {
	Path    string
	Branch  string
	Message string
	Content []byte
}

// UpdateFile pushes one local file to every selected repository. A
// repository whose copy is already identical is skipped.
func UpdateFile(ctx context.Context, rt *runtime.Context) error {
	s, answers, err := ask(ctx, rt, UpdateFileTool, func(last *prompt.Answers) []prompt.Question {
		return UpdateFileQuestions(rt, last)
	}, KeyPath, KeyBranch, KeyFile, KeyQuery)
	if err != nil {
		return err
	}

	repos, err := s.gh.SearchRepositories(ctx, answers.String(KeyQuery))
	if err != nil {
		return fmt.Errorf("repo search failed: %w", err)
	}
	if len(repos) == 0 {
		rt.Splog.Warn("No repositories found.")
		return nil
	}

	byName := make(map[string]github.Repository, len(repos))
	options := make([]string, 0, len(repos))
	for _, repo := range repos {
		if _, dup := byName[repo.Name]; dup {
			continue
		}
		byName[repo.Name] = repo
		options = append(options, repo.Name)
	}

	path := answers.String(KeyPath)
	selected, err := s.selectTargets("Select repositories", "Updating '"+path+"' for the following %d repositories:", options)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(answers.String(KeyFile))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", answers.String(KeyFile), err)
	}
	target := FileTarget{
		Path:    path,
		Branch:  answers.String(KeyBranch),
		Message: answers.String(KeyCommitMessage),
		Content: content,
	}

	Run(ctx, rt.Splog, selected, func(ctx context.Context, name string) (pipeline.Outcome, error) {
		repo := byName[name]
		return PushFile(ctx, s.gh, repo.Owner, repo.Name, target)
	})
	return nil
}

// PushFile commits target to owner/repo unless the file already has the same content
func PushFile(ctx context.Context, gh github.Client, owner, repo string, target FileTarget) (pipeline.Outcome, error) {
	existing, err := gh.GetFile(ctx, owner, repo, target.Path, target.Branch)
	if err != nil {
		return pipeline.Outcome{}, err
	}

	update := github.FileUpdate{
		Path:    target.Path,
		Branch:  target.Branch,
		Message: target.Message,
		Content: target.Content,
	}
	if existing != nil {
		if bytes.Equal(existing.Content, target.Content) {
			return pipeline.Outcome{Skipped: true, Message: "Content is unchanged."}, nil
		}
		update.SHA = existing.SHA
	}

	url, err := gh.PutFile(ctx, owner, repo, update)
	if err != nil {
		return pipeline.Outcome{}, fmt.Errorf("file not updated: %w", err)
	}
	return pipeline.Outcome{Message: "File updated. " + url}, nil
}
