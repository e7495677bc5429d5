package scaffold

import (
	"context"
	"fmt"
	"os"

	"wpscaffold.dev/wpscaffold/internal/credentials"
	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
	"wpscaffold.dev/wpscaffold/internal/git"
	"wpscaffold.dev/wpscaffold/internal/github"
	"wpscaffold.dev/wpscaffold/internal/pipeline"
	"wpscaffold.dev/wpscaffold/internal/prompt"
	"wpscaffold.dev/wpscaffold/internal/runtime"
	"wpscaffold.dev/wpscaffold/internal/tui"
	"wpscaffold.dev/wpscaffold/internal/validate"
)

// TokenSettingsURL is where a personal access token is created
const TokenSettingsURL = "https://github.com/settings/tokens"

// KeyToken is the answer key of the GitHub token
const KeyToken = "github_token"

// KeyGitHubSlug is the answer key of the repository name
const KeyGitHubSlug = "github_slug"

// intro prints the welcome banner and asks whether to proceed
func intro(rt *runtime.Context, label, storedToken string) error {
	if !rt.ShowIntro() {
		return nil
	}

	s := rt.Splog
	s.Info("%s", tui.FormatTitle("👋  Welcome to "+rt.Tool))
	s.Newline()
	s.Info("This tool will guide you through the setup process of a new %s.", tui.FormatComment(label))
	if storedToken == "" {
		s.Newline()
		s.Info("Before you can start please make sure you have created a %s with the 'repo' scope selected.",
			tui.Hyperlink("personal access token for GitHub", TokenSettingsURL))
		s.Info("After the first run the token gets stored in your system's keychain and will be pre-filled on next runs.")
	}
	s.Newline()

	if err := rt.Collector.Ready("Are you ready to proceed?"); err != nil {
		return err
	}
	s.Newline()
	return nil
}

// tokenQuestion asks for the GitHub token, pre-filled with the stored one
func tokenQuestion(stored string) prompt.Question {
	return prompt.Question{
		Key:      KeyToken,
		Message:  "GitHub API token:",
		Kind:     prompt.Password,
		Default:  stored,
		Validate: validate.NotEmpty,
	}
}

// lastInput returns the cached answers of tool when the operator wants them
// as defaults, and an empty set otherwise.
func lastInput(rt *runtime.Context, tool string) (*prompt.Answers, error) {
	cached := rt.Config.LastInput(tool)
	if cached == nil {
		return prompt.NewAnswers(), nil
	}
	use, err := rt.Collector.UseLastInput()
	if err != nil {
		return nil, err
	}
	rt.Splog.Newline()
	if !use {
		return prompt.NewAnswers(), nil
	}
	return prompt.AnswersFromMap(cached), nil
}

// lastOr returns the cached answer for key, or fallback
func lastOr(last *prompt.Answers, key, fallback string) string {
	if last != nil && last.Has(key) {
		return last.String(key)
	}
	return fallback
}

// lastBoolOr returns the cached yes/no answer for key, or fallback
func lastBoolOr(last *prompt.Answers, key string, fallback bool) bool {
	if last != nil && last.Has(key) {
		return last.Bool(key)
	}
	return fallback
}

// saveAnswers stores a changed token and caches the answers of tool
func saveAnswers(rt *runtime.Context, storedToken, token, tool string, answers map[string]interface{}) error {
	if err := credentials.StoreIfChanged(rt.Credentials, storedToken, token); err != nil {
		return err
	}
	if tool == "" {
		return nil
	}
	if err := rt.Config.SetLastInput(tool, answers); err != nil {
		return fmt.Errorf("failed to cache last input: %w", err)
	}
	return nil
}

// preflight makes sure neither the repository nor the local directory exist
func preflight(ctx context.Context, gh github.Client, owner, name, dir string) error {
	exists, err := gh.HasRepository(ctx, owner, name)
	if err != nil {
		return fmt.Errorf("could not verify that the repository does not already exist: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s/%s", scaffolderrors.ErrRepositoryExists, owner, name)
	}

	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%w: %s, please delete first", scaffolderrors.ErrDirectoryExists, dir)
	}
	return nil
}

// run is the state shared by the steps of one generator run
type run struct {
	rt       *runtime.Context
	gh       github.Client
	token    string
	template github.TemplateOptions
	dir      string

	repo     *github.Repository
	checkout *git.Repository
}

func newRun(rt *runtime.Context, gh github.Client, token, templateRepo string, opts github.TemplateOptions, dir string) (*run, error) {
	owner, name, err := github.SplitFullName(templateRepo)
	if err != nil {
		return nil, fmt.Errorf("invalid template repository: %w", err)
	}
	opts.TemplateOwner = owner
	opts.TemplateName = name
	return &run{rt: rt, gh: gh, token: token, template: opts, dir: dir}, nil
}

// addPublishSteps adds the steps that create, tag and clone the repository.
// An empty topic leaves the topic step out.
func (r *run) addPublishSteps(p *pipeline.Pipeline, topic string) {
	p.Add("Creating repository using template", "Could not create repo.", r.createRepository)
	p.Add("Waiting until repository is ready", "Could not create repo.", r.waitUntilReady)
	if topic != "" {
		p.Add("Adding topic to repo", "Could not add topic to repo.", func(ctx context.Context) error {
			return r.gh.ReplaceTopics(ctx, r.repo.Owner, r.repo.Name, []string{topic})
		})
	}
	p.Add("Cloning repository into a new directory", "Git checkout failed.", r.clone)
}

func (r *run) createRepository(ctx context.Context) error {
	repo, err := r.gh.CreateFromTemplate(ctx, r.template)
	if err != nil {
		return err
	}
	r.repo = repo
	return nil
}

func (r *run) waitUntilReady(ctx context.Context) error {
	if timeout := r.rt.Config.ReadyTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.gh.WaitUntilReady(ctx, r.repo.Owner, r.repo.Name)
}

func (r *run) clone(ctx context.Context) error {
	url := r.repo.SSHURL
	if url == "" {
		url = r.repo.CloneURL
	}
	checkout, err := git.Clone(ctx, url, r.dir, git.CloneOptions{Token: r.token})
	if err != nil {
		return err
	}
	r.checkout = checkout
	return nil
}

// commit stages everything, commits with message and pushes
func (r *run) commit(message string) pipeline.Action {
	return func(ctx context.Context) error {
		if _, err := r.checkout.CommitAll(message); err != nil {
			return err
		}
		return r.checkout.Push(ctx)
	}
}

// npm runs an npm command inside the checkout
func (r *run) npm(args ...string) pipeline.Action {
	return func(ctx context.Context) error {
		_, err := r.rt.Shell.Run(ctx, r.dir, "npm", args...)
		return err
	}
}

// execute runs p and reports the result. On failure it names the side
// effects left behind, since completed steps are not rolled back.
func (r *run) execute(ctx context.Context, p *pipeline.Pipeline) error {
	r.rt.Splog.Newline()
	if _, err := p.Run(ctx); err != nil {
		if r.repo != nil {
			r.rt.Splog.Tip("The repository %s was created and may need to be deleted before retrying.", r.repo.HTMLURL)
		}
		if _, statErr := os.Stat(r.dir); statErr == nil {
			r.rt.Splog.Tip("The directory %s was created and may need to be deleted before retrying.", r.dir)
		}
		return err
	}

	r.rt.Splog.Newline()
	r.rt.Splog.Success("✅  Done!")
	r.rt.Splog.Info("Directory: %s", r.dir)
	r.rt.Splog.Info("GitHub Repo: %s", r.repo.HTMLURL)
	return nil
}
