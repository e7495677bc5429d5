package scaffold

import (
	"context"
	"path/filepath"

	"wpscaffold.dev/wpscaffold/internal/github"
	"wpscaffold.dev/wpscaffold/internal/naming"
	"wpscaffold.dev/wpscaffold/internal/pipeline"
	"wpscaffold.dev/wpscaffold/internal/prompt"
	"wpscaffold.dev/wpscaffold/internal/replace"
	"wpscaffold.dev/wpscaffold/internal/runtime"
	"wpscaffold.dev/wpscaffold/internal/validate"
)

// Answer keys of the theme generator
const (
	KeyThemeName        = "theme_name"
	KeyThemeDescription = "theme_description"
	KeyThemeSlug        = "theme_slug"
)

// ThemeTopic is set on every generated theme repository
const ThemeTopic = "wordpress-theme"

var themeCacheKeys = []string{
	KeyThemeName, KeyThemeDescription, KeyThemeSlug, KeyPHPNamespace, KeyGitHubSlug, KeyPrivateRepo,
}

// ThemeFiles are rewritten after a theme is cloned
var ThemeFiles = []string{
	"README.md",
	"composer.json",
	"package.json",
	"phpcs.xml.dist",
	"webpack.config.js",
	"style.css",
	"**/*.php",
}

// ThemeAnswers are the collected inputs of the theme generator
type ThemeAnswers struct {
	Token       string
	Name        string
	Description string
	Slug        string
	Namespace   string
	GitHubSlug  string
	PrivateRepo bool
}

// ThemeQuestions returns the theme prompts
func ThemeQuestions(storedToken string, last *prompt.Answers) []prompt.Question {
	return []prompt.Question{
		tokenQuestion(storedToken),
		{
			Key:      KeyThemeName,
			Message:  "Enter the name of the theme:",
			Default:  lastOr(last, KeyThemeName, "My Theme"),
			Validate: validate.NotEmpty,
		},
		{
			Key:     KeyThemeDescription,
			Message: "Enter the description of the theme:",
			Default: lastOr(last, KeyThemeDescription, ""),
		},
		{
			Key:     KeyThemeSlug,
			Message: "Enter the slug of the theme:",
			DefaultFunc: func(a *prompt.Answers) string {
				return lastOr(last, KeyThemeSlug, naming.Slug(a.String(KeyThemeName)))
			},
			Validate: validate.Slug,
		},
		{
			Key:     KeyPHPNamespace,
			Message: "Enter the PHP namespace of the theme:",
			DefaultFunc: func(a *prompt.Answers) string {
				return lastOr(last, KeyPHPNamespace, naming.ThemeNamespace(a.String(KeyThemeSlug)))
			},
			Validate: validate.PHPNamespace,
		},
		{
			Key:     KeyGitHubSlug,
			Message: "Enter the slug of the GitHub repo:",
			DefaultFunc: func(a *prompt.Answers) string {
				return lastOr(last, KeyGitHubSlug, a.String(KeyThemeSlug))
			},
			Validate: validate.Slug,
		},
		{
			Key:        KeyPrivateRepo,
			Message:    "Private GitHub repo?",
			Kind:       prompt.Confirm,
			DefaultYes: lastBoolOr(last, KeyPrivateRepo, true),
		},
	}
}

// NewThemeAnswers reads the theme inputs from collected answers
func NewThemeAnswers(a *prompt.Answers) ThemeAnswers {
	return ThemeAnswers{
		Token:       a.String(KeyToken),
		Name:        a.String(KeyThemeName),
		Description: a.String(KeyThemeDescription),
		Slug:        a.String(KeyThemeSlug),
		Namespace:   a.String(KeyPHPNamespace),
		GitHubSlug:  a.String(KeyGitHubSlug),
		PrivateRepo: a.Bool(KeyPrivateRepo),
	}
}

// ThemeRules rename the theme boilerplate placeholders
func ThemeRules(a ThemeAnswers) []replace.Rule {
	return []replace.Rule{
		replace.KeepCapture(`Theme Name([^:])`, a.Name),
		replace.Literal(`Required\\ThemeName`, a.Namespace),
		replace.Literal(`Required\\\\ThemeName`, naming.EscapeNamespace(a.Namespace)),
		replace.Literal(`theme-name`, a.Slug),
		replace.Literal(`theme_name`, naming.Snake(a.Slug)),
		replace.Literal(`ThemeName`, naming.Camel(a.Slug)),
		replace.Literal(`Theme description\.`, a.Description),
		replace.Literal(`wordpress-theme-boilerplate`, a.GitHubSlug),
	}
}

// Theme runs the theme generator
func Theme(ctx context.Context, rt *runtime.Context) error {
	stored, err := rt.Credentials.Get()
	if err != nil {
		return err
	}
	if err := intro(rt, "WordPress theme", stored); err != nil {
		return err
	}
	last, err := lastInput(rt, "theme")
	if err != nil {
		return err
	}

	answers, err := rt.Collector.Collect(ThemeQuestions(stored, last))
	if err != nil {
		return err
	}
	a := NewThemeAnswers(answers)
	if err := saveAnswers(rt, stored, a.Token, "theme", answers.Subset(themeCacheKeys...)); err != nil {
		return err
	}

	gh := rt.NewGitHub(ctx, a.Token)
	org := rt.Config.GitHubOrganization()
	dir := filepath.Join(rt.WorkDir, a.Slug)
	if err := preflight(ctx, gh, org, a.GitHubSlug, dir); err != nil {
		return err
	}

	r, err := newRun(rt, gh, a.Token, rt.Config.ThemeTemplateRepo(), github.TemplateOptions{
		Owner:       org,
		Name:        a.GitHubSlug,
		Description: a.Description,
		Private:     a.PrivateRepo,
	}, dir)
	if err != nil {
		return err
	}
	return r.execute(ctx, themePipeline(r, a))
}

func themePipeline(r *run, a ThemeAnswers) *pipeline.Pipeline {
	p := pipeline.New(r.rt.Runner)
	r.addPublishSteps(p, ThemeTopic)
	p.Add("Renaming theme files", "Could not rename files.", func(context.Context) error {
		_, err := replace.Apply(r.dir, ThemeFiles, ThemeRules(a), replace.Options{})
		return err
	})
	p.Add("Committing updated files", "Could not push updated files.", r.commit("Update theme name"))
	p.Add("Installing dependencies", "Could not install dependencies.", r.npm("install"))
	p.Add("Building theme", "Could not build theme.", r.npm("run", "build"))
	p.Add("Committing updated files", "Could not push updated files.", r.commit("Build"))
	return p
}
