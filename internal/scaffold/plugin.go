package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"wpscaffold.dev/wpscaffold/internal/github"
	"wpscaffold.dev/wpscaffold/internal/naming"
	"wpscaffold.dev/wpscaffold/internal/pipeline"
	"wpscaffold.dev/wpscaffold/internal/prompt"
	"wpscaffold.dev/wpscaffold/internal/replace"
	"wpscaffold.dev/wpscaffold/internal/runtime"
	"wpscaffold.dev/wpscaffold/internal/validate"
)

// Answer keys of the plugin generator
const (
	KeyPluginName         = "plugin_name"
	KeyPluginDescription  = "plugin_description"
	KeyPluginSlug         = "plugin_slug"
	KeyPHPNamespace       = "php_namespace"
	KeyDeleteExampleBlock = "delete_example_block"
	KeyPrivateRepo        = "private_repo"
)

// PluginTopic is set on every generated plugin repository
const PluginTopic = "wordpress-plugin"

var pluginCacheKeys = []string{
	KeyPluginName, KeyPluginDescription, KeyPluginSlug, KeyPHPNamespace,
	KeyDeleteExampleBlock, KeyGitHubSlug, KeyPrivateRepo,
}

// PluginFiles are rewritten after a plugin is cloned
var PluginFiles = []string{
	"README.md",
	"composer.json",
	"package.json",
	"phpcs.xml.dist",
	"webpack.config.js",
	"plugin.php",
	"inc/**/*.php",
	"assets/src/**/*.{ts,tsx,js,json,css}",
}

// PluginAnswers are the collected inputs of the plugin generator
type PluginAnswers struct {
	Token              string
	Name               string
	Description        string
	Slug               string
	GitHubSlug         string
	Namespace          string
	DeleteExampleBlock bool
	PrivateRepo        bool
}

// PluginQuestions returns the plugin prompts. Cached answers in last replace
// the built-in defaults.
func PluginQuestions(storedToken string, last *prompt.Answers) []prompt.Question {
	return []prompt.Question{
		tokenQuestion(storedToken),
		{
			Key:      KeyPluginName,
			Message:  "Enter the name of the plugin:",
			Default:  lastOr(last, KeyPluginName, "My Plugin"),
			Validate: validate.NotEmpty,
		},
		{
			Key:     KeyPluginDescription,
			Message: "Enter the description of the plugin:",
			Default: lastOr(last, KeyPluginDescription, ""),
		},
		{
			Key:     KeyPluginSlug,
			Message: "Enter the slug of the plugin:",
			DefaultFunc: func(a *prompt.Answers) string {
				return lastOr(last, KeyPluginSlug, naming.Slug(a.String(KeyPluginName)))
			},
			Validate: validate.Slug,
		},
		{
			Key:     KeyGitHubSlug,
			Message: "Enter the slug of the GitHub repo:",
			DefaultFunc: func(a *prompt.Answers) string {
				return lastOr(last, KeyGitHubSlug, a.String(KeyPluginSlug))
			},
			Validate: validate.Slug,
		},
		{
			Key:     KeyPHPNamespace,
			Message: "Enter the PHP namespace of the plugin:",
			DefaultFunc: func(a *prompt.Answers) string {
				return lastOr(last, KeyPHPNamespace, naming.PluginNamespace(a.String(KeyPluginSlug)))
			},
			Validate: validate.PHPNamespace,
		},
		{
			Key:        KeyDeleteExampleBlock,
			Message:    "Delete the example block?",
			Kind:       prompt.Confirm,
			DefaultYes: lastBoolOr(last, KeyDeleteExampleBlock, false),
		},
		{
			Key:        KeyPrivateRepo,
			Message:    "Private GitHub repo?",
			Kind:       prompt.Confirm,
			DefaultYes: lastBoolOr(last, KeyPrivateRepo, true),
		},
	}
}

// NewPluginAnswers reads the plugin inputs from collected answers
func NewPluginAnswers(a *prompt.Answers) PluginAnswers {
	return PluginAnswers{
		Token:              a.String(KeyToken),
		Name:               a.String(KeyPluginName),
		Description:        a.String(KeyPluginDescription),
		Slug:               a.String(KeyPluginSlug),
		GitHubSlug:         a.String(KeyGitHubSlug),
		Namespace:          a.String(KeyPHPNamespace),
		DeleteExampleBlock: a.Bool(KeyDeleteExampleBlock),
		PrivateRepo:        a.Bool(KeyPrivateRepo),
	}
}

// PluginRules rename the plugin boilerplate placeholders. "Plugin Name: Plugin
// Name" headers keep their label; only the value is replaced.
func PluginRules(a PluginAnswers) []replace.Rule {
	return []replace.Rule{
		replace.KeepCapture(`Plugin Name([^:])`, a.Name),
		replace.Literal(`Required\\PluginName`, a.Namespace),
		replace.Literal(`Required\\\\PluginName`, naming.EscapeNamespace(a.Namespace)),
		replace.Literal(`plugin-name`, a.Slug),
		replace.Literal(`plugin_name`, naming.Snake(a.Slug)),
		replace.Literal(`pluginName`, naming.Camel(a.Slug)),
		replace.Literal(`Plugin description\.`, a.Description),
		replace.Literal(`wordpress-plugin-boilerplate`, a.GitHubSlug),
	}
}

var (
	exampleBlockRegistration = regexp.MustCompile(`(?s)\tregister_block_type\(.*\);\n`)
	exampleBlockEntry        = regexp.MustCompile(`\n\t\t'example-block-view': '\./blocks/example/view\.js',`)
)

// RemoveExampleBlock deletes the example block and its registration from a plugin checkout
func RemoveExampleBlock(dir string) error {
	if err := os.RemoveAll(filepath.Join(dir, "assets", "src", "blocks", "example")); err != nil {
		return err
	}
	if _, err := replace.Apply(dir, []string{"inc/Blocks/namespace.php"}, []replace.Rule{{Pattern: exampleBlockRegistration}}, replace.Options{}); err != nil {
		return err
	}
	_, err := replace.Apply(dir, []string{"webpack.config.js"}, []replace.Rule{{Pattern: exampleBlockEntry}}, replace.Options{})
	return err
}

// Plugin runs the plugin generator
func Plugin(ctx context.Context, rt *runtime.Context) error {
	stored, err := rt.Credentials.Get()
	if err != nil {
		return err
	}
	if err := intro(rt, "WordPress plugin", stored); err != nil {
		return err
	}
	last, err := lastInput(rt, "plugin")
	if err != nil {
		return err
	}

	answers, err := rt.Collector.Collect(PluginQuestions(stored, last))
	if err != nil {
		return err
	}
	a := NewPluginAnswers(answers)
	if err := saveAnswers(rt, stored, a.Token, "plugin", answers.Subset(pluginCacheKeys...)); err != nil {
		return err
	}

	gh := rt.NewGitHub(ctx, a.Token)
	org := rt.Config.GitHubOrganization()
	dir := filepath.Join(rt.WorkDir, a.Slug)
	if err := preflight(ctx, gh, org, a.GitHubSlug, dir); err != nil {
		return err
	}

	r, err := newRun(rt, gh, a.Token, rt.Config.PluginTemplateRepo(), github.TemplateOptions{
		Owner:       org,
		Name:        a.GitHubSlug,
		Description: a.Description,
		Private:     a.PrivateRepo,
	}, dir)
	if err != nil {
		return err
	}
	return r.execute(ctx, pluginPipeline(r, a))
}

func pluginPipeline(r *run, a PluginAnswers) *pipeline.Pipeline {
	p := pipeline.New(r.rt.Runner)
	r.addPublishSteps(p, PluginTopic)

	keepsExample := func() bool { return !a.DeleteExampleBlock }
	p.AddStep(pipeline.Step{
		Name:         "Removing example block",
		AbortMessage: "Could not remove example block.",
		Action: func(context.Context) error {
			return RemoveExampleBlock(r.dir)
		},
		Skip: keepsExample,
	})
	p.Add("Renaming plugin files", "Could not rename files.", func(context.Context) error {
		_, err := replace.Apply(r.dir, PluginFiles, PluginRules(a), replace.Options{})
		return err
	})
	p.Add("Committing updated files", "Could not push updated files.", r.commit("Update plugin name"))
	p.Add("Installing dependencies", "Could not install dependencies.", r.npm("install"))
	p.Add("Linting and fixing JavaScript files", "Could not lint/fix JavaScript files.", r.npm("run", "lint-js:fix"))

	// The build needs the example block's entry point.
	deletesExample := func() bool { return a.DeleteExampleBlock }
	p.AddStep(pipeline.Step{
		Name:         "Building plugin",
		AbortMessage: "Could not build plugin.",
		Action:       r.npm("run", "build"),
		Skip:         deletesExample,
	})
	p.AddStep(pipeline.Step{
		Name:         "Committing updated files",
		AbortMessage: "Could not push updated files.",
		Action:       r.commit("Build"),
		Skip:         deletesExample,
	})
	return p
}
