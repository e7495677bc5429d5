package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
	"wpscaffold.dev/wpscaffold/internal/naming"
	"wpscaffold.dev/wpscaffold/internal/prompt"
	"wpscaffold.dev/wpscaffold/internal/replace"
	"wpscaffold.dev/wpscaffold/internal/runtime"
	"wpscaffold.dev/wpscaffold/internal/validate"
)

// PluginMainFile is the main file of an unrenamed plugin boilerplate
const PluginMainFile = "plugin-name.php"

// ThemeMainFile marks a theme boilerplate checkout
const ThemeMainFile = "style.css"

// PluginInPlaceFiles are rewritten by ReplacePlugin; mainFile is the plugin's main PHP file
func PluginInPlaceFiles(mainFile string) []string {
	return []string{
		"composer.json",
		"package.json",
		"phpcs.xml.dist",
		".eslintrc.js",
		mainFile,
		"inc/**/*.php",
		"assets/js/src/**/*.js",
	}
}

// PluginInPlaceRules rename every plugin placeholder of a fresh boilerplate
// checkout. The "Plugin Name:" header label is kept.
func PluginInPlaceRules(name, slug, githubSlug string) []replace.Rule {
	return []replace.Rule{
		replace.KeepCapture(`Plugin Name([^:])`, name),
		replace.Literal(`Plugin name`, name),
		replace.Literal(`PluginName`, naming.Pascal(slug)),
		replace.Literal(`plugin-name`, slug),
		replace.Literal(`plugin_name`, naming.Snake(slug)),
		replace.Literal(`wordpress-plugin-boilerplate`, githubSlug),
	}
}

func inPlaceQuestions(kind, defaultName string) []prompt.Question {
	nameKey, slugKey := kind+"_name", kind+"_slug"
	return []prompt.Question{
		{
			Key:      nameKey,
			Message:  fmt.Sprintf("Enter the name of the %s:", kind),
			Default:  defaultName,
			Validate: validate.NotEmpty,
		},
		{
			Key:     slugKey,
			Message: fmt.Sprintf("Enter the slug of the %s:", kind),
			DefaultFunc: func(a *prompt.Answers) string {
				return naming.Slug(a.String(nameKey))
			},
			Validate: validate.Slug,
		},
		{
			Key:     KeyGitHubSlug,
			Message: "Enter the slug of the GitHub repo:",
			DefaultFunc: func(a *prompt.Answers) string {
				return a.String(slugKey)
			},
			Validate: validate.Slug,
		},
	}
}

// requireFile fails unless name exists in dir
func requireFile(dir, name string) error {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s not found", scaffolderrors.ErrNotAProject, path)
	}
	return nil
}

func confirmRewrite(rt *runtime.Context, name, slug string) error {
	rt.Splog.Newline()
	yes, err := rt.Collector.Confirm(fmt.Sprintf("Start rewriting the files for %s with slug %s?", name, slug), true)
	if err != nil {
		return err
	}
	if !yes {
		return scaffolderrors.ErrAborted
	}
	rt.Splog.Newline()
	return nil
}

func reportChanged(rt *runtime.Context, results []replace.Result, dryRun bool) {
	verb := "Updated"
	if dryRun {
		verb = "Would update"
	}
	for _, file := range replace.ChangedFiles(results) {
		rt.Splog.Info("ℹ️  %s %s", verb, file)
	}
}

// ReplacePlugin renames the plugin boilerplate checked out in the working
// directory. A dry run reports what would change and writes nothing.
func ReplacePlugin(_ context.Context, rt *runtime.Context, dryRun bool) error {
	dir := rt.WorkDir
	if dryRun {
		rt.Splog.Warn("Dry run enabled.")
	}
	if err := requireFile(dir, PluginMainFile); err != nil {
		return err
	}

	answers, err := rt.Collector.Collect(inPlaceQuestions("plugin", "My Plugin"))
	if err != nil {
		return err
	}
	name, slug, githubSlug := answers.String(KeyPluginName), answers.String(KeyPluginSlug), answers.String(KeyGitHubSlug)
	if err := confirmRewrite(rt, name, slug); err != nil {
		return err
	}

	mainFile := slug + ".php"
	if dryRun {
		rt.Splog.Info("ℹ️  Would rename main plugin file to %s", mainFile)
		rt.Splog.Info("ℹ️  Would update README.md")
		mainFile = PluginMainFile
	} else {
		if err := os.Rename(filepath.Join(dir, PluginMainFile), filepath.Join(dir, mainFile)); err != nil {
			return fmt.Errorf("could not rename file: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# "+name+"\n"), 0644); err != nil {
			return fmt.Errorf("could not update README.md file: %w", err)
		}
		rt.Splog.Info("ℹ️  Renamed main plugin file")
		rt.Splog.Info("ℹ️  Updated README.md")
	}

	results, err := replace.Apply(dir, PluginInPlaceFiles(mainFile), PluginInPlaceRules(name, slug, githubSlug), replace.Options{Dry: dryRun})
	if err != nil {
		return fmt.Errorf("could not replace files: %w", err)
	}
	reportChanged(rt, results, dryRun)

	rt.Splog.Newline()
	rt.Splog.Success("✅  Done")
	return nil
}

// ReplaceTheme renames the theme boilerplate checked out in the working
// directory with the same rules as the theme generator.
func ReplaceTheme(_ context.Context, rt *runtime.Context, dryRun bool) error {
	dir := rt.WorkDir
	if dryRun {
		rt.Splog.Warn("Dry run enabled.")
	}
	if err := requireFile(dir, ThemeMainFile); err != nil {
		return err
	}

	questions := inPlaceQuestions("theme", "My Theme")
	questions = append(questions,
		prompt.Question{
			Key:     KeyThemeDescription,
			Message: "Enter the description of the theme:",
		},
		prompt.Question{
			Key:     KeyPHPNamespace,
			Message: "Enter the PHP namespace of the theme:",
			DefaultFunc: func(a *prompt.Answers) string {
				return naming.ThemeNamespace(a.String(KeyThemeSlug))
			},
			Validate: validate.PHPNamespace,
		},
	)
	answers, err := rt.Collector.Collect(questions)
	if err != nil {
		return err
	}
	a := NewThemeAnswers(answers)
	if err := confirmRewrite(rt, a.Name, a.Slug); err != nil {
		return err
	}

	results, err := replace.Apply(dir, ThemeFiles, ThemeRules(a), replace.Options{Dry: dryRun})
	if err != nil {
		return fmt.Errorf("could not replace files: %w", err)
	}
	reportChanged(rt, results, dryRun)

	rt.Splog.Newline()
	rt.Splog.Success("✅  Done")
	return nil
}
