package scaffold

import (
	"context"
	"path/filepath"
	"strings"

	"wpscaffold.dev/wpscaffold/internal/git"
	"wpscaffold.dev/wpscaffold/internal/pipeline"
	"wpscaffold.dev/wpscaffold/internal/prompt"
	"wpscaffold.dev/wpscaffold/internal/runtime"
)

// KeyDirectoryName is the answer key of the checkout directory
const KeyDirectoryName = "directory_name"

// TemplateCloneURL is the SSH clone URL of an "owner/name" repository
func TemplateCloneURL(fullName string) string {
	return "git@github.com:" + fullName + ".git"
}

// Checkout clones the plugin boilerplate into a prompted directory
func Checkout(ctx context.Context, rt *runtime.Context) error {
	return CheckoutFrom(ctx, rt, TemplateCloneURL(rt.Config.PluginTemplateRepo()))
}

// CheckoutFrom clones url into a directory below the working directory. An
// empty directory name clones into the working directory itself.
func CheckoutFrom(ctx context.Context, rt *runtime.Context, url string) error {
	answers, err := rt.Collector.Collect([]prompt.Question{{
		Key:     KeyDirectoryName,
		Message: "Enter a directory name for the checkout (leave empty for current directory)",
		Default: "wordpress-plugin-boilerplate",
	}})
	if err != nil {
		return err
	}

	dest := rt.WorkDir
	if name := strings.TrimSuffix(answers.String(KeyDirectoryName), "/"); name != "" {
		dest = filepath.Join(rt.WorkDir, name)
	}

	p := pipeline.New(rt.Runner)
	p.Add("Cloning", "Checkout failed.", func(ctx context.Context) error {
		_, err := git.Clone(ctx, url, dest, git.CloneOptions{})
		return err
	})
	if _, err := p.Run(ctx); err != nil {
		return err
	}

	rt.Splog.Newline()
	rt.Splog.Success("✅  Checkout done in %s", dest)
	return nil
}
