package prompt_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
	"wpscaffold.dev/wpscaffold/internal/naming"
	"wpscaffold.dev/wpscaffold/internal/prompt"
	"wpscaffold.dev/wpscaffold/internal/validate"
	"wpscaffold.dev/wpscaffold/testhelpers"
)

type warnings struct {
	messages []string
}

func (w *warnings) Warn(format string, args ...interface{}) {
	w.messages = append(w.messages, fmt.Sprintf(format, args...))
}

func pluginQuestions() []prompt.Question {
	return []prompt.Question{
		{Key: "plugin_name", Message: "Enter the name of the plugin:", Default: "My Plugin", Validate: validate.NotEmpty},
		{
			Key:         "plugin_slug",
			Message:     "Enter the slug of the plugin:",
			DefaultFunc: func(a *prompt.Answers) string { return naming.Slug(a.String("plugin_name")) },
			Validate:    validate.Slug,
		},
		{Key: "private_repo", Message: "Private GitHub repo?", Kind: prompt.Confirm, DefaultYes: true},
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	t.Run("computed default follows earlier answers", func(t *testing.T) {
		t.Parallel()
		asker := testhelpers.NewScriptedAsker(testhelpers.Default, testhelpers.Default, testhelpers.Default)
		c := prompt.NewCollector(asker, &warnings{})

		answers, err := c.Collect(pluginQuestions())
		require.NoError(t, err)
		require.Equal(t, "My Plugin", answers.String("plugin_name"))
		require.Equal(t, "my-plugin", answers.String("plugin_slug"))
		require.True(t, answers.Bool("private_repo"))
		require.Equal(t, []string{"plugin_name", "plugin_slug", "private_repo"}, answers.Keys())
		require.Equal(t, []string{"My Plugin", "my-plugin"}, asker.Defaults)
	})

	t.Run("invalid answers are re-asked", func(t *testing.T) {
		t.Parallel()
		asker := testhelpers.NewScriptedAsker("Acme", "Not A Slug", "", "acme", false)
		w := &warnings{}
		c := prompt.NewCollector(asker, w)

		answers, err := c.Collect(pluginQuestions())
		require.NoError(t, err)
		require.Equal(t, "acme", answers.String("plugin_slug"))
		require.False(t, answers.Bool("private_repo"))
		require.Len(t, w.messages, 2)
		require.Equal(t, []string{
			"Enter the name of the plugin:",
			"Enter the slug of the plugin:",
			"Enter the slug of the plugin:",
			"Enter the slug of the plugin:",
			"Private GitHub repo?",
		}, asker.Asked)
	})

	t.Run("filter runs before validation", func(t *testing.T) {
		t.Parallel()
		asker := testhelpers.NewScriptedAsker("example")
		c := prompt.NewCollector(asker, nil)

		answers, err := c.Collect([]prompt.Question{{
			Key:     "development_host",
			Message: "Development host:",
			Filter: func(v string) string {
				return naming.LocalHost(strings.TrimSuffix(v, ".required.test"), ".required.test")
			},
			Validate: validate.Hostname,
		}})
		require.NoError(t, err)
		require.Equal(t, "example.required.test", answers.String("development_host"))
	})

	t.Run("when false skips the question", func(t *testing.T) {
		t.Parallel()
		asker := testhelpers.NewScriptedAsker()
		c := prompt.NewCollector(asker, nil)

		answers, err := c.Collect([]prompt.Question{{
			Key:     "skipped",
			Message: "never asked",
			When:    func(*prompt.Answers) bool { return false },
		}})
		require.NoError(t, err)
		require.False(t, answers.Has("skipped"))
		require.Empty(t, asker.Asked)
	})
}

func TestCollectList(t *testing.T) {
	t.Parallel()

	t.Run("accumulates until declined", func(t *testing.T) {
		t.Parallel()
		prod := []string{"example.ch", "example.de"}
		asker := testhelpers.NewScriptedAsker(testhelpers.Default, true, testhelpers.Default, false)
		c := prompt.NewCollector(asker, nil)
		answers := prompt.NewAnswers()

		items, err := c.CollectList(answers, prompt.Question{
			Key:         "staging_host_aliases",
			Message:     "Enter the staging hostname alias:",
			ItemDefault: func(i int) string { return naming.StagingHost(prod[i]) },
			Validate:    validate.Hostname,
		})
		require.NoError(t, err)
		require.Equal(t, []string{"staging.example.ch", "staging.example.de"}, items)
		require.Equal(t, "staging.example.ch,staging.example.de", answers.String("staging_host_aliases"))
	})

	t.Run("skipped list is empty", func(t *testing.T) {
		t.Parallel()
		c := prompt.NewCollector(testhelpers.NewScriptedAsker(), nil)
		answers := prompt.NewAnswers()

		items, err := c.CollectList(answers, prompt.Question{
			Key:  "aliases",
			When: func(*prompt.Answers) bool { return false },
		})
		require.NoError(t, err)
		require.Empty(t, items)
		require.Equal(t, "", answers.String("aliases"))
	})
}

func TestConfirmations(t *testing.T) {
	t.Parallel()

	t.Run("confirm until yes", func(t *testing.T) {
		t.Parallel()
		asker := testhelpers.NewScriptedAsker(false, false, true)
		c := prompt.NewCollector(asker, nil)

		require.NoError(t, c.ConfirmUntil("Is the domain set up?"))
		require.Len(t, asker.Asked, 3)
	})

	t.Run("declining ready aborts", func(t *testing.T) {
		t.Parallel()
		c := prompt.NewCollector(testhelpers.NewScriptedAsker("n"), nil)
		require.ErrorIs(t, c.Ready("Are you ready to proceed?"), scaffolderrors.ErrAborted)
	})

	t.Run("ready has no default", func(t *testing.T) {
		t.Parallel()
		c := prompt.NewCollector(testhelpers.NewScriptedAsker(testhelpers.Default), nil)
		require.Error(t, c.Ready("Are you ready to proceed?"))
	})

	t.Run("last input defaults to yes", func(t *testing.T) {
		t.Parallel()
		c := prompt.NewCollector(testhelpers.NewScriptedAsker(testhelpers.Default), nil)
		use, err := c.UseLastInput()
		require.NoError(t, err)
		require.True(t, use)
	})
}

func TestAnswers(t *testing.T) {
	t.Parallel()

	a := prompt.AnswersFromMap(map[string]interface{}{
		"plugin_name":  "Acme",
		"private_repo": true,
		"aliases":      []interface{}{"a.ch", "b.ch"},
	}, "plugin_name", "private_repo")

	require.Equal(t, []string{"plugin_name", "private_repo", "aliases"}, a.Keys())
	require.Equal(t, "Acme", a.String("plugin_name"))
	require.True(t, a.Bool("private_repo"))
	require.Equal(t, []string{"a.ch", "b.ch"}, a.Strings("aliases"))
	require.Equal(t, "a.ch,b.ch", a.String("aliases"))
	require.Equal(t, map[string]interface{}{"plugin_name": "Acme"}, a.Subset("plugin_name", "missing"))
}

func TestNonInteractiveAsker(t *testing.T) {
	t.Parallel()

	c := prompt.NewCollector(prompt.NonInteractiveAsker{}, &warnings{})

	_, err := c.Collect(pluginQuestions())
	require.ErrorIs(t, err, scaffolderrors.ErrNotInteractive)
	require.ErrorIs(t, c.Ready("Are you ready to proceed?"), scaffolderrors.ErrNotInteractive)
}
