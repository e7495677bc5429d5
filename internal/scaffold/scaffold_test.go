package scaffold_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
	"wpscaffold.dev/wpscaffold/internal/replace"
	"wpscaffold.dev/wpscaffold/internal/scaffold"
	"wpscaffold.dev/wpscaffold/testhelpers"
)

const (
	pluginTemplate  = "wearerequired/wordpress-plugin-boilerplate"
	themeTemplate   = "wearerequired/wordpress-theme-boilerplate"
	projectTemplate = "wearerequired/wordpress-project-boilerplate"
)

func trimAll(messages []string) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = strings.TrimSpace(m)
	}
	return out
}

func TestPluginCreatesRenamesAndPushes(t *testing.T) {
	t.Parallel()

	scene := testhelpers.NewScene(t, testhelpers.SceneOptions{},
		"ghp_token",
		"Shop Tools",
		"Tools for the shop.",
		testhelpers.Default, // slug
		testhelpers.Default, // github slug
		testhelpers.Default, // namespace
		true,                // delete example block
		testhelpers.Default, // private
	)
	fixture := scene.AddTemplate(t, pluginTemplate, testhelpers.PluginBoilerplate())

	require.NoError(t, scaffold.Plugin(context.Background(), scene.Context))

	assert.Equal(t, 0, scene.Asker.Remaining())
	assert.Contains(t, scene.Asker.Defaults, "shop-tools")
	assert.Contains(t, scene.Asker.Defaults, `Required\ShopTools`)

	created := scene.GitHub.Repo("wearerequired/shop-tools")
	require.NotNil(t, created)
	assert.True(t, created.Private)
	assert.Equal(t, "Tools for the shop.", created.Description)
	assert.Equal(t, []string{scaffold.PluginTopic}, created.Topics)

	dir := scene.Path("shop-tools")
	plugin := testhelpers.ReadFile(t, dir, "plugin.php")
	assert.Contains(t, plugin, "Plugin Name: Shop Tools\n")
	assert.Contains(t, plugin, "Description: Tools for the shop.")
	assert.Contains(t, plugin, `namespace Required\ShopTools;`)
	assert.Contains(t, plugin, "Text Domain: shop-tools")
	assert.Contains(t, plugin, "'shop_tools'")

	composer := testhelpers.ReadFile(t, dir, "composer.json")
	assert.Contains(t, composer, `"Required\\ShopTools\\": "inc/"`)
	assert.Contains(t, composer, `"wearerequired/shop-tools"`)
	assert.Contains(t, testhelpers.ReadFile(t, dir, "package.json"), `"wearerequired/shop-tools"`)

	_, err := os.Stat(filepath.Join(dir, "assets", "src", "blocks", "example"))
	assert.True(t, os.IsNotExist(err))
	assert.NotContains(t, testhelpers.ReadFile(t, dir, "inc/Blocks/namespace.php"), "register_block_type")
	assert.NotContains(t, testhelpers.ReadFile(t, dir, "webpack.config.js"), "example-block-view")

	assert.Equal(t, []string{"Update plugin name", "Initial commit"}, trimAll(fixture.RemoteCommitMessages(t, "main")))
	pushed, ok := fixture.RemoteFile(t, "main", "plugin.php")
	require.True(t, ok)
	assert.Equal(t, plugin, pushed)

	// The build needs the example block, so it is left out.
	assert.Equal(t, []string{"npm install", "npm run lint-js:fix"}, scene.Shell.Commands())
	for _, call := range scene.Shell.Calls() {
		assert.Equal(t, dir, call.Dir)
	}

	token, err := scene.Credentials.Get()
	require.NoError(t, err)
	assert.Equal(t, "ghp_token", token)

	cached := scene.Config.LastInput("plugin")
	assert.Equal(t, "Shop Tools", cached[scaffold.KeyPluginName])
	assert.NotContains(t, cached, scaffold.KeyToken)

	out := scene.Output.String()
	assert.Contains(t, out, "✓ Creating repository using template")
	assert.Contains(t, out, "✓ Removing example block")
	assert.Contains(t, out, "✅  Done!")
	assert.Contains(t, out, "GitHub Repo: https://github.com/wearerequired/shop-tools")
}

func TestPluginKeepingExampleBlockBuilds(t *testing.T) {
	t.Parallel()

	scene := testhelpers.NewScene(t, testhelpers.SceneOptions{},
		"ghp_token", "Shop Tools", "", testhelpers.Default, testhelpers.Default, testhelpers.Default,
		false, false,
	)
	fixture := scene.AddTemplate(t, pluginTemplate, testhelpers.PluginBoilerplate())
	scene.Shell.On("npm run build", func(dir string) (string, error) {
		return "", os.WriteFile(filepath.Join(dir, "build.js"), []byte("built\n"), 0600)
	})

	require.NoError(t, scaffold.Plugin(context.Background(), scene.Context))

	assert.False(t, scene.GitHub.Repo("wearerequired/shop-tools").Private)
	assert.Equal(t, []string{"npm install", "npm run lint-js:fix", "npm run build"}, scene.Shell.Commands())
	assert.Equal(t, []string{"Build", "Update plugin name", "Initial commit"}, trimAll(fixture.RemoteCommitMessages(t, "main")))
	_, ok := fixture.RemoteFile(t, "main", "build.js")
	assert.True(t, ok)
	_, ok = fixture.RemoteFile(t, "main", "assets/src/blocks/example/index.js")
	assert.True(t, ok)
}

func TestPluginPreflight(t *testing.T) {
	t.Parallel()

	answers := []interface{}{
		"ghp_token", "Shop Tools", "", testhelpers.Default, testhelpers.Default, testhelpers.Default, true, true,
	}

	t.Run("repository exists", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.SceneOptions{}, answers...)
		scene.AddTemplate(t, pluginTemplate, testhelpers.PluginBoilerplate())
		scene.GitHub.AddRepo(&testhelpers.MockRepo{Owner: "wearerequired", Name: "shop-tools"})

		err := scaffold.Plugin(context.Background(), scene.Context)
		require.Error(t, err)
		assert.True(t, errors.Is(err, scaffolderrors.ErrRepositoryExists))
		assert.Contains(t, err.Error(), "wearerequired/shop-tools")
		assert.Empty(t, scene.Shell.Calls())
	})

	t.Run("directory exists", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.SceneOptions{}, answers...)
		scene.AddTemplate(t, pluginTemplate, testhelpers.PluginBoilerplate())
		require.NoError(t, os.Mkdir(scene.Path("shop-tools"), 0750))

		err := scaffold.Plugin(context.Background(), scene.Context)
		require.Error(t, err)
		assert.True(t, errors.Is(err, scaffolderrors.ErrDirectoryExists))
		assert.Contains(t, err.Error(), "please delete first")
		assert.Nil(t, scene.GitHub.Repo("wearerequired/shop-tools"))
	})

	t.Run("template from config", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.SceneOptions{
			Settings: map[string]string{
				"plugin_template_repo": "acme/plugin-starter",
				"github_organization":  "acme",
			},
		}, answers...)
		fixture := scene.AddTemplate(t, "acme/plugin-starter", testhelpers.PluginBoilerplate())

		require.NoError(t, scaffold.Plugin(context.Background(), scene.Context))
		assert.NotNil(t, scene.GitHub.Repo("acme/shop-tools"))
		assert.Len(t, fixture.RemoteCommitMessages(t, "main"), 2)
	})
}

func TestPluginStepFailureStopsPipeline(t *testing.T) {
	t.Parallel()

	scene := testhelpers.NewScene(t, testhelpers.SceneOptions{},
		"ghp_token", "Shop Tools", "", testhelpers.Default, testhelpers.Default, testhelpers.Default, false, true,
	)
	scene.AddTemplate(t, pluginTemplate, testhelpers.PluginBoilerplate())
	scene.Shell.On("npm install", func(string) (string, error) {
		return "", errors.New("npm ERR! network")
	})

	err := scaffold.Plugin(context.Background(), scene.Context)
	require.Error(t, err)

	var stepErr *scaffolderrors.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "Installing dependencies", stepErr.Step)
	assert.Equal(t, "Could not install dependencies.", stepErr.AbortMessage)
	assert.Equal(t, []string{"npm install"}, scene.Shell.Commands())

	out := scene.Output.String()
	assert.Contains(t, out, "✗ Installing dependencies")
	assert.NotContains(t, out, "Linting and fixing JavaScript files")
	assert.NotContains(t, out, "✅  Done!")
	assert.Contains(t, out, "https://github.com/wearerequired/shop-tools was created")
}

func TestPluginUsesLastInput(t *testing.T) {
	t.Parallel()

	scene := testhelpers.NewScene(t, testhelpers.SceneOptions{StoredToken: "ghp_stored"},
		"y",                 // use last input
		testhelpers.Default, // token
		testhelpers.Default, // name
		testhelpers.Default, // description
		testhelpers.Default, // slug
		testhelpers.Default, // github slug
		testhelpers.Default, // namespace
		testhelpers.Default, // delete example block
		testhelpers.Default, // private
	)
	require.NoError(t, scene.Config.SetLastInput("plugin", map[string]interface{}{
		scaffold.KeyPluginName:         "Cached Plugin",
		scaffold.KeyPluginSlug:         "cached",
		scaffold.KeyGitHubSlug:         "cached-plugin",
		scaffold.KeyDeleteExampleBlock: true,
		scaffold.KeyPrivateRepo:        false,
	}))
	scene.AddTemplate(t, pluginTemplate, testhelpers.PluginBoilerplate())

	require.NoError(t, scaffold.Plugin(context.Background(), scene.Context))

	assert.Equal(t, "Use last input as default?", scene.Asker.Asked[0])
	assert.Equal(t, []string{"ghp_stored", "Cached Plugin", "", "cached", "cached-plugin", `Required\Cached`}, scene.Asker.Defaults)

	created := scene.GitHub.Repo("wearerequired/cached-plugin")
	require.NotNil(t, created)
	assert.False(t, created.Private)
	assert.DirExists(t, scene.Path("cached"))
	assert.Equal(t, 0, scene.Credentials.Sets)
}

func TestThemeCreatesRenamesAndBuilds(t *testing.T) {
	t.Parallel()

	scene := testhelpers.NewScene(t, testhelpers.SceneOptions{},
		"ghp_token",
		"Shop Theme",
		"The shop theme.",
		testhelpers.Default, // slug
		testhelpers.Default, // namespace
		testhelpers.Default, // github slug
		testhelpers.Default, // private
	)
	fixture := scene.AddTemplate(t, themeTemplate, testhelpers.ThemeBoilerplate())

	require.NoError(t, scaffold.Theme(context.Background(), scene.Context))

	assert.Contains(t, scene.Asker.Defaults, `Required\Shop\Theme`)
	created := scene.GitHub.Repo("wearerequired/shop-theme")
	require.NotNil(t, created)
	assert.Equal(t, []string{scaffold.ThemeTopic}, created.Topics)

	dir := scene.Path("shop-theme")
	style := testhelpers.ReadFile(t, dir, "style.css")
	assert.Contains(t, style, "Theme Name: Shop Theme\n")
	assert.Contains(t, style, "Description: The shop theme.")
	assert.Contains(t, style, "Text Domain: shop-theme")

	functions := testhelpers.ReadFile(t, dir, "functions.php")
	assert.Contains(t, functions, `namespace Required\Shop\Theme;`)
	assert.Contains(t, functions, "'shop_theme'")
	assert.Contains(t, testhelpers.ReadFile(t, dir, "inc/template-tags.php"), "function shopTheme()")
	assert.Contains(t, testhelpers.ReadFile(t, dir, "composer.json"), `"Required\\Shop\\Theme\\"`)

	assert.Equal(t, []string{"npm install", "npm run build"}, scene.Shell.Commands())
	assert.Equal(t, []string{"Update theme name", "Initial commit"}, trimAll(fixture.RemoteCommitMessages(t, "main")))
	assert.NotNil(t, scene.Config.LastInput("theme"))
}

func projectScene(t *testing.T, answers ...interface{}) (*testhelpers.Scene, *testhelpers.GitRepo) {
	t.Helper()
	scene := testhelpers.NewScene(t, testhelpers.SceneOptions{}, answers...)
	return scene, scene.AddTemplate(t, projectTemplate, testhelpers.ProjectBoilerplate())
}

func TestProjectMultisite(t *testing.T) {
	t.Parallel()

	scene, fixture := projectScene(t,
		"ghp_token",
		"Shop",
		"The shop.",
		testhelpers.Default, // slug
		testhelpers.Default, // github slug
		true,                // multisite
		"shop.de",
		testhelpers.Default, // staging host
		testhelpers.Default, // development host
		"shop.ch", false,
		testhelpers.Default, false,
		"shop-ch", false,
		"s059.cyon.net",
		"shop",
		"/home/shop/www/",
		testhelpers.Default, // table prefix
	)

	require.NoError(t, scaffold.Project(context.Background(), scene.Context))
	assert.Equal(t, 0, scene.Asker.Remaining())
	assert.Contains(t, scene.Asker.Defaults, "staging.shop.de")
	assert.Contains(t, scene.Asker.Defaults, "staging.shop.ch")
	assert.Contains(t, scene.Asker.Defaults, "shop_")

	created := scene.GitHub.Repo("wearerequired/shop")
	require.NotNil(t, created)
	assert.True(t, created.Private)
	assert.Empty(t, created.Topics)

	dir := scene.Path("shop")
	lokal := testhelpers.ReadFile(t, dir, ".env.lokal")
	assert.Contains(t, lokal, "PROJECT_NAME=shop\n")
	assert.Contains(t, lokal, "\nPROJECT_SERVER_ALIAS=shop-ch.required.test\n")
	assert.Contains(t, lokal, "\nPROJECT_IS_MULTISITE=true\n")
	assert.Contains(t, lokal, "\nMIGRATE_PRODUCTION_FIND=shop.de,shop.ch\n")
	assert.Contains(t, lokal, "\nMIGRATE_PRODUCTION_REPLACE=shop.required.test,shop-ch.required.test\n")
	assert.Contains(t, lokal, "\nMIGRATE_STAGING_FIND=staging.shop.de,staging.shop.ch\n")
	assert.Contains(t, lokal, "\nMIGRATE_STAGING_REPLACE=shop.required.test,shop-ch.required.test\n")

	env := testhelpers.ReadFile(t, dir, ".local-server/.env")
	assert.Contains(t, env, "WP_TABLE_PREFIX=shop_\n")
	assert.Contains(t, env, "WP_HOME=https://shop.required.test\n")
	assert.Contains(t, env, "## MULTISITE\nWP_ALLOW_MULTISITE=true\n")
	assert.Contains(t, env, "DOMAIN_CURRENT_SITE=shop.required.test\n")
	assert.NotContains(t, env, "[[")

	salts := map[string]bool{}
	for _, name := range scaffold.SaltNames {
		m := regexp.MustCompile(`(?m)^` + name + `='(.*)'$`).FindStringSubmatch(env)
		require.Len(t, m, 2, name)
		assert.Len(t, m[1], scaffold.SaltLength, name)
		salts[m[1]] = true
	}
	assert.Len(t, salts, len(scaffold.SaltNames))

	deploy := testhelpers.ReadFile(t, dir, "deploy.yml")
	assert.Contains(t, deploy, "hostname: s059.cyon.net\n")
	assert.Contains(t, deploy, "user: shop\n")
	assert.Contains(t, deploy, "application: shop\n")
	assert.Contains(t, deploy, "deploy_path: /home/shop/www/{{application}}/{{stage}}\n")
	assert.Contains(t, deploy, "url: https://staging.shop.de\n")
	assert.Contains(t, deploy, "url: https://shop.de\n")

	assert.Contains(t, testhelpers.ReadFile(t, dir, ".local-server/.htaccess"), "^${COMPOSE_PROJECT_NAME}.de$")
	assert.Contains(t, testhelpers.ReadFile(t, dir, "README.md"), "# Shop\n\nThe shop.\n")
	assert.Contains(t, testhelpers.ReadFile(t, dir, "wp-cli.yml"), "shop@s059.cyon.net/home/shop/www/shop/staging")

	assert.Equal(t, []string{"Update project name", "Initial commit"}, trimAll(fixture.RemoteCommitMessages(t, "main")))
	assert.Empty(t, scene.Shell.Calls())
	assert.Nil(t, scene.Config.LastInput("project"))
}

func TestProjectSingleSite(t *testing.T) {
	t.Parallel()

	scene, _ := projectScene(t,
		"ghp_token", "Shop", "", testhelpers.Default, "shop-website",
		false,
		testhelpers.Default, testhelpers.Default, testhelpers.Default,
		"s059.cyon.net", "shop", "/home/shop/www/", testhelpers.Default,
	)

	require.NoError(t, scaffold.Project(context.Background(), scene.Context))
	assert.NotNil(t, scene.GitHub.Repo("wearerequired/shop-website"))
	assert.NotContains(t, scene.Asker.Asked, "Enter the production hostname alias (example.ch):")

	dir := scene.Path("shop")
	lokal := testhelpers.ReadFile(t, dir, ".env.lokal")
	assert.Contains(t, lokal, "#PROJECT_SERVER_ALIAS=\n")
	assert.Contains(t, lokal, "#PROJECT_IS_MULTISITE=true\n")

	env := testhelpers.ReadFile(t, dir, ".local-server/.env")
	assert.NotContains(t, env, "MULTISITE")
	assert.Contains(t, env, "WP_HOME=https://shop.required.test\n")
	assert.Contains(t, testhelpers.ReadFile(t, dir, "deploy.yml"), "url: https://shop.ch\n")
}

func TestProjectMultisiteRulesReplaceFirstMatchOnly(t *testing.T) {
	t.Parallel()

	rules := scaffold.ProjectMultisiteRules(scaffold.ProjectAnswers{
		Host:                   "shop.ch",
		StagingHost:            "staging.shop.ch",
		DevelopmentHost:        "shop.required.test",
		ProductionHostAliases:  []string{"shop.de", "shop.fr"},
		StagingHostAliases:     []string{"staging.shop.de", "staging.shop.fr"},
		DevelopmentHostAliases: []string{"shop-de.required.test", "shop-fr.required.test"},
	})

	in := "#PROJECT_SERVER_ALIAS=\n#MIGRATE_PRODUCTION_FIND=\n#MIGRATE_PRODUCTION_FIND=\n"
	out := replace.String(in, rules)
	assert.Equal(t,
		"PROJECT_SERVER_ALIAS=shop-de.required.test,shop-fr.required.test\n"+
			"MIGRATE_PRODUCTION_FIND=shop.ch,shop.de,shop.fr\n"+
			"#MIGRATE_PRODUCTION_FIND=\n",
		out)
}

func TestDevelopmentHostFilter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "shop.required.test", scaffold.DevelopmentHostFilter("shop"))
	assert.Equal(t, "shop.required.test", scaffold.DevelopmentHostFilter("shop.required.test"))
	assert.Equal(t, "shop-ch.required.test", scaffold.DevelopmentHostFilter("shop-ch"))
}

func TestProjectRulesOrder(t *testing.T) {
	t.Parallel()

	rules := scaffold.ProjectRules(scaffold.ProjectAnswers{
		Name:            "Shop",
		Slug:            "shop",
		Host:            "shop.com",
		StagingHost:     "stage.shop.com",
		DevelopmentHost: "shop.required.test",
	})
	out := replace.String("staging.project-name.ch project-name.ch project-name.required.test project-name ${COMPOSE_PROJECT_NAME}.ch", rules)
	assert.Equal(t, "stage.shop.com shop.com shop.required.test shop ${COMPOSE_PROJECT_NAME}.com", out)
}

func TestGenerateSalt(t *testing.T) {
	t.Parallel()

	salt, err := scaffold.GenerateSalt(nil)
	require.NoError(t, err)
	assert.Len(t, salt, scaffold.SaltLength)
	for _, r := range salt {
		assert.True(t, strings.ContainsRune(scaffold.SaltAlphabet, r), "unexpected %q", r)
	}

	other, err := scaffold.GenerateSalt(nil)
	require.NoError(t, err)
	assert.NotEqual(t, salt, other)

	zeros, err := scaffold.GenerateSalt(bytes.NewReader(make([]byte, 1024)))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("!", scaffold.SaltLength), zeros)

	_, err = scaffold.GenerateSalt(bytes.NewReader(nil))
	assert.Error(t, err)
}
