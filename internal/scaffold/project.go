package scaffold

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"wpscaffold.dev/wpscaffold/internal/github"
	"wpscaffold.dev/wpscaffold/internal/naming"
	"wpscaffold.dev/wpscaffold/internal/pipeline"
	"wpscaffold.dev/wpscaffold/internal/prompt"
	"wpscaffold.dev/wpscaffold/internal/replace"
	"wpscaffold.dev/wpscaffold/internal/runtime"
	"wpscaffold.dev/wpscaffold/internal/validate"
)

// Answer keys of the project generator
const (
	KeyProjectName            = "project_name"
	KeyProjectDescription     = "project_description"
	KeyProjectSlug            = "project_slug"
	KeyIsMultisite            = "is_multisite"
	KeyProjectHost            = "project_host"
	KeyStagingHost            = "staging_host"
	KeyDevelopmentHost        = "development_host"
	KeyProductionHostAliases  = "production_host_aliases"
	KeyStagingHostAliases     = "staging_host_aliases"
	KeyDevelopmentHostAliases = "development_host_aliases"
	KeyHostingHostname        = "hosting_hostname"
	KeyHostingUsername        = "hosting_username"
	KeyHostingPath            = "hosting_path"
	KeyTablePrefix            = "table_prefix"
)

// DevelopmentSuffix is the domain of every local development host
const DevelopmentSuffix = ".required.test"

// ProjectFiles are rewritten after a project is cloned
var ProjectFiles = []string{
	".env.lokal",
	"README.md",
	"composer.json",
	"phpcs.xml.dist",
	"deploy.yml",
	"wp-cli.yml",
	".local-server/.env",
	".local-server/.htaccess",
}

// MultisiteEnvBlock is appended to .local-server/.env of a multisite project
const MultisiteEnvBlock = `
## MULTISITE
WP_ALLOW_MULTISITE=true
MULTISITE=true
SUBDOMAIN_INSTALL=true
DOMAIN_CURRENT_SITE=project-name.required.test
PATH_CURRENT_SITE="/"
SITE_ID_CURRENT_SITE=1
BLOG_ID_CURRENT_SITE=1
NOBLOGREDIRECT=https://project-name.required.test

## COOKIE
COOKIE_DOMAIN=""
COOKIEPATH="/"
SITECOOKIEPATH="/"
ADMIN_COOKIE_PATH="/wp-admin"
`

// ProjectAnswers are the collected inputs of the project generator
type ProjectAnswers struct {
	Token                  string
	Name                   string
	Description            string
	Slug                   string
	GitHubSlug             string
	Multisite              bool
	Host                   string
	StagingHost            string
	DevelopmentHost        string
	ProductionHostAliases  []string
	StagingHostAliases     []string
	DevelopmentHostAliases []string
	HostingHostname        string
	HostingUsername        string
	HostingPath            string
	TablePrefix            string
}

// DevelopmentHostFilter moves the development suffix to the end of value
func DevelopmentHostFilter(value string) string {
	return strings.Replace(value, DevelopmentSuffix, "", 1) + DevelopmentSuffix
}

// ProjectQuestions returns the prompts asked before the availability checks
func ProjectQuestions(storedToken string) []prompt.Question {
	return []prompt.Question{
		tokenQuestion(storedToken),
		{
			Key:      KeyProjectName,
			Message:  "Enter the name of the project:",
			Default:  "My Project",
			Validate: validate.NotEmpty,
		},
		{
			Key:     KeyProjectDescription,
			Message: "Enter the description of the project:",
		},
		{
			Key:     KeyProjectSlug,
			Message: "Enter the project slug:",
			DefaultFunc: func(a *prompt.Answers) string {
				return naming.Slug(a.String(KeyProjectName))
			},
			Validate: validate.Slug,
		},
		{
			Key:     KeyGitHubSlug,
			Message: "Enter the slug for the GitHub repo:",
			DefaultFunc: func(a *prompt.Answers) string {
				return a.String(KeyProjectSlug)
			},
			Validate: validate.Slug,
		},
	}
}

// ProjectHostQuestions returns the multisite and host prompts
func ProjectHostQuestions() []prompt.Question {
	return []prompt.Question{
		{
			Key:     KeyIsMultisite,
			Message: "Is the project a multisite?",
			Kind:    prompt.Confirm,
		},
		{
			Key:     KeyProjectHost,
			Message: "Enter the hostname of production (example.com):",
			DefaultFunc: func(a *prompt.Answers) string {
				return a.String(KeyProjectSlug) + ".ch"
			},
			Validate: validate.Hostname,
		},
		{
			Key:     KeyStagingHost,
			Message: "Enter the hostname of staging (staging.example.com):",
			DefaultFunc: func(a *prompt.Answers) string {
				return naming.StagingHost(a.String(KeyProjectHost))
			},
			Validate: validate.Hostname,
		},
		{
			Key:     KeyDevelopmentHost,
			Message: "Enter the hostname for development (example.required.test):",
			DefaultFunc: func(a *prompt.Answers) string {
				return naming.DevelopmentHost(a.String(KeyProjectHost))
			},
			Filter:   DevelopmentHostFilter,
			Validate: validate.Hostname,
		},
	}
}

// ProjectAliasQuestions returns the repeated alias prompts. Staging and
// development aliases default to the production alias at the same position.
func ProjectAliasQuestions(a *prompt.Answers) []prompt.Question {
	multisite := func(a *prompt.Answers) bool { return a.Bool(KeyIsMultisite) }
	production := func(i int) string {
		aliases := a.Strings(KeyProductionHostAliases)
		if i < len(aliases) {
			return aliases[i]
		}
		return ""
	}

	return []prompt.Question{
		{
			Key:      KeyProductionHostAliases,
			Message:  "Enter the production hostname alias (example.ch):",
			Validate: validate.Hostname,
			When:     multisite,
		},
		{
			Key:     KeyStagingHostAliases,
			Message: "Enter the staging hostname alias (staging.example.ch):",
			ItemDefault: func(i int) string {
				if alias := production(i); alias != "" {
					return naming.StagingHost(alias)
				}
				return ""
			},
			Validate: validate.Hostname,
			When:     multisite,
		},
		{
			Key:     KeyDevelopmentHostAliases,
			Message: "Enter the development hostname alias (example-ch.required.test):",
			ItemDefault: func(i int) string {
				if alias := production(i); alias != "" {
					return naming.DevelopmentHost(alias) + DevelopmentSuffix
				}
				return ""
			},
			Filter:   DevelopmentHostFilter,
			Validate: validate.Hostname,
			When:     multisite,
		},
	}
}

// ProjectHostingQuestions returns the hosting server prompts
func ProjectHostingQuestions() []prompt.Question {
	return []prompt.Question{
		{
			Key:      KeyHostingHostname,
			Message:  "Enter the hostname for the hosting server (s059.cyon.net):",
			Validate: validate.Hostname,
		},
		{
			Key:      KeyHostingUsername,
			Message:  "Enter the SSH username for the hosting server (required):",
			Validate: validate.AlphanumericDash,
		},
		{
			Key:      KeyHostingPath,
			Message:  "Enter the path on the hosting server (/home/required/www/):",
			Validate: validate.DeployPath,
		},
		{
			Key:     KeyTablePrefix,
			Message: "Enter the WordPress database table prefix (project_):",
			DefaultFunc: func(a *prompt.Answers) string {
				return naming.TablePrefix(a.String(KeyProjectSlug))
			},
			Validate: validate.AlphanumericUnderscore,
		},
	}
}

// NewProjectAnswers reads the project inputs from collected answers
func NewProjectAnswers(a *prompt.Answers) ProjectAnswers {
	return ProjectAnswers{
		Token:                  a.String(KeyToken),
		Name:                   a.String(KeyProjectName),
		Description:            a.String(KeyProjectDescription),
		Slug:                   a.String(KeyProjectSlug),
		GitHubSlug:             a.String(KeyGitHubSlug),
		Multisite:              a.Bool(KeyIsMultisite),
		Host:                   a.String(KeyProjectHost),
		StagingHost:            a.String(KeyStagingHost),
		DevelopmentHost:        a.String(KeyDevelopmentHost),
		ProductionHostAliases:  a.Strings(KeyProductionHostAliases),
		StagingHostAliases:     a.Strings(KeyStagingHostAliases),
		DevelopmentHostAliases: a.Strings(KeyDevelopmentHostAliases),
		HostingHostname:        a.String(KeyHostingHostname),
		HostingUsername:        a.String(KeyHostingUsername),
		HostingPath:            a.String(KeyHostingPath),
		TablePrefix:            a.String(KeyTablePrefix),
	}
}

// hostList joins a host and its aliases with commas
func hostList(host string, aliases []string) string {
	return strings.Join(append([]string{host}, aliases...), ",")
}

// ProjectMultisiteRules enable the multisite settings in .env.lokal.
// Each placeholder is replaced once.
func ProjectMultisiteRules(a ProjectAnswers) []replace.Rule {
	return []replace.Rule{
		replace.First(`#PROJECT_SERVER_ALIAS=`, "PROJECT_SERVER_ALIAS="+strings.Join(a.DevelopmentHostAliases, ",")),
		replace.First(`#PROJECT_IS_MULTISITE=true`, "PROJECT_IS_MULTISITE=true"),
		replace.First(`#MIGRATE_PRODUCTION_FIND=`, "MIGRATE_PRODUCTION_FIND="+hostList(a.Host, a.ProductionHostAliases)),
		replace.First(`#MIGRATE_PRODUCTION_REPLACE=`, "MIGRATE_PRODUCTION_REPLACE="+hostList(a.DevelopmentHost, a.DevelopmentHostAliases)),
		replace.First(`#MIGRATE_STAGING_FIND=`, "MIGRATE_STAGING_FIND="+hostList(a.StagingHost, a.StagingHostAliases)),
		replace.First(`#MIGRATE_STAGING_REPLACE=`, "MIGRATE_STAGING_REPLACE="+hostList(a.DevelopmentHost, a.DevelopmentHostAliases)),
	}
}

// ProjectEnvRules fill the table prefix and a fresh key or salt for every
// [[NAME]] placeholder of .local-server/.env
func ProjectEnvRules(tablePrefix string, source io.Reader) ([]replace.Rule, error) {
	rules := []replace.Rule{replace.Literal(`wp_table_prefix_`, tablePrefix)}
	for _, name := range SaltNames {
		salt, err := GenerateSalt(source)
		if err != nil {
			return nil, err
		}
		rules = append(rules, replace.Literal(regexp.QuoteMeta("[["+name+"]]"), salt))
	}
	return rules, nil
}

// ProjectRules rename the project boilerplate placeholders. Specific hosts
// come before the bare slug so they are not rewritten twice.
func ProjectRules(a ProjectAnswers) []replace.Rule {
	return []replace.Rule{
		replace.Literal(`Project Name`, a.Name),
		replace.Literal(`Project description\.`, a.Description),
		replace.Literal(`project-name\.required\.test`, a.DevelopmentHost),
		replace.Literal(`staging\.project-name\.ch`, a.StagingHost),
		replace.Literal(`project-name\.ch`, a.Host),
		replace.Literal(`\$\{COMPOSE_PROJECT_NAME\}\.ch`, "${COMPOSE_PROJECT_NAME}."+naming.TLD(a.Host)),
		replace.Literal(`hosting-username`, a.HostingUsername),
		replace.Literal(`hostname\.ch`, a.HostingHostname),
		replace.Literal(`/home/required/www/`, a.HostingPath),
		replace.Literal(`project-name`, a.Slug),
	}
}

// RenameProject applies the multisite, env and placeholder rules to a project checkout
func RenameProject(dir string, a ProjectAnswers, source io.Reader) error {
	if a.Multisite {
		if err := appendFile(filepath.Join(dir, ".local-server", ".env"), MultisiteEnvBlock); err != nil {
			return err
		}
		if _, err := replace.Apply(dir, []string{".env.lokal"}, ProjectMultisiteRules(a), replace.Options{}); err != nil {
			return err
		}
	}

	envRules, err := ProjectEnvRules(a.TablePrefix, source)
	if err != nil {
		return err
	}
	if _, err := replace.Apply(dir, []string{".local-server/.env"}, envRules, replace.Options{}); err != nil {
		return err
	}

	_, err = replace.Apply(dir, ProjectFiles, ProjectRules(a), replace.Options{})
	return err
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return f.Close()
}

// Project runs the project generator
func Project(ctx context.Context, rt *runtime.Context) error {
	stored, err := rt.Credentials.Get()
	if err != nil {
		return err
	}
	if err := intro(rt, "WordPress project", stored); err != nil {
		return err
	}

	answers, err := rt.Collector.Collect(ProjectQuestions(stored))
	if err != nil {
		return err
	}
	token := answers.String(KeyToken)
	if err := saveAnswers(rt, stored, token, "", nil); err != nil {
		return err
	}

	gh := rt.NewGitHub(ctx, token)
	org := rt.Config.GitHubOrganization()
	dir := filepath.Join(rt.WorkDir, answers.String(KeyProjectSlug))
	if err := preflight(ctx, gh, org, answers.String(KeyGitHubSlug), dir); err != nil {
		return err
	}

	if err := rt.Collector.CollectInto(answers, ProjectHostQuestions()); err != nil {
		return err
	}
	for _, q := range ProjectAliasQuestions(answers) {
		if _, err := rt.Collector.CollectList(answers, q); err != nil {
			return err
		}
	}
	if err := rt.Collector.CollectInto(answers, ProjectHostingQuestions()); err != nil {
		return err
	}
	a := NewProjectAnswers(answers)

	r, err := newRun(rt, gh, token, rt.Config.ProjectTemplateRepo(), github.TemplateOptions{
		Owner:       org,
		Name:        a.GitHubSlug,
		Description: a.Description,
		Private:     true,
	}, dir)
	if err != nil {
		return err
	}
	return r.execute(ctx, projectPipeline(r, a))
}

func projectPipeline(r *run, a ProjectAnswers) *pipeline.Pipeline {
	p := pipeline.New(r.rt.Runner)
	r.addPublishSteps(p, "")
	p.Add("Renaming project files", "Could not rename files.", func(context.Context) error {
		return RenameProject(r.dir, a, nil)
	})
	p.Add("Committing updated files", "Could not push updated files.", r.commit("Update project name"))
	return p
}
