package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/iancoleman/strcase"
)

// CurrentVersion is the layout version written by this build
const CurrentVersion = "1.2.0"

// Migration rewrites raw settings from the previous layout
type Migration func(settings map[string]interface{}) error

// Migrations are applied in version order to every file older than the key
var Migrations = map[string]Migration{
	"1.1.0": migrateSnakeCaseKeys,
	"1.2.0": migrateTemplateRepoURLs,
}

// Migrate upgrades settings in place to CurrentVersion and reports whether
// anything ran.
func Migrate(settings map[string]interface{}) (bool, error) {
	from := "0.0.0"
	if v, ok := settings[KeyVersion].(string); ok && v != "" {
		from = v
	}
	current, err := semver.NewVersion(from)
	if err != nil {
		return false, fmt.Errorf("parsing config version %q: %w", from, err)
	}
	target := semver.MustParse(CurrentVersion)
	if !current.LessThan(target) {
		return false, nil
	}

	versions := make([]*semver.Version, 0, len(Migrations))
	for v := range Migrations {
		versions = append(versions, semver.MustParse(v))
	}
	sort.Sort(semver.Collection(versions))

	for _, v := range versions {
		if !current.LessThan(v) || v.GreaterThan(target) {
			continue
		}
		if err := Migrations[v.Original()](settings); err != nil {
			return false, fmt.Errorf("migration %s: %w", v.Original(), err)
		}
	}

	settings[KeyVersion] = CurrentVersion
	return true, nil
}

// migrateSnakeCaseKeys converts the camelCase keys of the first release and
// moves the per-tool "...LastInput" entries under last_input.
func migrateSnakeCaseKeys(settings map[string]interface{}) error {
	renames := map[string]string{
		"plugintemplaterepo":  KeyPluginTemplateRepo,
		"themetemplaterepo":   KeyThemeTemplateRepo,
		"projecttemplaterepo": KeyProjectTemplateRepo,
		"githuborganization":  KeyGitHubOrganization,
		"skipintros":          KeySkipIntros,
	}
	lastInputs := map[string]string{
		"pluginlastinput":  "plugin",
		"themelastinput":   "theme",
		"mergeprlastinput": "merge_pr",
		"lastinput":        "update_file",
	}

	lastInput, _ := settings[KeyLastInput].(map[string]interface{})
	if lastInput == nil {
		lastInput = map[string]interface{}{}
	}

	for key, value := range settings {
		folded := strings.ToLower(key)
		if newKey, ok := renames[folded]; ok {
			delete(settings, key)
			settings[newKey] = value
			continue
		}
		if tool, ok := lastInputs[folded]; ok {
			delete(settings, key)
			if m, ok := value.(map[string]interface{}); ok {
				lastInput[tool] = snakeKeys(m)
			}
		}
	}

	if len(lastInput) > 0 {
		settings[KeyLastInput] = lastInput
	}
	return nil
}

// migrateTemplateRepoURLs turns template repositories stored as GitHub URLs into owner/name
func migrateTemplateRepoURLs(settings map[string]interface{}) error {
	for _, key := range []string{KeyPluginTemplateRepo, KeyThemeTemplateRepo, KeyProjectTemplateRepo} {
		value, ok := settings[key].(string)
		if !ok {
			continue
		}
		value = strings.TrimSuffix(strings.TrimSpace(value), ".git")
		value = strings.TrimPrefix(value, "https://github.com/")
		value = strings.TrimPrefix(value, "git@github.com:")
		settings[key] = value
	}
	return nil
}

// snakeKeys converts camelCase answer keys ("pluginName") to snake_case
func snakeKeys(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[strcase.ToSnake(k)] = v
	}
	return out
}
