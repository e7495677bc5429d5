// Package naming derives slugs, namespaces and hostnames from user input.
package naming

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// Slug returns the kebab-cased form of a display name, e.g. "My Plugin" -> "my-plugin"
func Slug(name string) string {
	return strcase.ToKebab(strings.TrimSpace(name))
}

// Pascal returns the PascalCase form of a slug, e.g. "my-plugin" -> "MyPlugin"
func Pascal(slug string) string {
	return strcase.ToCamel(slug)
}

// Camel returns the camelCase form of a slug, e.g. "my-plugin" -> "myPlugin"
func Camel(slug string) string {
	return strcase.ToLowerCamel(slug)
}

// Snake returns the snake_case form of a slug, e.g. "my-plugin" -> "my_plugin"
func Snake(slug string) string {
	return strcase.ToSnake(slug)
}

// PluginNamespace is the PHP namespace for a plugin slug
func PluginNamespace(slug string) string {
	return `Required\` + Pascal(slug)
}

// ThemeNamespace is the PHP namespace for a theme slug. A trailing "-theme"
// is dropped before the name is PascalCased.
func ThemeNamespace(slug string) string {
	return `Required\` + Pascal(strings.TrimSuffix(slug, "-theme")) + `\Theme`
}

// TablePrefix is the WordPress database table prefix for a project slug
func TablePrefix(slug string) string {
	return strings.ReplaceAll(slug, "-", "_") + "_"
}

// StagingHost is the default staging hostname for a production host
func StagingHost(host string) string {
	return "staging." + host
}

// DevelopmentHost is the first label of host, used as the local development name
func DevelopmentHost(host string) string {
	label, _, _ := strings.Cut(host, ".")
	return label
}

// LocalHost appends suffix to host unless it is already present
func LocalHost(host, suffix string) string {
	if host == "" || strings.HasSuffix(host, suffix) {
		return host
	}
	return host + suffix
}

// ComposerName is the composer package name for a GitHub organization and slug
func ComposerName(org, slug string) string {
	return strings.ToLower(org) + "/" + slug
}

// EscapeNamespace doubles backslashes so a namespace can be written into
// composer.json and other JSON files.
func EscapeNamespace(namespace string) string {
	return strings.ReplaceAll(namespace, `\`, `\\`)
}

// TLD returns the last label of host, e.g. "shop.example.ch" -> "ch"
func TLD(host string) string {
	host = strings.TrimSuffix(host, ".")
	if i := strings.LastIndex(host, "."); i >= 0 {
		return host[i+1:]
	}
	return host
}
