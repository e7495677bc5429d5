// Package replace rewrites placeholder tokens across a set of files.
//
// A rule set is an ordered list of regular expressions and replacements.
// Rules run in order over each file, so rule i+1 sees the output of rule i.
// Files are selected with doublestar globs relative to a root directory;
// globs that match nothing are skipped.
package replace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Rule is one find/replace pair. Replacement uses regexp.Expand syntax.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Literal replaces every match of pattern with value taken verbatim
func Literal(pattern, value string) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Replacement: escape(value)}
}

// KeepCapture replaces every match of pattern with value followed by the
// pattern's first capture group. With "Plugin Name([^:])" this rewrites the
// token everywhere except where it is directly followed by a colon.
func KeepCapture(pattern, value string) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Replacement: escape(value) + "${1}"}
}

// First replaces only the first match of pattern with value
func First(pattern, value string) Rule {
	return Rule{Pattern: regexp.MustCompile(`(?s)^(.*?)` + pattern), Replacement: "${1}" + escape(value)}
}

func escape(value string) string {
	return strings.ReplaceAll(value, "$", "$$")
}

// Options controls Apply
type Options struct {
	// Dry computes results without writing any file.
	Dry bool
}

// Result reports whether a file's content changed
type Result struct {
	// File is the path relative to the root passed to Apply.
	File    string
	Changed bool
}

// ChangedFiles returns the files whose content changed
func ChangedFiles(results []Result) []string {
	var files []string
	for _, r := range results {
		if r.Changed {
			files = append(files, r.File)
		}
	}
	return files
}

// String applies rules in order to content
func String(content string, rules []Rule) string {
	for _, rule := range rules {
		content = rule.Pattern.ReplaceAllString(content, rule.Replacement)
	}
	return content
}

// Apply expands globs under root and applies rules to every matched file.
// Files matched by several globs are processed once.
func Apply(root string, globs []string, rules []Rule, opts Options) ([]Result, error) {
	files, err := Expand(root, globs)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(files))
	for _, file := range files {
		changed, err := applyFile(filepath.Join(root, filepath.FromSlash(file)), rules, opts.Dry)
		if err != nil {
			return results, err
		}
		results = append(results, Result{File: file, Changed: changed})
	}
	return results, nil
}

// Expand resolves globs under root into regular files, in glob order
func Expand(root string, globs []string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range globs {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			files = append(files, match)
		}
	}
	return files, nil
}

func applyFile(path string, rules []Rule, dry bool) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	original := string(data)
	updated := String(original, rules)
	if updated == original {
		return false, nil
	}
	if dry {
		return true, nil
	}

	if err := writeFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return false, err
	}
	return true, nil
}

func writeFile(path string, data []byte, perm fs.FileMode) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
