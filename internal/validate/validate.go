// Package validate holds the input validators used by prompts.
// Every validator returns nil for valid input or an error whose message is
// shown to the user before the question is asked again.
package validate

import (
	"errors"
	"os"
	"regexp"
	"strings"
)

// Func validates a single answer
type Func func(input string) error

var (
	slugPattern            = regexp.MustCompile(`^[a-z0-9_\-]+$`)
	namespacePattern       = regexp.MustCompile(`^[A-Za-z0-9_\\]+$`)
	alnumDashPattern       = regexp.MustCompile(`^[a-z0-9\-]+$`)
	alnumUnderscorePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
	deployPathPattern      = regexp.MustCompile(`^/([A-Za-z0-9\-_+]+/)*([A-Za-z0-9]+/)$`)
	hostnameLabelPattern   = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9\-_]*[A-Za-z0-9])?$`)
)

// Slug allows lowercase alphanumerics, dashes and underscores
func Slug(input string) error {
	if !slugPattern.MatchString(input) {
		return errors.New("only lowercase alphanumeric characters, dashes and underscores are allowed")
	}
	return nil
}

// PHPNamespace allows alphanumerics, backslashes and underscores
func PHPNamespace(input string) error {
	if !namespacePattern.MatchString(input) {
		return errors.New("only alphanumeric characters, backslashes and underscores are allowed")
	}
	return nil
}

// AlphanumericDash allows lowercase alphanumerics and dashes
func AlphanumericDash(input string) error {
	if !alnumDashPattern.MatchString(input) {
		return errors.New("only lowercase alphanumeric characters and dashes are allowed")
	}
	return nil
}

// AlphanumericUnderscore allows lowercase alphanumerics and underscores
func AlphanumericUnderscore(input string) error {
	if !alnumUnderscorePattern.MatchString(input) {
		return errors.New("only lowercase alphanumeric characters and underscores are allowed")
	}
	return nil
}

// NotEmpty rejects empty and whitespace-only input
func NotEmpty(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("a value is required")
	}
	return nil
}

// DeployPath accepts an absolute directory path ending in a slash, as used for
// hosting paths in deploy.yml (e.g. "/home/www/example/").
func DeployPath(input string) error {
	if !deployPathPattern.MatchString(input) {
		return errors.New("invalid unix path")
	}
	return nil
}

// UnixPath accepts "/", or an absolute or dot-relative path whose segments
// contain no NUL bytes. A trailing slash is allowed.
func UnixPath(input string) error {
	invalid := errors.New("invalid unix path")
	if input == "/" {
		return nil
	}

	rest := input
	switch {
	case strings.HasPrefix(rest, "/"):
	case strings.HasPrefix(rest, ".."):
		rest = rest[2:]
	case strings.HasPrefix(rest, "."):
		rest = rest[1:]
	default:
		return invalid
	}

	rest = strings.TrimSuffix(rest, "/")
	if rest == "" {
		return nil
	}
	if !strings.HasPrefix(rest, "/") {
		return invalid
	}
	for _, segment := range strings.Split(rest[1:], "/") {
		if segment == "" || strings.ContainsRune(segment, 0) {
			return invalid
		}
	}
	return nil
}

// Hostname accepts RFC 1123 style hostnames of at most 253 characters
func Hostname(input string) error {
	invalid := errors.New("invalid hostname")
	host := strings.TrimSuffix(input, ".")
	if host == "" || len(host) > 253 {
		return invalid
	}
	for _, label := range strings.Split(host, ".") {
		if len(label) > 63 || !hostnameLabelPattern.MatchString(label) {
			return invalid
		}
	}
	return nil
}

// File requires input to name an existing regular file
func File(input string) error {
	info, err := os.Stat(input)
	if err != nil {
		return errors.New("file does not exist")
	}
	if !info.Mode().IsRegular() {
		return errors.New("path is not a file")
	}
	return nil
}

// All combines validators, returning the first failure
func All(validators ...Func) Func {
	return func(input string) error {
		for _, v := range validators {
			if err := v(input); err != nil {
				return err
			}
		}
		return nil
	}
}
