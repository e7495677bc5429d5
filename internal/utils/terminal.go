package utils

import (
	"os"

	"github.com/mattn/go-isatty"
)

// EnvNonInteractive forces IsInteractive to report false
const EnvNonInteractive = "WP_SCAFFOLD_NON_INTERACTIVE"

// IsInteractive reports whether prompts can be answered on stdin
func IsInteractive() bool {
	if os.Getenv(EnvNonInteractive) != "" {
		return false
	}
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
