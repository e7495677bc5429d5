package tui

import (
	"os"
	"path/filepath"
)

// EnvPrefix prefixes every environment variable read by the tools
const EnvPrefix = "WP_SCAFFOLD"

// GetLogFilePath returns the path to the log file of a tool.
// If WP_SCAFFOLD_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.wp-scaffold/logs/<tool>.log
func GetLogFilePath(tool string) string {
	if customPath := os.Getenv(EnvPrefix + "_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return tool + ".log"
	}

	return filepath.Join(homeDir, ".wp-scaffold", "logs", tool+".log")
}
