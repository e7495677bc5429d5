//go:build darwin

package utils

import "os/exec"

// browserCommand opens url with the macOS launcher
func browserCommand(url string) *exec.Cmd {
	return exec.Command("open", url)
}
