//go:build linux

package utils

import "os/exec"

// browserCommand opens url through the desktop's xdg handler
func browserCommand(url string) *exec.Cmd {
	return exec.Command("xdg-open", url)
}
