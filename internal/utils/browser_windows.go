//go:build windows

package utils

import "os/exec"

// browserCommand opens url through cmd's start builtin. The empty argument
// is the window title, so a quoted url is not taken as one.
func browserCommand(url string) *exec.Cmd {
	return exec.Command("cmd", "/c", "start", "", url)
}
