//go:build windows

package services

import (
	"os/exec"
	"syscall"
)

// hideWindow stops spawned tools from flashing console windows when the
// binary runs as a GUI-subsystem executable.
func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
