//go:build windows

package server

import (
	"os/exec"
	"syscall"
)

// hideConsole keeps the worker from opening its own console window.
func hideConsole(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
