//go:build !windows

package server

import "os/exec"

// hideConsole is a no-op outside Windows; redirected pipes already
// detach the worker from any terminal.
func hideConsole(cmd *exec.Cmd) {}
