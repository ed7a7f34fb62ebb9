//go:build windows

package runner

import "os/exec"

func configureCmd(cmd *exec.Cmd) {}

// Windows has no SIGTERM; both paths kill directly.
func terminate(cmd *exec.Cmd) {
	cmd.Process.Kill()
}

func kill(cmd *exec.Cmd) {
	cmd.Process.Kill()
}
