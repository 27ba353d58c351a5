//go:build !windows

package process

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminate signals the whole process group led by cmd: SIGTERM, or SIGKILL when escalating.
// A group that no longer exists is not an error.
func terminate(cmd *exec.Cmd, escalate bool) error {
	if cmd == nil || cmd.Process == nil || cmd.Process.Pid <= 0 {
		return nil
	}
	sig := unix.SIGTERM
	if escalate {
		sig = unix.SIGKILL
	}
	// Negative PID targets the full process group (leader + forked children).
	err := unix.Kill(-cmd.Process.Pid, sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
