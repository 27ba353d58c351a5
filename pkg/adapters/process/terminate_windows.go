//go:build windows

package process

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
}

// terminate has no graceful group signal on Windows: the graceful step is a no-op and
// the runner falls through to Kill after the grace period.
func terminate(cmd *exec.Cmd, escalate bool) error {
	if cmd == nil || cmd.Process == nil || !escalate {
		return nil
	}
	err := cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
