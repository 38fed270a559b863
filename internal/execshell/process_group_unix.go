//go:build unix

package execshell

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// terminateProcessGroupOnCancel starts the command in its own process group and kills the
// whole group on cancellation, so children of a wrapper script cannot hold the output pipes open.
func terminateProcessGroupOnCancel(executable *exec.Cmd) {
	executable.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	executable.Cancel = func() error {
		if executable.Process == nil {
			return os.ErrProcessDone
		}
		killError := syscall.Kill(-executable.Process.Pid, syscall.SIGKILL)
		if errors.Is(killError, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return killError
	}
}
