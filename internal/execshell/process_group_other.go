//go:build !unix

package execshell

import "os/exec"

// terminateProcessGroupOnCancel keeps the os/exec default of killing only the direct child.
func terminateProcessGroupOnCancel(executable *exec.Cmd) {}
