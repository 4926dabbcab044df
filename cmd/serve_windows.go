//go:build windows

package cmd

import (
	"os"
	"os/exec"
	"syscall"
)

// setDaemonAttrs puts a background server in its own process group so
// console interrupts aimed at the launcher do not reach it.
func setDaemonAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// shutdownSignals stop a foreground server gracefully.
func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// Windows cannot deliver SIGTERM to another process; stop falls back to a kill.
func sigTERM() syscall.Signal { return syscall.SIGKILL }

func sigKILL() syscall.Signal { return syscall.SIGKILL }
