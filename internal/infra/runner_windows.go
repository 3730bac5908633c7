//go:build windows

package infra

import (
	"os/exec"
	"strconv"
	"syscall"

	"golang.org/x/sys/windows"
)

// setupProcessGroup starts the child in its own console process group so it
// can receive CTRL_BREAK alone and taskkill /T can find the whole tree.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
}

// terminateProcess sends CTRL_BREAK to the child's process group, which node
// and npm treat like SIGINT. Without a shared console it falls back to
// taskkill without /F.
func terminateProcess(cmd *exec.Cmd) error {
	pid := uint32(cmd.Process.Pid)
	if err := windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, pid); err == nil {
		return nil
	}
	return exec.Command("taskkill", "/T", "/PID", strconv.Itoa(cmd.Process.Pid)).Run()
}

// killProcess kills the process tree using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func killProcess(cmd *exec.Cmd) error {
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(cmd.Process.Pid)).Run()
}
