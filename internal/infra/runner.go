package infra

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

type CommandRunner struct{}

func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

// Process is a child started by CommandRunner. Its stdout and stderr share
// a single pipe so lines arrive in the order the child wrote them.
type Process struct {
	cmd      *exec.Cmd
	out      *os.File
	done     chan struct{}
	waitOnce sync.Once
	err      error
}

// Start spawns argv in dir inside a new process group.
func (r *CommandRunner) Start(argv []string, dir string) (*Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("command cannot be empty")
	}

	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // argv comes from the command table
	cmd.Dir = dir
	setupProcessGroup(cmd)

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}
	// The child holds its own copy; EOF on pr needs ours closed.
	pw.Close()

	return &Process{
		cmd:  cmd,
		out:  pr,
		done: make(chan struct{}),
	}, nil
}

func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Output is the combined stdout/stderr stream of the child.
func (p *Process) Output() io.Reader {
	return p.out
}

// Wait reaps the child. It may be called any number of times.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		p.err = p.cmd.Wait()
		close(p.done)
	})
	<-p.done
	return p.err
}

// WaitTimeout reports whether the child exited within d.
func (p *Process) WaitTimeout(d time.Duration) bool {
	go p.Wait()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-p.done:
		return true
	case <-timer.C:
		return false
	}
}

func (p *Process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Terminate asks the child's process group to exit.
func (p *Process) Terminate() error {
	if p.exited() {
		return os.ErrProcessDone
	}
	return terminateProcess(p.cmd)
}

// Kill force-kills the child's process group.
func (p *Process) Kill() error {
	if p.exited() {
		return os.ErrProcessDone
	}
	return killProcess(p.cmd)
}

// ExitCode is valid after Wait returned; -1 when the child did not exit
// normally.
func (p *Process) ExitCode() int {
	if p.cmd.ProcessState == nil {
		return -1
	}
	return p.cmd.ProcessState.ExitCode()
}

// Close releases the read side of the output pipe, unblocking readers.
func (p *Process) Close() error {
	return p.out.Close()
}
