package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agentteams/launcher/internal/domain"
)

// Process is a running child whose combined output can be read line by line.
type Process interface {
	Handle
	Output() io.Reader
	Wait() error
	ExitCode() int
	Close() error
}

// SpawnFunc starts argv in dir.
type SpawnFunc func(argv []string, dir string) (Process, error)

// ReclaimFunc kills processes left behind outside the registry and returns
// how many it signalled. It must not fail loudly.
type ReclaimFunc func(ctx context.Context) int

// Ledger persists spawned pids across invocations.
type Ledger interface {
	Add(pid int) error
	Remove(pid int) error
}

type ResultHandler interface {
	OnStart(action domain.Action, projectDir string)
	OnInstall(argv []string)
	OnLine(line string)
	OnComplete(result domain.RunResult)
	OnUnknown(name string)
	OnUsage(table *domain.CommandTable)
	OnInterrupt()
	OnStopped()
	OnConfigured(files []string, ports domain.Ports)
	OnFinish()
}

const readBufferSize = 64 * 1024

// runForeground spawns argv, records it in the registry and forwards its
// output until it exits. Cancelling ctx runs the shutdown procedure and
// returns ErrInterrupted.
func (s *Supervisor) runForeground(ctx context.Context, name domain.CommandName, argv []string) (domain.RunResult, error) {
	result := domain.RunResult{
		Command:   name,
		StartedAt: time.Now(),
	}

	proc, err := s.spawn(argv, s.cfg.ProjectDir)
	if err != nil {
		return result, fmt.Errorf("failed to run %q: %w", strings.Join(argv, " "), err)
	}
	s.registry.Add(proc)
	result.PID = proc.PID()
	s.track(result.PID)
	s.logger.Debug("spawned", "command", strings.Join(argv, " "), "pid", result.PID)

	streamed := make(chan error, 1)
	go func() {
		streamed <- s.stream(proc)
	}()

	select {
	case err := <-streamed:
		s.untrack(result.PID)
		result.FinishedAt = time.Now()
		result.Duration = result.FinishedAt.Sub(result.StartedAt)
		result.ExitCode = proc.ExitCode()
		result.Success = err == nil
		result.Error = err
		return result, nil

	case <-ctx.Done():
		s.handler.OnInterrupt()
		s.Shutdown(context.WithoutCancel(ctx))
		_ = proc.Close()
		<-streamed
		s.untrack(result.PID)
		result.FinishedAt = time.Now()
		result.Duration = result.FinishedAt.Sub(result.StartedAt)
		result.ExitCode = proc.ExitCode()
		result.Error = ErrInterrupted
		return result, ErrInterrupted
	}
}

// stream forwards output line by line in arrival order, then reaps the child.
// Lines of any length are forwarded whole.
func (s *Supervisor) stream(proc Process) error {
	reader := bufio.NewReaderSize(proc.Output(), readBufferSize)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			s.handler.OnLine(strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("output stream closed", "error", err)
			}
			break
		}
	}
	return proc.Wait()
}

func (s *Supervisor) track(pid int) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Add(pid); err != nil {
		s.logger.Debug("record pid", "pid", pid, "error", err)
	}
}

func (s *Supervisor) untrack(pid int) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Remove(pid); err != nil {
		s.logger.Debug("forget pid", "pid", pid, "error", err)
	}
}
