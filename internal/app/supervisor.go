package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/agentteams/launcher/internal/config"
	"github.com/agentteams/launcher/internal/domain"
	"github.com/agentteams/launcher/internal/ui"
)

// CmdInstall labels the dependency installation run in results.
const CmdInstall domain.CommandName = "install"

// ErrInterrupted is returned when a run was cancelled and shut down.
var ErrInterrupted = errors.New("interrupted")

// ExitError carries a child's non-zero exit status back to main.
type ExitError struct {
	Command domain.CommandName
	Code    int
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

type Options struct {
	Spawn   SpawnFunc
	Reclaim ReclaimFunc
	Ledger  Ledger
	Handler ResultHandler
	Stdout  io.Writer
	Logger  *log.Logger
}

// Supervisor spawns, forwards and terminates the children of one CLI
// invocation.
type Supervisor struct {
	cfg       *domain.RunConfig
	table     *domain.CommandTable
	validator *domain.ConfigValidator
	registry  *Registry
	spawn     SpawnFunc
	reclaim   ReclaimFunc
	ledger    Ledger
	handler   ResultHandler
	logger    *log.Logger

	shutdownOnce sync.Once
}

func NewSupervisor(cfg *domain.RunConfig, table *domain.CommandTable, opts Options) *Supervisor {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	handler := opts.Handler
	if handler == nil {
		handler = ui.NewRawFormatter(stdout, os.Stderr)
	}
	return &Supervisor{
		cfg:       cfg,
		table:     table,
		validator: domain.NewConfigValidator(),
		registry:  NewRegistry(),
		spawn:     opts.Spawn,
		reclaim:   opts.Reclaim,
		ledger:    opts.Ledger,
		handler:   handler,
		logger:    logger,
	}
}

func (s *Supervisor) Registry() *Registry {
	return s.registry
}

// Execute resolves name against the command table and performs the action.
// Unknown names report the error and show help.
func (s *Supervisor) Execute(ctx context.Context, name string) error {
	action, ok := s.table.Resolve(name)
	if !ok {
		s.handler.OnUnknown(name)
	}

	switch action.Kind {
	case domain.ActionHelp:
		s.handler.OnUsage(s.table)
		return nil
	case domain.ActionStop:
		s.Shutdown(ctx)
		return nil
	case domain.ActionConfigure:
		return s.configure()
	case domain.ActionRun:
		return s.launch(ctx, action)
	default:
		return fmt.Errorf("unsupported action for %s", action.Name)
	}
}

func (s *Supervisor) launch(ctx context.Context, action domain.Action) error {
	if !s.depsInstalled() {
		argv := s.cfg.InstallCommand()
		s.handler.OnInstall(argv)
		result, err := s.runForeground(ctx, CmdInstall, argv)
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("dependency install failed: %w", result.Error)
		}
	}

	s.handler.OnStart(action, s.cfg.ProjectDir)

	result, err := s.runForeground(ctx, action.Name, action.Invocation)
	if err != nil {
		return err
	}
	s.handler.OnComplete(result)

	if !result.Success {
		code := result.ExitCode
		if code <= 0 {
			code = 1
		}
		return &ExitError{Command: action.Name, Code: code, Err: result.Error}
	}
	return nil
}

func (s *Supervisor) depsInstalled() bool {
	info, err := os.Stat(filepath.Join(s.cfg.ProjectDir, s.cfg.DepsDir))
	return err == nil && info.IsDir()
}

func (s *Supervisor) configure() error {
	if err := s.validator.ValidatePorts(s.cfg.Ports); err != nil {
		return err
	}
	files, err := config.WritePorts(s.cfg.ProjectDir, s.cfg.Ports)
	if err != nil {
		return err
	}
	s.handler.OnConfigured(files, s.cfg.Ports)
	return nil
}

// Shutdown terminates every registered handle, runs the reclaim hook and
// confirms. It runs at most once; later calls return immediately. Nothing
// in here fails the caller.
func (s *Supervisor) Shutdown(ctx context.Context) {
	s.shutdownOnce.Do(func() {
		for _, h := range s.registry.Drain() {
			s.stopHandle(h)
		}

		if s.reclaim != nil {
			n := s.reclaim(ctx)
			s.logger.Debug("reclaimed orphaned processes", "count", n)
		}

		s.handler.OnStopped()
	})
}

func (s *Supervisor) stopHandle(h Handle) {
	pid := h.PID()
	if err := h.Terminate(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return
		}
		s.logger.Debug("terminate", "pid", pid, "error", err)
	}

	if h.WaitTimeout(s.cfg.GraceTimeout) {
		return
	}

	s.logger.Debug("process did not exit in time, killing", "pid", pid, "timeout", s.cfg.GraceTimeout)
	if err := h.Kill(); err != nil {
		s.logger.Debug("kill", "pid", pid, "error", err)
	}
}
