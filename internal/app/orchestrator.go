package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/agentteams/launcher/internal/domain"
	"github.com/agentteams/launcher/internal/infra"
	"github.com/agentteams/launcher/internal/ui"
)

type Orchestrator struct {
	validator *domain.ConfigValidator
	runner    *infra.CommandRunner
	logger    *log.Logger
	stdout    io.Writer
	stderr    io.Writer
}

func NewOrchestrator(logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		validator: domain.NewConfigValidator(),
		runner:    infra.NewCommandRunner(),
		logger:    logger,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

func (o *Orchestrator) Execute(ctx context.Context, cfg *domain.RunConfig, name string) error {
	table := domain.NewCommandTable(cfg)
	action, _ := table.Resolve(name)

	// Help never depends on the rest of the configuration being usable.
	if action.Kind != domain.ActionHelp {
		if err := o.validator.Validate(cfg); err != nil {
			return err
		}
	}

	ledger := infra.NewPIDFile(cfg.ProjectDir)
	reaper := infra.NewReaper(cfg, ledger, o.logger)
	handler := o.getFormatter(cfg, action)

	sup := NewSupervisor(cfg, table, Options{
		Spawn:   o.spawn,
		Reclaim: reaper.Reap,
		Ledger:  ledger,
		Handler: handler,
		Stdout:  o.stdout,
		Logger:  o.logger,
	})

	if tui, ok := handler.(*ui.TUIFormatter); ok {
		return o.executeTUI(ctx, sup, name, tui)
	}

	defer handler.OnFinish()
	return sup.Execute(ctx, name)
}

func (o *Orchestrator) spawn(argv []string, dir string) (Process, error) {
	proc, err := o.runner.Start(argv, dir)
	if err != nil {
		return nil, err
	}
	return proc, nil
}

func (o *Orchestrator) executeTUI(ctx context.Context, sup *Supervisor, name string, tui *ui.TUIFormatter) error {
	ctxRun, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctxRun)

	// Start TUI; when it exits (quit or signal), cancel to stop the supervisor
	g.Go(func() error {
		defer cancel()
		return tui.Run(gctx)
	})

	// Ensure the TUI program is initialized before spawning so streaming works
	if err := tui.WaitReady(gctx); err != nil {
		return err
	}

	var runErr error
	g.Go(func() error {
		runErr = sup.Execute(gctx, name)
		tui.OnFinish()
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	// Quitting the viewer is a normal way to stop the monitor.
	if errors.Is(runErr, ErrInterrupted) && ctx.Err() == nil {
		return nil
	}
	return runErr
}

func (o *Orchestrator) getFormatter(cfg *domain.RunConfig, action domain.Action) ResultHandler {
	switch cfg.Format {
	case domain.FormatJSON:
		return ui.NewJSONFormatter(o.stdout)
	case domain.FormatTUI:
		if action.Kind == domain.ActionRun {
			return ui.NewTUIFormatter(cfg, o.stdout)
		}
		return ui.NewRawFormatter(o.stdout, o.stderr)
	default:
		return ui.NewRawFormatter(o.stdout, o.stderr)
	}
}
