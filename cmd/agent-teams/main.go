package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/agentteams/launcher/internal/app"
	"github.com/agentteams/launcher/internal/config"
	"github.com/agentteams/launcher/internal/domain"
)

const version = "0.1.0"

// exitInterrupted follows the shell convention for SIGINT.
const exitInterrupted = 130

type options struct {
	dir        string
	config     string
	format     string
	grace      time.Duration
	serverPort int
	clientPort int
	debug      bool
}

func newLogger(opts *options) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "agent-teams"})
	if opts.debug || config.DebugFromEnv() {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func resolveFormat(format string, logger *log.Logger) domain.OutputFormat {
	switch domain.OutputFormat(format) {
	case "", domain.FormatRaw:
		return domain.FormatRaw
	case domain.FormatTUI:
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			logger.Warn("stdout is not a terminal, falling back to raw output")
			return domain.FormatRaw
		}
		return domain.FormatTUI
	default:
		return domain.OutputFormat(format)
	}
}

func buildRunConfig(opts *options, logger *log.Logger) (*domain.RunConfig, error) {
	dir, err := config.ResolveProjectDir(opts.dir)
	if err != nil {
		return nil, err
	}

	file, err := config.Load(dir, opts.config)
	if err != nil {
		return nil, err
	}

	cfg := file.RunConfig(dir)
	if opts.grace > 0 {
		cfg.GraceTimeout = opts.grace
	}
	if opts.serverPort != 0 {
		cfg.Ports.Server = opts.serverPort
	}
	if opts.clientPort != 0 {
		cfg.Ports.Client = opts.clientPort
	}
	cfg.Format = resolveFormat(opts.format, logger)
	return cfg, nil
}

func run(args []string, opts *options) error {
	logger := newLogger(opts)

	cfg, err := buildRunConfig(opts, logger)
	if err != nil {
		return err
	}
	logger.Debug("resolved config", "project", cfg.ProjectDir, "pm", cfg.PackageManager, "format", cfg.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	orchestrator := app.NewOrchestrator(logger)
	return orchestrator.Execute(ctx, cfg, name)
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent-teams [start|server|client|stop|configure|help]",
		Short: "Start and stop the Agent Teams Monitor",
		Long: `agent-teams - launcher for the Agent Teams Monitor dev environment

Runs the monitor's package scripts, streams their output, and stops every
process it started on Ctrl+C or 'agent-teams stop'.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "C", "", "Project directory (default: $AGENT_TEAMS_DIR, the binary's directory, or the working directory)")
	cmd.Flags().StringVar(&opts.config, "config", "", "Config file (default: <dir>/"+config.FileName+")")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "raw", "Output format (raw|json|tui)")
	cmd.Flags().DurationVar(&opts.grace, "grace", 0, "Time to wait for a graceful exit before killing (default 5s)")
	cmd.Flags().IntVar(&opts.serverPort, "server-port", 0, "Server port for configure (default 3002)")
	cmd.Flags().IntVar(&opts.clientPort, "client-port", 0, "Client port for configure (default 3000)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Version = version

	return cmd
}

func exitCode(err error) int {
	var exitErr *app.ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, app.ErrInterrupted):
		return exitInterrupted
	default:
		return 1
	}
}

func main() {
	opts := &options{}
	rootCmd := newRootCmd(opts)
	if err := rootCmd.Execute(); err != nil {
		var exitErr *app.ExitError
		if !errors.As(err, &exitErr) && !errors.Is(err, app.ErrInterrupted) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(exitCode(err))
	}
}
