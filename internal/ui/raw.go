package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agentteams/launcher/internal/config"
	"github.com/agentteams/launcher/internal/domain"
)

// RawFormatter forwards child output unchanged and frames it with short
// styled notices.
type RawFormatter struct {
	stdout io.Writer
	stderr io.Writer
}

func NewRawFormatter(stdout, stderr io.Writer) *RawFormatter {
	return &RawFormatter{stdout: stdout, stderr: stderr}
}

func (f *RawFormatter) OnStart(action domain.Action, projectDir string) {
	fmt.Fprintln(f.stdout, styleActive.Render("Starting Agent Teams Monitor: "+string(action.Name)))
	fmt.Fprintln(f.stdout, styleDim.Render("Project directory: "+projectDir))
	fmt.Fprintln(f.stdout)
}

func (f *RawFormatter) OnInstall(argv []string) {
	fmt.Fprintln(f.stdout, styleRunning.Render("Installing dependencies ("+strings.Join(argv, " ")+")..."))
}

func (f *RawFormatter) OnLine(line string) {
	fmt.Fprintln(f.stdout, line)
}

func (f *RawFormatter) OnComplete(result domain.RunResult) {
	fmt.Fprintf(f.stderr, "[ %s exited after %v", result.Command, result.Duration.Round(time.Millisecond))
	if result.Success {
		fmt.Fprint(f.stderr, " - SUCCESS")
	} else if result.Error != nil {
		fmt.Fprintf(f.stderr, " - FAILED: exit code %d, error: %v", result.ExitCode, result.Error)
	} else {
		fmt.Fprintf(f.stderr, " - FAILED: exit code %d", result.ExitCode)
	}
	fmt.Fprintln(f.stderr, " ]")
}

func (f *RawFormatter) OnUnknown(name string) {
	fmt.Fprintln(f.stdout, styleFailure.Render("Unknown command: "+name))
}

func (f *RawFormatter) OnUsage(table *domain.CommandTable) {
	WriteUsage(f.stdout, table)
}

func (f *RawFormatter) OnInterrupt() {
	fmt.Fprintln(f.stdout)
	fmt.Fprintln(f.stdout, styleRunning.Render("Stopping services..."))
}

func (f *RawFormatter) OnStopped() {
	fmt.Fprintln(f.stdout, styleSuccess.Render(StoppedMessage))
}

func (f *RawFormatter) OnConfigured(files []string, ports domain.Ports) {
	for _, file := range files {
		fmt.Fprintln(f.stdout, styleSuccess.Render("✓ wrote "+file))
	}
	fmt.Fprintln(f.stdout)
	fmt.Fprintln(f.stdout, styleBoldWhite.Render("Start command:"))
	fmt.Fprintln(f.stdout, "  agent-teams start")
	fmt.Fprintln(f.stdout)
	fmt.Fprintln(f.stdout, styleBoldWhite.Render("Access:"))
	fmt.Fprintf(f.stdout, "  client: http://localhost:%d\n", ports.Client)
	fmt.Fprintf(f.stdout, "  server: %s\n", config.SocketURL(ports.Server))
}

func (f *RawFormatter) OnFinish() {
	// No-op
}
