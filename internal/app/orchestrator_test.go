package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentteams/launcher/internal/config"
	"github.com/agentteams/launcher/internal/domain"
	"github.com/agentteams/launcher/internal/ui"
)

func newTestOrchestrator() (*Orchestrator, *bytes.Buffer) {
	var out bytes.Buffer
	o := NewOrchestrator(log.New(io.Discard))
	o.stdout = &out
	o.stderr = io.Discard
	return o, &out
}

func TestOrchestrator_RejectsInvalidConfig(t *testing.T) {
	o, _ := newTestOrchestrator()
	cfg := newConfig(t, true)
	cfg.ProjectDir = filepath.Join(cfg.ProjectDir, "missing")

	err := o.Execute(context.Background(), cfg, "stop")
	assert.ErrorContains(t, err, "project directory")
}

func TestOrchestrator_HelpIgnoresInvalidConfig(t *testing.T) {
	for _, name := range []string{"help", "bogus"} {
		t.Run(name, func(t *testing.T) {
			o, out := newTestOrchestrator()
			cfg := newConfig(t, true)
			cfg.ProjectDir = filepath.Join(cfg.ProjectDir, "missing")
			cfg.Format = "xml"

			require.NoError(t, o.Execute(context.Background(), cfg, name))
			assert.Contains(t, out.String(), "Usage: agent-teams")
		})
	}
}

func TestOrchestrator_JSONHelpIsOneEventPerLine(t *testing.T) {
	o, out := newTestOrchestrator()
	cfg := newConfig(t, true)
	cfg.Format = domain.FormatJSON

	require.NoError(t, o.Execute(context.Background(), cfg, "bogus"))

	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var ev ui.EventJSON
		require.NoError(t, json.Unmarshal([]byte(line), &ev), "line %q", line)
	}
	assert.Contains(t, out.String(), `"event":"usage"`)
}

func TestOrchestrator_Help(t *testing.T) {
	o, out := newTestOrchestrator()

	require.NoError(t, o.Execute(context.Background(), newConfig(t, true), "HELP"))
	assert.Contains(t, out.String(), "Usage: agent-teams")
}

func TestOrchestrator_ConfigureWritesEnvFiles(t *testing.T) {
	o, out := newTestOrchestrator()
	cfg := newConfig(t, true)
	cfg.Ports = domain.Ports{Server: 4500, Client: 4600}

	require.NoError(t, o.Execute(context.Background(), cfg, "configure"))

	env, err := godotenv.Read(filepath.Join(cfg.ProjectDir, config.ClientEnvFile))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4500", env["NEXT_PUBLIC_SOCKET_URL"])
	assert.Contains(t, out.String(), "client: http://localhost:4600")
}

func TestOrchestrator_StopWithNothingRunning(t *testing.T) {
	o, out := newTestOrchestrator()
	cfg := newConfig(t, true)
	cfg.Runtime = ""

	require.NoError(t, o.Execute(context.Background(), cfg, "stop"))
	assert.Contains(t, out.String(), ui.StoppedMessage)
}

func TestOrchestrator_GetFormatter(t *testing.T) {
	o, _ := newTestOrchestrator()
	cfg := newConfig(t, true)
	run := domain.Action{Kind: domain.ActionRun}
	stop := domain.Action{Kind: domain.ActionStop}

	cfg.Format = domain.FormatJSON
	assert.IsType(t, &ui.JSONFormatter{}, o.getFormatter(cfg, run))

	cfg.Format = domain.FormatTUI
	assert.IsType(t, &ui.TUIFormatter{}, o.getFormatter(cfg, run))
	assert.IsType(t, &ui.RawFormatter{}, o.getFormatter(cfg, stop))

	cfg.Format = domain.FormatRaw
	assert.IsType(t, &ui.RawFormatter{}, o.getFormatter(cfg, run))
}
