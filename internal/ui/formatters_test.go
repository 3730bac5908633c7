package ui

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentteams/launcher/internal/domain"
)

func testAction() domain.Action {
	return domain.Action{
		Name:       domain.CmdServer,
		Kind:       domain.ActionRun,
		Invocation: []string{"npm", "run", "dev:server"},
	}
}

func TestRawFormatter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	f := NewRawFormatter(&stdout, &stderr)

	f.OnStart(testAction(), "/srv/monitor")
	f.OnInstall([]string{"npm", "install"})
	f.OnLine("listening on 3002")
	f.OnComplete(domain.RunResult{Command: domain.CmdServer, ExitCode: 0, Success: true, Duration: 1500 * time.Millisecond})
	f.OnInterrupt()
	f.OnStopped()
	f.OnFinish()

	out := stdout.String()
	assert.Contains(t, out, "Starting Agent Teams Monitor: server")
	assert.Contains(t, out, "Project directory: /srv/monitor")
	assert.Contains(t, out, "Installing dependencies (npm install)...")
	assert.Contains(t, out, "listening on 3002\n")
	assert.Contains(t, out, "Stopping services...")
	assert.Contains(t, out, StoppedMessage)

	assert.Equal(t, "[ server exited after 1.5s - SUCCESS ]\n", stderr.String())
}

func TestRawFormatter_Failure(t *testing.T) {
	var stdout, stderr bytes.Buffer
	f := NewRawFormatter(&stdout, &stderr)

	f.OnComplete(domain.RunResult{Command: domain.CmdClient, ExitCode: 2, Duration: time.Second})
	f.OnComplete(domain.RunResult{Command: domain.CmdClient, ExitCode: -1, Error: errors.New("boom")})
	f.OnUnknown("deploy")

	assert.Contains(t, stderr.String(), "[ client exited after 1s - FAILED: exit code 2 ]")
	assert.Contains(t, stderr.String(), "FAILED: exit code -1, error: boom")
	assert.Contains(t, stdout.String(), "Unknown command: deploy")
}

func TestRawFormatter_OnConfigured(t *testing.T) {
	var stdout bytes.Buffer
	f := NewRawFormatter(&stdout, &bytes.Buffer{})

	f.OnConfigured([]string{"server/.env", "client/.env.local"}, domain.Ports{Server: 4000, Client: 4001})

	out := stdout.String()
	assert.Contains(t, out, "wrote server/.env")
	assert.Contains(t, out, "wrote client/.env.local")
	assert.Contains(t, out, "client: http://localhost:4001")
	assert.Contains(t, out, "server: http://localhost:4000")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf)
	f.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	f.OnStart(testAction(), "/srv/monitor")
	f.OnLine("ready")
	f.OnComplete(domain.RunResult{Command: domain.CmdServer, PID: 42, ExitCode: 3, Duration: 250 * time.Millisecond})
	f.OnStopped()

	var events []EventJSON
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var ev EventJSON
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.Len(t, events, 4)

	runID := events[0].RunID
	require.NotEmpty(t, runID)
	for _, ev := range events {
		assert.Equal(t, runID, ev.RunID)
		assert.Equal(t, "2026-01-02T03:04:05Z", ev.Timestamp)
	}

	assert.Equal(t, "start", events[0].Event)
	assert.Equal(t, "server", events[0].Command)
	assert.Equal(t, "/srv/monitor", events[0].ProjectDir)

	assert.Equal(t, "line", events[1].Event)
	assert.Equal(t, "ready", events[1].Text)

	exit := events[2]
	assert.Equal(t, "exit", exit.Event)
	assert.Equal(t, 42, exit.PID)
	require.NotNil(t, exit.ExitCode)
	assert.Equal(t, 3, *exit.ExitCode)
	require.NotNil(t, exit.Success)
	assert.False(t, *exit.Success)
	assert.Equal(t, float64(250), exit.Duration)

	assert.Equal(t, "stopped", events[3].Event)
	assert.Equal(t, StoppedMessage, events[3].Text)
}

func TestJSONFormatter_Configured(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf)

	f.OnConfigured([]string{"a", "b"}, domain.Ports{Server: 3002, Client: 3000})

	var ev EventJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.Equal(t, "configured", ev.Event)
	assert.Equal(t, []string{"a", "b"}, ev.Files)
	assert.Equal(t, "http://localhost:3002", ev.Text)
}

func TestWriteUsage(t *testing.T) {
	var buf bytes.Buffer
	table := domain.NewCommandTable(&domain.RunConfig{})

	WriteUsage(&buf, table)

	out := buf.String()
	assert.Contains(t, out, "Usage: agent-teams [command]")
	for _, a := range table.Actions() {
		assert.Contains(t, out, "  "+string(a.Name))
		assert.Contains(t, out, a.Description)
	}
	start := strings.Index(out, "  start")
	stop := strings.Index(out, "  stop")
	assert.Less(t, start, stop, "commands listed in table order")
}

func TestJSONFormatter_UsageIsAnEvent(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf)
	table := domain.NewCommandTable(&domain.RunConfig{})

	f.OnUnknown("deploy")
	f.OnUsage(table)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2, "every line of output is one event")
	var ev EventJSON
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &ev))
	assert.Equal(t, "usage", ev.Event)
	assert.Contains(t, ev.Text, "Usage: agent-teams")
	assert.Contains(t, ev.Text, "configure")
}

func TestRawFormatter_OnUsage(t *testing.T) {
	var stdout bytes.Buffer
	f := NewRawFormatter(&stdout, &bytes.Buffer{})

	f.OnUsage(domain.NewCommandTable(&domain.RunConfig{}))

	assert.Contains(t, stdout.String(), "Examples:")
}
