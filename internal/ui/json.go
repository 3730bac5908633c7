package ui

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentteams/launcher/internal/config"
	"github.com/agentteams/launcher/internal/domain"
)

// EventJSON is one line of --format json output.
type EventJSON struct {
	RunID      string   `json:"run_id"`
	Timestamp  string   `json:"ts"`
	Event      string   `json:"event"`
	Command    string   `json:"command,omitempty"`
	ProjectDir string   `json:"project_dir,omitempty"`
	PID        int      `json:"pid,omitempty"`
	Text       string   `json:"text,omitempty"`
	ExitCode   *int     `json:"exit_code,omitempty"`
	Success    *bool    `json:"success,omitempty"`
	Duration   float64  `json:"duration_ms,omitempty"`
	Error      string   `json:"error,omitempty"`
	Files      []string `json:"files,omitempty"`
}

// JSONFormatter writes one event object per line as things happen, so a
// consumer can follow child output incrementally.
type JSONFormatter struct {
	runID   string
	encoder *json.Encoder
	now     func() time.Time
	mu      sync.Mutex
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{
		runID:   uuid.NewString(),
		encoder: json.NewEncoder(w),
		now:     time.Now,
	}
}

func (f *JSONFormatter) emit(ev EventJSON) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ev.RunID = f.runID
	ev.Timestamp = f.now().UTC().Format(time.RFC3339Nano)
	_ = f.encoder.Encode(ev)
}

func (f *JSONFormatter) OnStart(action domain.Action, projectDir string) {
	f.emit(EventJSON{Event: "start", Command: string(action.Name), ProjectDir: projectDir})
}

func (f *JSONFormatter) OnInstall(argv []string) {
	f.emit(EventJSON{Event: "install", Command: strings.Join(argv, " ")})
}

func (f *JSONFormatter) OnLine(line string) {
	f.emit(EventJSON{Event: "line", Text: line})
}

func (f *JSONFormatter) OnComplete(result domain.RunResult) {
	code := result.ExitCode
	success := result.Success
	ev := EventJSON{
		Event:    "exit",
		Command:  string(result.Command),
		PID:      result.PID,
		ExitCode: &code,
		Success:  &success,
		Duration: float64(result.Duration.Milliseconds()),
	}
	if result.Error != nil {
		ev.Error = result.Error.Error()
	}
	f.emit(ev)
}

func (f *JSONFormatter) OnUnknown(name string) {
	f.emit(EventJSON{Event: "unknown_command", Command: name})
}

// OnUsage carries the usage text inside an event.
func (f *JSONFormatter) OnUsage(table *domain.CommandTable) {
	var sb strings.Builder
	WriteUsage(&sb, table)
	f.emit(EventJSON{Event: "usage", Text: sb.String()})
}

func (f *JSONFormatter) OnInterrupt() {
	f.emit(EventJSON{Event: "interrupt"})
}

func (f *JSONFormatter) OnStopped() {
	f.emit(EventJSON{Event: "stopped", Text: StoppedMessage})
}

func (f *JSONFormatter) OnConfigured(files []string, ports domain.Ports) {
	f.emit(EventJSON{Event: "configured", Files: files, Text: config.SocketURL(ports.Server)})
}

func (f *JSONFormatter) OnFinish() {
	// JSON formatter has nothing buffered
}

