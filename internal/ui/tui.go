package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agentteams/launcher/internal/domain"
)

const (
	statusPending    = "pending"
	statusInstalling = "installing"
	statusRunning    = "running"
	statusSuccess    = "success"
	statusFailed     = "failed"
	statusStopping   = "stopping"
	statusStopped    = "stopped"
)

// TUIFormatter shows the child's output in a full-screen scrolling view.
// Quitting the view cancels the run, which stops the services.
type TUIFormatter struct {
	model    *Model
	program  *tea.Program
	ready    chan struct{}
	once     sync.Once
	fallback io.Writer
	exited   atomic.Bool
}

type startMsg struct {
	action     domain.Action
	projectDir string
}
type installMsg struct{ argv []string }
type lineMsg struct{ text string }
type completeMsg struct{ result domain.RunResult }
type statusMsg string
type finishMsg struct{}
type tickMsg time.Time

type Model struct {
	cfg        *domain.RunConfig
	command    string
	projectDir string
	status     string
	exitCode   int
	startedAt  time.Time
	duration   time.Duration
	lastTick   time.Time
	finished   bool

	lines      []string
	maxLines   int
	viewport   viewport.Model
	sized      bool
	autoScroll bool
	width      int
	height     int
}

func NewModel(cfg *domain.RunConfig) *Model {
	return &Model{
		cfg:        cfg,
		projectDir: cfg.ProjectDir,
		status:     statusPending,
		maxLines:   5000,
		autoScroll: true,
	}
}

func NewTUIFormatter(cfg *domain.RunConfig, fallback io.Writer) *TUIFormatter {
	if fallback == nil {
		fallback = os.Stdout
	}
	return &TUIFormatter{model: NewModel(cfg), ready: make(chan struct{}), fallback: fallback}
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startMsg:
		m.command = strings.Join(msg.action.Invocation, " ")
		m.projectDir = msg.projectDir
		m.status = statusRunning
		m.startedAt = time.Now()
		m.duration = 0

	case installMsg:
		m.command = strings.Join(msg.argv, " ")
		m.status = statusInstalling
		m.startedAt = time.Now()

	case lineMsg:
		m.appendLine(msg.text)
		return m, nil

	case completeMsg:
		if msg.result.Success {
			m.status = statusSuccess
		} else {
			m.status = statusFailed
		}
		m.exitCode = msg.result.ExitCode
		m.duration = msg.result.Duration

	case statusMsg:
		m.status = string(msg)

	case finishMsg:
		m.finished = true
		return m, nil

	case tickMsg:
		m.lastTick = time.Time(msg)
		if !m.finished {
			return m, tick()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "end", "G":
			m.autoScroll = true
			m.viewport.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.autoScroll = m.viewport.AtBottom()
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
	}

	return m, nil
}

func (m *Model) resize() {
	// header (2 lines + padding) and footer (1 line + padding) plus margins
	w := max(20, m.width-4)
	h := max(5, m.height-2-4-2)
	if !m.sized {
		m.viewport = viewport.New(w, h)
		m.sized = true
	} else {
		m.viewport.Width = w
		m.viewport.Height = h
	}
	m.refresh()
}

func (m *Model) appendLine(text string) {
	m.lines = append(m.lines, text)
	// Prune old lines to prevent memory bloat
	if len(m.lines) > m.maxLines {
		m.lines = m.lines[len(m.lines)-m.maxLines:]
	}
	m.refresh()
}

func (m *Model) refresh() {
	if !m.sized {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if m.autoScroll {
		m.viewport.GotoBottom()
	}
}

func (m *Model) View() string {
	if !m.sized {
		return "Initializing..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	screen := lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
	return styleScreen.Render(screen)
}

func (m *Model) renderHeader() string {
	var sb strings.Builder
	sb.WriteString(styleBoldWhite.Render("AGENT TEAMS MONITOR"))
	sb.WriteString("  ")
	sb.WriteString(styleDim.Render(m.projectDir))
	sb.WriteString("\n")

	command := m.command
	if command == "" {
		command = "-"
	}
	sb.WriteString(styleActive.Render("> " + command))
	sb.WriteString("  ")
	sb.WriteString(m.renderStatus())
	if d := m.elapsed(); d > 0 {
		sb.WriteString("  ")
		sb.WriteString(styleDim.Render(d.Round(time.Second).String()))
	}
	return styleHeader.Render(sb.String())
}

func (m *Model) renderStatus() string {
	switch m.status {
	case statusSuccess:
		return styleSuccess.Render("✓ exited (0)")
	case statusFailed:
		return styleFailure.Render(fmt.Sprintf("✗ exited (%d)", m.exitCode))
	case statusRunning:
		return styleRunning.Render("running...")
	case statusInstalling:
		return styleRunning.Render("installing dependencies...")
	case statusStopping:
		return styleRunning.Render("stopping...")
	case statusStopped:
		return styleSuccess.Render(StoppedMessage)
	default:
		return styleDim.Render(statusPending)
	}
}

func (m *Model) elapsed() time.Duration {
	if m.duration != 0 {
		return m.duration
	}
	if m.startedAt.IsZero() {
		return 0
	}
	if !m.lastTick.IsZero() && m.lastTick.After(m.startedAt) {
		return m.lastTick.Sub(m.startedAt)
	}
	return time.Since(m.startedAt)
}

func (m *Model) renderFooter() string {
	left := styleHelpText.Render(fmt.Sprintf("%d lines", len(m.lines)))
	if !m.autoScroll {
		left += styleHelpText.Render(" (paused)")
	}

	var helpItems []string
	helpItems = append(helpItems, styleHelpKey.Render("↑/↓")+styleHelpText.Render(" scroll"))
	helpItems = append(helpItems, styleHelpKey.Render("end")+styleHelpText.Render(" follow"))
	helpItems = append(helpItems, styleHelpKey.Render("q")+styleHelpText.Render(" stop & quit"))
	right := strings.Join(helpItems, "   ")

	width := max(20, m.width-4)
	spacer := strings.Repeat(" ", max(2, width-lipgloss.Width(left)-lipgloss.Width(right)-2))
	return styleFooter.Render(left + spacer + right)
}

func (f *TUIFormatter) Run(ctx context.Context) error {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if ctx != nil {
		opts = append(opts, tea.WithContext(ctx))
	}

	f.program = tea.NewProgram(f.model, opts...)
	f.once.Do(func() { close(f.ready) })

	_, err := f.program.Run()
	f.exited.Store(true)
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func (f *TUIFormatter) WaitReady(ctx context.Context) error {
	select {
	case <-f.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *TUIFormatter) send(msg tea.Msg) bool {
	if f.program == nil || f.exited.Load() {
		return false
	}
	f.program.Send(msg)
	return true
}

func (f *TUIFormatter) OnStart(action domain.Action, projectDir string) {
	f.send(startMsg{action: action, projectDir: projectDir})
}

func (f *TUIFormatter) OnInstall(argv []string) {
	f.send(installMsg{argv: argv})
}

func (f *TUIFormatter) OnLine(line string) {
	f.send(lineMsg{text: line})
}

func (f *TUIFormatter) OnComplete(result domain.RunResult) {
	f.send(completeMsg{result: result})
}

func (f *TUIFormatter) OnUnknown(name string) {
	f.send(lineMsg{text: styleFailure.Render("Unknown command: " + name)})
}

func (f *TUIFormatter) OnUsage(table *domain.CommandTable) {
	var sb strings.Builder
	WriteUsage(&sb, table)
	if !f.send(lineMsg{text: strings.TrimRight(sb.String(), "\n")}) {
		fmt.Fprint(f.fallback, sb.String())
	}
}

func (f *TUIFormatter) OnInterrupt() {
	f.send(statusMsg(statusStopping))
}

// OnStopped lands on the terminal directly once the view has closed, so the
// confirmation is not lost with the alt screen.
func (f *TUIFormatter) OnStopped() {
	if !f.send(statusMsg(statusStopped)) {
		fmt.Fprintln(f.fallback, styleSuccess.Render(StoppedMessage))
	}
}

func (f *TUIFormatter) OnConfigured(files []string, ports domain.Ports) {
	for _, file := range files {
		f.send(lineMsg{text: "wrote " + file})
	}
}

func (f *TUIFormatter) OnFinish() {
	f.send(finishMsg{})
}
