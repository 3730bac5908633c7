package domain

import (
	"time"
)

type CommandName string
type OutputFormat string
type ActionKind int

const (
	CmdStart     CommandName = "start"
	CmdServer    CommandName = "server"
	CmdClient    CommandName = "client"
	CmdStop      CommandName = "stop"
	CmdHelp      CommandName = "help"
	CmdConfigure CommandName = "configure"
)

const (
	FormatTUI  OutputFormat = "tui"
	FormatJSON OutputFormat = "json"
	FormatRaw  OutputFormat = "raw"
)

const (
	// ActionRun spawns Action.Invocation and blocks until it exits.
	ActionRun ActionKind = iota
	ActionStop
	ActionHelp
	ActionConfigure
)

const (
	DefaultPackageManager = "npm"
	DefaultDepsDir        = "node_modules"
	DefaultRuntime        = "node"
	DefaultGraceTimeout   = 5 * time.Second
	DefaultServerPort     = 3002
	DefaultClientPort     = 3000
)

// Scripts names the package.json scripts behind each run command.
type Scripts struct {
	Start  string `toml:"start"`
	Server string `toml:"server"`
	Client string `toml:"client"`
}

func DefaultScripts() Scripts {
	return Scripts{
		Start:  "dev",
		Server: "dev:server",
		Client: "dev:client",
	}
}

type Ports struct {
	Server int `toml:"server"`
	Client int `toml:"client"`
}

type RunConfig struct {
	ProjectDir     string
	PackageManager string
	DepsDir        string
	Runtime        string
	Scripts        Scripts
	Ports          Ports
	GraceTimeout   time.Duration
	Format         OutputFormat
}

// InstallCommand is the one-time dependency installation invocation.
func (c *RunConfig) InstallCommand() []string {
	return []string{c.PackageManager, "install"}
}

type Action struct {
	Name        CommandName
	Kind        ActionKind
	Invocation  []string
	Description string
}

type RunResult struct {
	Command    CommandName
	PID        int
	ExitCode   int
	Duration   time.Duration
	StartedAt  time.Time
	FinishedAt time.Time
	Success    bool
	Error      error
}
