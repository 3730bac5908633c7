// Package config loads agent-teams settings from agent-teams.toml and the
// environment, and resolves the project directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/agentteams/launcher/internal/domain"
)

// FileName is the optional per-project config file.
const FileName = "agent-teams.toml"

const (
	EnvProjectDir = "AGENT_TEAMS_DIR"
	EnvDebug      = "AGENT_TEAMS_DEBUG"
)

// Duration decodes TOML strings such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// File mirrors agent-teams.toml. Zero values mean "use the default".
type File struct {
	PackageManager string         `toml:"package_manager"` // npm, pnpm, yarn, bun
	DepsDir        string         `toml:"deps_dir"`        // Directory whose presence skips install
	Runtime        *string        `toml:"runtime"`         // Process name reclaimed by stop; "" disables
	GraceTimeout   Duration       `toml:"grace_timeout"`   // Wait between terminate and kill
	Scripts        domain.Scripts `toml:"scripts"`
	Ports          domain.Ports   `toml:"ports"`
}

// Load reads the config file. An empty path means agent-teams.toml in
// projectDir, which may be absent; an explicit path must exist.
func Load(projectDir, path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(projectDir, FileName)
	}

	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &f, nil
}

// RunConfig applies the file over the defaults.
func (f *File) RunConfig(projectDir string) *domain.RunConfig {
	cfg := &domain.RunConfig{
		ProjectDir:     projectDir,
		PackageManager: domain.DefaultPackageManager,
		DepsDir:        domain.DefaultDepsDir,
		Runtime:        domain.DefaultRuntime,
		Scripts:        domain.DefaultScripts(),
		Ports: domain.Ports{
			Server: domain.DefaultServerPort,
			Client: domain.DefaultClientPort,
		},
		GraceTimeout: domain.DefaultGraceTimeout,
		Format:       domain.FormatRaw,
	}

	if f.PackageManager != "" {
		cfg.PackageManager = f.PackageManager
	}
	if f.DepsDir != "" {
		cfg.DepsDir = f.DepsDir
	}
	if f.Runtime != nil {
		cfg.Runtime = *f.Runtime
	}
	if f.GraceTimeout.Duration > 0 {
		cfg.GraceTimeout = f.GraceTimeout.Duration
	}
	if f.Scripts.Start != "" {
		cfg.Scripts.Start = f.Scripts.Start
	}
	if f.Scripts.Server != "" {
		cfg.Scripts.Server = f.Scripts.Server
	}
	if f.Scripts.Client != "" {
		cfg.Scripts.Client = f.Scripts.Client
	}
	if f.Ports.Server != 0 {
		cfg.Ports.Server = f.Ports.Server
	}
	if f.Ports.Client != 0 {
		cfg.Ports.Client = f.Ports.Client
	}
	return cfg
}

// ResolveProjectDir picks the project directory: the flag, then
// AGENT_TEAMS_DIR, then the executable's directory when it holds a
// package.json, then the working directory.
func ResolveProjectDir(flagDir string) (string, error) {
	dir := flagDir
	if dir == "" {
		dir = os.Getenv(EnvProjectDir)
	}
	if dir == "" {
		if exe, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exe)
			if _, err := os.Stat(filepath.Join(exeDir, "package.json")); err == nil {
				dir = exeDir
			}
		}
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve project directory: %w", err)
	}
	return abs, nil
}

// DebugFromEnv reports whether AGENT_TEAMS_DEBUG=1 is set.
func DebugFromEnv() bool {
	return os.Getenv(EnvDebug) == "1"
}
