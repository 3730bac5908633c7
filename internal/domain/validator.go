package domain

import (
	"errors"
	"fmt"
	"os"
)

type ConfigValidator struct{}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

func (v *ConfigValidator) Validate(cfg *RunConfig) error {
	if cfg.ProjectDir == "" {
		return errors.New("project directory cannot be empty")
	}

	info, err := os.Stat(cfg.ProjectDir)
	if err != nil {
		return fmt.Errorf("project directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project directory %s is not a directory", cfg.ProjectDir)
	}

	if cfg.PackageManager == "" {
		return errors.New("package manager cannot be empty")
	}

	if cfg.GraceTimeout <= 0 {
		return errors.New("grace timeout must be positive")
	}

	switch cfg.Format {
	case FormatRaw, FormatJSON, FormatTUI:
	default:
		return fmt.Errorf("unknown output format %q", cfg.Format)
	}

	return nil
}

// ValidatePorts checks the ports written by the configure command.
func (v *ConfigValidator) ValidatePorts(p Ports) error {
	if !ValidPort(p.Server) {
		return fmt.Errorf("invalid server port %d: must be between 1 and 65535", p.Server)
	}
	if !ValidPort(p.Client) {
		return fmt.Errorf("invalid client port %d: must be between 1 and 65535", p.Client)
	}
	return nil
}

func ValidPort(port int) bool {
	return port > 0 && port < 65536
}
