package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

// PIDFileName is the run ledger kept in the project directory.
const PIDFileName = ".agent-teams.pid"

// PIDFile records the process groups spawned for a project so that a later
// invocation can reclaim them. Every access holds an exclusive file lock.
type PIDFile struct {
	path string
	lock *flock.Flock
}

func NewPIDFile(projectDir string) *PIDFile {
	path := filepath.Join(projectDir, PIDFileName)
	return &PIDFile{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (f *PIDFile) Path() string {
	return f.path
}

func (f *PIDFile) Add(pid int) error {
	return f.update(func(pids []int) []int {
		if slices.Contains(pids, pid) {
			return pids
		}
		return append(pids, pid)
	})
}

func (f *PIDFile) Remove(pid int) error {
	return f.update(func(pids []int) []int {
		return slices.DeleteFunc(pids, func(p int) bool { return p == pid })
	})
}

func (f *PIDFile) Clear() error {
	return f.update(func([]int) []int { return nil })
}

func (f *PIDFile) List() ([]int, error) {
	if err := f.lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock %s: %w", f.path, err)
	}
	defer f.lock.Unlock()
	return f.read()
}

func (f *PIDFile) update(fn func([]int) []int) error {
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", f.path, err)
	}
	defer f.lock.Unlock()

	pids, err := f.read()
	if err != nil {
		return err
	}
	return f.write(fn(pids))
}

func (f *PIDFile) read() ([]int, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var pids []int
	for _, line := range strings.Split(string(data), "\n") {
		pid, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

func (f *PIDFile) write(pids []int) error {
	if len(pids) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", f.path, err)
		}
		return nil
	}

	var sb strings.Builder
	for _, pid := range pids {
		sb.WriteString(strconv.Itoa(pid))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(f.path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}
