package infra

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/agentteams/launcher/internal/domain"
)

// Reaper reclaims processes a previous run left behind. It only touches
// processes whose working directory lies inside the project: those recorded
// in the ledger, and those of the runtime family (e.g. node). It never
// touches itself or any of its ancestors.
type Reaper struct {
	projectDir string
	runtime    string
	ledger     *PIDFile
	logger     *log.Logger
}

func NewReaper(cfg *domain.RunConfig, ledger *PIDFile, logger *log.Logger) *Reaper {
	if logger == nil {
		logger = log.Default()
	}
	dir := cfg.ProjectDir
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	return &Reaper{
		projectDir: dir,
		runtime:    cfg.Runtime,
		ledger:     ledger,
		logger:     logger,
	}
}

// Reap kills every matching process tree and returns how many processes it
// signalled. Failures are logged at debug level and otherwise ignored.
func (r *Reaper) Reap(ctx context.Context) int {
	self := int32(os.Getpid())
	var roots []*process.Process

	if r.ledger != nil {
		pids, err := r.ledger.List()
		if err != nil {
			r.logger.Debug("read run ledger", "error", err)
		}
		for _, pid := range pids {
			p, err := process.NewProcessWithContext(ctx, int32(pid))
			if err != nil {
				r.logger.Debug("ledger process gone", "pid", pid)
				continue
			}
			if r.inProject(ctx, p) {
				roots = append(roots, p)
			}
		}
	}

	if r.runtime != "" {
		procs, err := process.ProcessesWithContext(ctx)
		if err != nil {
			r.logger.Debug("list processes", "error", err)
		}
		for _, p := range procs {
			if p.Pid == self {
				continue
			}
			name, err := p.NameWithContext(ctx)
			if err != nil || !matchesRuntime(name, r.runtime) {
				continue
			}
			if r.inProject(ctx, p) {
				roots = append(roots, p)
			}
		}
	}

	seen := r.lineage(ctx, self)
	killed := 0
	for _, p := range roots {
		killed += r.killTree(ctx, p, seen)
	}

	if r.ledger != nil {
		if err := r.ledger.Clear(); err != nil {
			r.logger.Debug("clear run ledger", "error", err)
		}
	}
	return killed
}

// killTree kills children before their parent so nothing gets re-parented
// out of reach.
func (r *Reaper) killTree(ctx context.Context, p *process.Process, seen map[int32]bool) int {
	if seen[p.Pid] {
		return 0
	}
	seen[p.Pid] = true

	killed := 0
	children, _ := p.ChildrenWithContext(ctx)
	for _, c := range children {
		killed += r.killTree(ctx, c, seen)
	}

	if err := p.KillWithContext(ctx); err != nil {
		r.logger.Debug("kill process", "pid", p.Pid, "error", err)
		return killed
	}
	r.logger.Debug("reclaimed process", "pid", p.Pid)
	return killed + 1
}

// lineage returns pid and every ancestor of it, e.g. the npm script or node
// host that ran stop.
func (r *Reaper) lineage(ctx context.Context, pid int32) map[int32]bool {
	seen := map[int32]bool{pid: true}
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return seen
	}
	for {
		parent, err := p.ParentWithContext(ctx)
		if err != nil || parent.Pid <= 1 || seen[parent.Pid] {
			return seen
		}
		seen[parent.Pid] = true
		r.logger.Debug("sparing ancestor", "pid", parent.Pid)
		p = parent
	}
}

func (r *Reaper) inProject(ctx context.Context, p *process.Process) bool {
	cwd, err := p.CwdWithContext(ctx)
	if err != nil {
		return false
	}
	return within(r.projectDir, cwd)
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func matchesRuntime(name, runtime string) bool {
	name = strings.TrimSuffix(strings.ToLower(name), ".exe")
	return name != "" && name == strings.ToLower(runtime)
}
