package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agentteams/launcher/internal/domain"
)

// fakeProcess is a child whose output and lifetime the test controls.
type fakeProcess struct {
	pid        int
	pr         *io.PipeReader
	pw         *io.PipeWriter
	exitCode   int
	waitErr    error
	ignoreTerm bool
	termErr    error

	terminated atomic.Int32
	killed     atomic.Int32
	done       chan struct{}
	exitOnce   sync.Once
}

func newFakeProcess(pid int) *fakeProcess {
	pr, pw := io.Pipe()
	return &fakeProcess{pid: pid, pr: pr, pw: pw, done: make(chan struct{})}
}

// finishedProcess writes lines then exits with code.
func finishedProcess(pid int, code int, lines ...string) *fakeProcess {
	p := newFakeProcess(pid)
	p.exitCode = code
	if code != 0 {
		p.waitErr = errors.New("exit status")
	}
	go func() {
		for _, l := range lines {
			_, _ = io.WriteString(p.pw, l+"\n")
		}
		p.exit()
	}()
	return p
}

func (p *fakeProcess) exit() {
	p.exitOnce.Do(func() {
		_ = p.pw.Close()
		close(p.done)
	})
}

func (p *fakeProcess) PID() int { return p.pid }

func (p *fakeProcess) Terminate() error {
	p.terminated.Add(1)
	if p.termErr != nil {
		return p.termErr
	}
	if !p.ignoreTerm {
		p.exit()
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.killed.Add(1)
	p.exit()
	return nil
}

func (p *fakeProcess) WaitTimeout(d time.Duration) bool {
	select {
	case <-p.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (p *fakeProcess) Output() io.Reader { return p.pr }

func (p *fakeProcess) Wait() error {
	<-p.done
	return p.waitErr
}

func (p *fakeProcess) ExitCode() int { return p.exitCode }

func (p *fakeProcess) Close() error { return p.pr.Close() }

type spawnCall struct {
	argv []string
	dir  string
}

type fakeSpawner struct {
	mu    sync.Mutex
	calls []spawnCall
	queue []*fakeProcess
	err   error
}

func (s *fakeSpawner) spawn(argv []string, dir string) (Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, spawnCall{argv: argv, dir: dir})
	if s.err != nil {
		return nil, s.err
	}
	if len(s.queue) == 0 {
		return finishedProcess(1000+len(s.calls), 0), nil
	}
	p := s.queue[0]
	s.queue = s.queue[1:]
	return p, nil
}

func (s *fakeSpawner) Calls() []spawnCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]spawnCall(nil), s.calls...)
}

type fakeReclaimer struct {
	calls atomic.Int32
}

func (r *fakeReclaimer) reclaim(context.Context) int {
	r.calls.Add(1)
	return 0
}

type fakeLedger struct {
	mu      sync.Mutex
	added   []int
	removed []int
}

func (l *fakeLedger) Add(pid int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.added = append(l.added, pid)
	return nil
}

func (l *fakeLedger) Remove(pid int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removed = append(l.removed, pid)
	return nil
}

// recorder is a ResultHandler that keeps everything it is told.
type recorder struct {
	mu         sync.Mutex
	lines      []string
	unknown    []string
	usages     int
	installs   int
	starts     []domain.CommandName
	results    []domain.RunResult
	interrupts int
	stopped    int
	configured []string
}

func (r *recorder) OnStart(action domain.Action, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, action.Name)
}

func (r *recorder) OnInstall([]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.installs++
}

func (r *recorder) OnLine(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *recorder) OnComplete(result domain.RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *recorder) OnUnknown(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unknown = append(r.unknown, name)
}

func (r *recorder) OnUsage(*domain.CommandTable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usages++
}

func (r *recorder) OnInterrupt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interrupts++
}

func (r *recorder) OnStopped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped++
}

func (r *recorder) OnConfigured(files []string, _ domain.Ports) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configured = append(r.configured, files...)
}

func (r *recorder) OnFinish() {}

func (r *recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}
