package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/mcptoolkit/forge/internal/errs"
	"github.com/mcptoolkit/forge/pkg/profile"
)

// StartTimeout and StopTimeout bound Start and Stop per §5: a process
// that doesn't pass its liveness probe or exit gracefully within these
// windows is treated as failed (Start) or force-killed (Stop with force).
const (
	StartTimeout = 15 * time.Second
	StopTimeout  = 10 * time.Second
)

// ErrAlreadyRunning is the comparison target for errors.Is against
// whatever Start returns when the (profile, protocol) slot is already
// running (the concrete error is errs.AlreadyRunning, carrying the pid);
// errs.Error.Is compares by Kind only, so this sentinel need not repeat
// the pid to match.
var ErrAlreadyRunning = errs.New(errs.KindAlreadyRunning, "", nil)

// Supervisor tracks one child process per (profile, protocol) pair.
// The table lock guards the map itself; each entry's own mutex (held
// only while that entry's state is being mutated) lets a long-running
// Start or Stop on one slot proceed without blocking Status calls
// against any other slot (§5).
type Supervisor struct {
	mu      sync.Mutex
	entries map[Key]*entry
	log     *slog.Logger

	// spawn builds the command Start executes for a given artifact path.
	// Overridable so tests can substitute a short-lived fixture process
	// in place of `go run <artifact>`.
	spawn func(artifactPath string) *exec.Cmd
}

// New returns an empty Supervisor. ReattachOrphans should usually be
// called once after construction so a restarted supervisor rediscovers
// servers a previous instance left running.
func New(log *slog.Logger) *Supervisor {
	if log == nil {
		log = slog.Default()
	}
	return &Supervisor{
		entries: make(map[Key]*entry),
		log:     log,
		spawn:   func(artifactPath string) *exec.Cmd { return exec.Command("go", "run", artifactPath) },
	}
}

// WithSpawnFunc overrides how Start builds the child command; exported
// for tests that need to run a lightweight fixture binary in place of
// `go run <artifact>`.
func (s *Supervisor) WithSpawnFunc(spawn func(artifactPath string) *exec.Cmd) *Supervisor {
	s.spawn = spawn
	return s
}

func (s *Supervisor) entryFor(key Key) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{key: key, state: StateStopped, logs: newRingLog(1000)}
		s.entries[key] = e
	}
	return e
}

// artifactPath returns the generated source file Start should run for
// protocol, and whether it exists on disk.
func artifactPath(p *profile.Profile, protocol string) (string, bool) {
	path := filepath.Join(p.ServerDir, protocol+".go")
	if _, err := os.Stat(path); err != nil {
		return path, false
	}
	return path, true
}

// Start spawns the generated artifact for (p.Name, protocol), set to
// listen on p.Port unless overridePort is non-zero. It blocks until the
// liveness probe succeeds or StartTimeout elapses.
func (s *Supervisor) Start(ctx context.Context, p *profile.Profile, protocol string, overridePort int) (Status, error) {
	key := Key{Profile: p.Name, Protocol: protocol}
	e := s.entryFor(key)

	e.mu().Lock()
	defer e.mu().Unlock()

	if e.state == StateRunning {
		return e.status(), errs.AlreadyRunning(p.Name, protocol, e.pid)
	}

	path, ok := artifactPath(p, protocol)
	if !ok {
		return e.status(), errs.NotBuilt(p.Name, protocol)
	}

	port := p.Port
	if overridePort != 0 {
		port = overridePort
	}

	e.state = StateStarting
	s.log.Info("supervisor starting", "profile", p.Name, "protocol", protocol, "port", port)

	startCtx, cancel := context.WithTimeout(ctx, StartTimeout)
	defer cancel()

	cmd := s.spawn(path)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("MCP_SERVER_PORT=%d", port),
		fmt.Sprintf("MCP_YAML_PATH=%s", p.ToolDefinitionsPath),
		fmt.Sprintf("MCP_SUPERVISOR_MARKER=%s", key.marker()),
	)

	var stdin io.WriteCloser
	var err error
	if protocol == "stdio" {
		stdin, err = cmd.StdinPipe()
		if err != nil {
			e.state = StateStopped
			return e.status(), fmt.Errorf("supervisor: stdin pipe: %w", err)
		}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		e.state = StateStopped
		return e.status(), fmt.Errorf("supervisor: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		e.state = StateStopped
		return e.status(), fmt.Errorf("supervisor: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		e.state = StateStopped
		return e.status(), fmt.Errorf("supervisor: spawn failed: %w", err)
	}

	e.pid = cmd.Process.Pid
	e.port = port
	e.cmd = cmd
	go e.logs.pump(bufio.NewScanner(stderr))

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	var probeErr error
	if protocol == "stdio" {
		// stdout carries protocol frames, not log lines, for a stdio
		// server; the ping/pong exchange consumes the first frame
		// directly instead of handing stdout to the ring buffer.
		probeErr = probeStdio(startCtx, stdin, bufio.NewReader(stdout))
	} else {
		go e.logs.pump(bufio.NewScanner(stdout))
		probeErr = probeLiveness(startCtx, protocol, port)
	}

	if probeErr != nil {
		_ = cmd.Process.Kill()
		<-waitErr
		e.state = StateStopped
		e.pid = 0
		e.cmd = nil
		return e.status(), fmt.Errorf("supervisor: liveness probe failed: %w", probeErr)
	}

	e.state = StateRunning
	e.startedAt = time.Now().Unix()
	e.waitErr = waitErr
	s.log.Info("supervisor running", "profile", p.Name, "protocol", protocol, "pid", e.pid)
	return e.status(), nil
}

// Stop sends a graceful termination signal and waits up to StopTimeout
// for the child to exit; if force is set and the timeout elapses, it
// sends a kill signal instead.
func (s *Supervisor) Stop(ctx context.Context, profileName, protocol string, force bool) (Status, error) {
	key := Key{Profile: profileName, Protocol: protocol}
	e := s.entryFor(key)

	e.mu().Lock()
	defer e.mu().Unlock()

	if e.state == StateStopped || e.cmd == nil {
		e.state = StateStopped
		return e.status(), nil
	}

	e.state = StateStopping
	s.log.Info("supervisor stopping", "profile", profileName, "protocol", protocol, "pid", e.pid)

	if err := e.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return e.status(), fmt.Errorf("supervisor: signal failed: %w", err)
	}

	select {
	case <-e.waitErr:
	case <-time.After(StopTimeout):
		if !force {
			e.state = StateRunning
			return e.status(), fmt.Errorf("supervisor: graceful stop timed out after %s; retry with force", StopTimeout)
		}
		_ = e.cmd.Process.Kill()
		<-e.waitErr
	case <-ctx.Done():
		return e.status(), ctx.Err()
	}

	e.state = StateStopped
	e.pid = 0
	e.port = 0
	e.startedAt = 0
	e.cmd = nil
	e.waitErr = nil
	return e.status(), nil
}

// Restart stops then starts the (profile, protocol) slot.
func (s *Supervisor) Restart(ctx context.Context, p *profile.Profile, protocol string, overridePort int) (Status, error) {
	if _, err := s.Stop(ctx, p.Name, protocol, true); err != nil {
		return Status{}, err
	}
	return s.Start(ctx, p, protocol, overridePort)
}

// Status reports the current state of one (profile, protocol) slot. A
// slot never started reports stopped without being added to the table.
func (s *Supervisor) Status(profileName, protocol string) Status {
	key := Key{Profile: profileName, Protocol: protocol}
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return Status{Profile: profileName, Protocol: protocol, State: StateStopped}
	}
	e.mu().Lock()
	defer e.mu().Unlock()
	if e.state == StateRunning && !processAlive(e.pid) {
		s.log.Warn("supervisor found dead process", "profile", profileName, "protocol", protocol, "pid", e.pid)
		e.state = StateStopped
		e.pid = 0
		e.port = 0
		e.startedAt = 0
		e.cmd = nil
		e.waitErr = nil
	}
	return e.status()
}

// Logs returns the retained stdout/stderr lines for one slot, most
// recent last.
func (s *Supervisor) Logs(profileName, protocol string) []string {
	e := s.entryFor(Key{Profile: profileName, Protocol: protocol})
	return e.logs.Tail()
}

// DashboardEntry pairs a Status with which protocol artifacts exist on
// disk for that profile, so the editor can disable start for protocols
// that haven't been generated yet.
type DashboardEntry struct {
	Status
	Built bool `json:"built"`
}

// Dashboard returns one entry per (profile, protocol) the caller asks
// about, deriving Built from artifactPath existence rather than from
// supervisor state (a profile may have a fresh artifact it has never
// started).
func (s *Supervisor) Dashboard(profiles []*profile.Profile, protocols []string) []DashboardEntry {
	out := make([]DashboardEntry, 0, len(profiles)*len(protocols))
	for _, p := range profiles {
		for _, protocol := range protocols {
			_, built := artifactPath(p, protocol)
			out = append(out, DashboardEntry{Status: s.Status(p.Name, protocol), Built: built})
		}
	}
	return out
}
