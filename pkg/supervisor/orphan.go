package supervisor

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mcptoolkit/forge/pkg/profile"
)

// ReattachOrphans scans /proc for running processes whose environment
// carries an MCP_SUPERVISOR_MARKER matching one of profiles' (name,
// protocol) pairs, and reattaches any it finds into the state table as
// running (§4.8). Intended to run once at supervisor startup so a
// restarted editor process doesn't orphan servers a previous instance
// left up. Non-Linux platforms have no /proc to scan and this is a
// silent no-op there.
func (s *Supervisor) ReattachOrphans(profiles []*profile.Profile, protocols []string) error {
	wanted := make(map[string]Key, len(profiles)*len(protocols))
	for _, p := range profiles {
		for _, protocol := range protocols {
			key := Key{Profile: p.Name, Protocol: protocol}
			wanted[key.marker()] = key
		}
	}

	procEntries, err := os.ReadDir("/proc")
	if err != nil {
		// Not Linux, or /proc unavailable; nothing to reattach.
		return nil
	}

	for _, procEntry := range procEntries {
		pid, err := strconv.Atoi(procEntry.Name())
		if err != nil {
			continue
		}

		marker, ok := readEnvMarker(pid)
		if !ok {
			continue
		}

		key, ok := wanted[marker]
		if !ok {
			continue
		}

		e := s.entryFor(key)
		e.mu().Lock()
		if e.state == StateStopped {
			e.state = StateRunning
			e.pid = pid
			e.startedAt = time.Now().Unix()
			s.log.Info("supervisor reattached orphan", "profile", key.Profile, "protocol", key.Protocol, "pid", pid)
		}
		e.mu().Unlock()
	}

	return nil
}

// readEnvMarker reads /proc/<pid>/environ and returns the value of
// MCP_SUPERVISOR_MARKER if present. environ entries are NUL-separated,
// not newline-separated.
func readEnvMarker(pid int) (string, bool) {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "environ"))
	if err != nil {
		return "", false
	}
	const prefix = "MCP_SUPERVISOR_MARKER="
	for _, kv := range bytes.Split(data, []byte{0}) {
		s := string(kv)
		if strings.HasPrefix(s, prefix) {
			return strings.TrimPrefix(s, prefix), true
		}
	}
	return "", false
}

// processAlive reports whether pid refers to a live process, used by
// Status to detect a process that died without the supervisor's own
// Wait goroutine observing it (e.g. after a supervisor restart).
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 probes existence without affecting the process.
	return proc.Signal(syscall.Signal(0)) == nil
}
