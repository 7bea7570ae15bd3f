package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcptoolkit/forge/internal/errs"
	"github.com/mcptoolkit/forge/pkg/profile"
)

func testProfile(t *testing.T, protocol string, withArtifact bool) *profile.Profile {
	t.Helper()
	dir := t.TempDir()
	p := &profile.Profile{
		Name:                "outlook",
		ToolDefinitionsPath: filepath.Join(dir, "tools.json"),
		ServerDir:           dir,
		Port:                18080,
	}
	if withArtifact {
		require.NoError(t, os.WriteFile(filepath.Join(dir, protocol+".go"), []byte("package main\n"), 0o644))
	}
	return p
}

// catSpawn echoes stdin back to stdout, standing in for a stdio server
// whose liveness probe is a ping/pong frame exchange; it never opens a
// port, so it's only used with protocol "stdio".
func catSpawn(artifactPath string) *exec.Cmd { return exec.Command("cat") }

func TestStartReturnsNotBuiltWhenArtifactMissing(t *testing.T) {
	s := New(nil)
	p := testProfile(t, "stdio", false)

	_, err := s.Start(context.Background(), p, "stdio", 0)
	require.ErrorIs(t, err, errs.New(errs.KindNotBuilt, "", nil))
}

func TestStatusReportsStoppedForUnknownSlot(t *testing.T) {
	s := New(nil)
	st := s.Status("nonexistent", "rest")
	assert.Equal(t, StateStopped, st.State)
}

func TestStopOnNeverStartedSlotIsNoop(t *testing.T) {
	s := New(nil)
	st, err := s.Stop(context.Background(), "outlook", "rest", false)
	require.NoError(t, err)
	assert.Equal(t, StateStopped, st.State)
}

func TestStdioStartProbesPingPongAndStopReaps(t *testing.T) {
	s := New(nil).WithSpawnFunc(catSpawn)
	p := testProfile(t, "stdio", true)

	st, err := s.Start(context.Background(), p, "stdio", 0)
	require.NoError(t, err)
	assert.Equal(t, StateRunning, st.State)
	assert.NotZero(t, st.PID)

	again, err := s.Start(context.Background(), p, "stdio", 0)
	require.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, StateRunning, again.State)
	assert.Equal(t, st.PID, again.PID)
	assert.Contains(t, err.Error(), fmt.Sprint(st.PID))

	stopped, err := s.Stop(context.Background(), p.Name, "stdio", true)
	require.NoError(t, err)
	assert.Equal(t, StateStopped, stopped.State)
	assert.Zero(t, stopped.PID)
}

func TestDashboardReflectsBuiltFlag(t *testing.T) {
	s := New(nil)
	p := testProfile(t, "rest", true)

	entries := s.Dashboard([]*profile.Profile{p}, []string{"rest", "stream", "stdio"})
	require.Len(t, entries, 3)

	byProtocol := make(map[string]DashboardEntry, len(entries))
	for _, e := range entries {
		byProtocol[e.Protocol] = e
	}
	assert.True(t, byProtocol["rest"].Built)
	assert.False(t, byProtocol["stream"].Built)
	assert.Equal(t, StateStopped, byProtocol["rest"].State)
}

func TestLogsReturnsEmptySliceBeforeAnyOutput(t *testing.T) {
	s := New(nil)
	assert.Empty(t, s.Logs("outlook", "rest"))
}

func TestReattachOrphansIsNoopWithoutMatchingMarker(t *testing.T) {
	s := New(nil)
	p := testProfile(t, "rest", true)
	require.NoError(t, s.ReattachOrphans([]*profile.Profile{p}, []string{"rest"}))
	assert.Equal(t, StateStopped, s.Status(p.Name, "rest").State)
}

func TestStartTimeoutConstantsAreBoundedPerSpec(t *testing.T) {
	assert.LessOrEqual(t, StartTimeout, 15*time.Second)
	assert.LessOrEqual(t, StopTimeout, 10*time.Second)
}
