package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilodestar/aiops-naas/internal/tracking"
)

func TestAllowListWatcher_LoadsInitialListAndMatchesSubstrings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.txt")
	require.NoError(t, os.WriteFile(path, []byte("system startup complete\n# comment\nheartbeat ok\n"), 0o644))

	logger := tracking.New("error", tracking.FormatJSON)
	w := NewAllowListWatcher(path, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Give the watcher goroutine time to perform its initial load.
	assert.Eventually(t, func() bool {
		return w.Matches("system startup complete")
	}, time.Second, 10*time.Millisecond)

	assert.True(t, w.Matches("2026-07-30: heartbeat ok from engine-01"))
	assert.False(t, w.Matches("engine temperature exceeded threshold"))
}

func TestAllowListWatcher_EmptyListMatchesNothing(t *testing.T) {
	w := NewAllowListWatcher("", tracking.New("error", tracking.FormatJSON))
	assert.False(t, w.Matches("anything"))
}
