package detector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilodestar/aiops-naas/internal/config"
	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/partition"
	"github.com/ilodestar/aiops-naas/internal/registry"
	"github.com/ilodestar/aiops-naas/internal/tracking"
)

func newTestService() *Service {
	reg := registry.New("http://unused.invalid", time.Second, 8, time.Minute, nil, nil)
	return New(reg, nil, nil)
}

// testAllowList builds an AllowListWatcher pre-loaded with the given
// entries via a synchronous reload, without starting its fsnotify loop.
func testAllowList(t *testing.T, entries ...string) *config.AllowListWatcher {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.txt")
	content := ""
	for _, e := range entries {
		content += e + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	w := config.NewAllowListWatcher(path, tracking.New("error", tracking.FormatJSON))
	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)
	t.Cleanup(cancel)
	assert.Eventually(t, func() bool { return w.Matches(entries[0]) }, time.Second, 10*time.Millisecond)
	return w
}

func TestProcessLog_DropsInfoLevel(t *testing.T) {
	s := newTestService()
	_, ok, err := s.ProcessLog(context.Background(), eventmodels.RawEvent{Level: "INFO", Message: "routine check"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProcessLog_CriticalLevelProducesDeterministicScore(t *testing.T) {
	s := newTestService()
	anomaly, ok, err := s.ProcessLog(context.Background(), eventmodels.RawEvent{
		Level:   "CRITICAL",
		Message: "Engine temperature exceeded 95C",
		ShipID:  "ship-dhruv",
		Service: "engine-monitor",
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, eventmodels.SeverityCritical, anomaly.Severity)
	assert.Equal(t, 0.95, anomaly.Score)
	assert.Equal(t, "ship-dhruv", anomaly.ShipID)
	assert.Equal(t, eventmodels.DomainSystem, anomaly.Domain)
	assert.NotEmpty(t, anomaly.TrackingID)
}

func TestProcessLog_SuppressesAllowListedText(t *testing.T) {
	reg := registry.New("http://unused.invalid", time.Second, 8, time.Minute, nil, nil)
	w := testAllowList(t, "system startup complete")
	s := New(reg, w, nil)

	_, ok, err := s.ProcessLog(context.Background(), eventmodels.RawEvent{
		Level: "ERROR", Message: "system startup complete, all checks green",
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProcessLog_PreservesGivenTrackingID(t *testing.T) {
	s := newTestService()
	anomaly, ok, err := s.ProcessLog(context.Background(), eventmodels.RawEvent{
		TrackingID: "req-123-abcdef00", Level: "ERROR", Message: "disk failure",
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "req-123-abcdef00", anomaly.TrackingID)
}

func TestProcessMetric_RequiresMetricValue(t *testing.T) {
	s := newTestService()
	_, _, err := s.ProcessMetric(context.Background(), eventmodels.RawEvent{MetricName: "engine_rpm"})
	assert.Error(t, err)
}

func TestProcessMetric_ScoresAgainstSelectedVariant(t *testing.T) {
	s := newTestService()
	val := 120.0
	anomaly, ok, err := s.ProcessMetric(context.Background(), eventmodels.RawEvent{
		MetricName: "engine_temperature", MetricValue: &val, ShipID: "ship-dhruv", Service: "engine-monitor",
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "engine_temperature", anomaly.MetricName)
	assert.Greater(t, anomaly.Score, 0.0)
}

func TestPartitionIndex_SameKeyAlwaysSameBucket(t *testing.T) {
	a := partition.Index("ship-dhruv", 8)
	b := partition.Index("ship-dhruv", 8)
	assert.Equal(t, a, b)
}

func TestPartitionIndex_EmptyKeyGoesToZero(t *testing.T) {
	assert.Equal(t, 0, partition.Index("", 8))
}
