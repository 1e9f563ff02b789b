package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbHall/netsampler/internal/version"
)

func TestObserveRun(t *testing.T) {
	m := New()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	m.ObserveRun("bootstrap", start, start.Add(200*time.Millisecond))
	m.ObserveRun("steady", start.Add(time.Second), start.Add(1500*time.Millisecond))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("bootstrap")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("steady")))
	assert.Equal(t, float64(start.Add(1500*time.Millisecond).Unix()), testutil.ToFloat64(m.LastRun))
	assert.InDelta(t, 0.5, testutil.ToFloat64(m.RunDuration), 1e-9)
}

func TestRegistry_Gathers(t *testing.T) {
	m := New()
	m.RowsParsed.Set(2)
	m.RowsSkipped.WithLabelValues("inactive").Set(3)

	n, err := testutil.GatherAndCount(m.Registry())
	require.NoError(t, err)
	// Vectors without children are not exported; build_info always is.
	assert.Equal(t, 9, n)
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.LinesEmitted.Set(14)
	m.ObserveRun("steady", time.Now(), time.Now())

	path := filepath.Join(t.TempDir(), "netsampler.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "netsampler_lines_emitted 14"))
	assert.True(t, strings.Contains(string(b), `netsampler_runs_total{state="steady"} 1`))
}

func TestWriteTextfile_BadPath(t *testing.T) {
	m := New()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}

func TestBuildInfo(t *testing.T) {
	m := New()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BuildInfo.WithLabelValues(version.Labels()...)))

	path := filepath.Join(t.TempDir(), "netsampler.prom")
	require.NoError(t, m.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `netsampler_build_info{commit="`+version.GitCommit+`"`)
}
