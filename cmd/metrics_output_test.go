package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/fleetsim/sim/fleet"
	"github.com/inference-sim/fleetsim/sim/trace"
)

func TestWriteMetrics_PrometheusTextFormat(t *testing.T) {
	// GIVEN metrics from a truncated run of the classic fleet
	spec := fleet.Classic()
	spec.Delay = fleet.DelaySpec{Policy: fleet.DelayConstant, Params: map[string]any{"value": 3}}
	var discard bytes.Buffer
	metrics, err := executeRun(spec, 40, trace.TraceLevelNone, &discard)
	require.NoError(t, err)

	// WHEN written as Prometheus text
	var buf bytes.Buffer
	require.NoError(t, writeMetrics(&buf, metrics))
	out := buf.String()

	// THEN every family is present with the run's values
	assert.Contains(t, out, "# TYPE fleetsim_events_dispatched_total counter")
	assert.Contains(t, out, `fleetsim_events_dispatched_total{action="leave garage"} 3`)
	assert.Contains(t, out, "fleetsim_processes_retired_total 2")
	assert.Contains(t, out, "fleetsim_events_pending 1")
	assert.Contains(t, out, "fleetsim_clock_ticks 40")
}

func TestWriteMetricsFile(t *testing.T) {
	var discard bytes.Buffer
	metrics, err := executeRun(fleet.Classic(), 50, trace.TraceLevelNone, &discard)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, writeMetricsFile(path, metrics))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fleetsim_events_dispatched_total")
}
