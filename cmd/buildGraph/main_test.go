package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iammxrn/MRFoundation/internal/report"
)

func TestGroupSamples(t *testing.T) {
	sessions := []report.FullReport{{
		SystemInfo: report.SystemInfo{NumCPU: 8, SimulatedCPUCount: 2},
		Benchmarks: []report.BenchmarkResult{
			{Implementation: "a", NumProducers: 2, NumConsumers: 2, NumMessagesConsumed: 1000, ActualElapsed: "1ms"},
			{Implementation: "b", Workload: report.WorkloadReadHeavy, NumProducers: 1, NumConsumers: 4, NumMessagesConsumed: 10, ActualElapsed: "1µs"},
			{Implementation: "skipped", NumMessagesConsumed: 0, ActualElapsed: "1s"},
			{Implementation: "broken", NumMessagesConsumed: 1, ActualElapsed: "soon"},
		},
	}}

	groups := groupSamples(sessions)
	require.Len(t, groups, 2)

	queue := groups[graphKey{workload: report.WorkloadQueue, cpus: 2}]
	assert.Equal(t, []float64{1000}, queue["a"][4])
	assert.NotContains(t, queue, "skipped")
	assert.NotContains(t, queue, "broken")

	readHeavy := groups[graphKey{workload: report.WorkloadReadHeavy, cpus: 2}]
	assert.Equal(t, []float64{100}, readHeavy["b"][5])
}

func TestBuildStats(t *testing.T) {
	vals := make([]float64, 100)
	for i := range vals {
		vals[i] = float64(100 - i)
	}
	stats := buildStats(map[float64][]float64{4: vals})
	require.Len(t, stats, 1)

	s := stats[0]
	assert.Equal(t, 4.0, s.orig)
	assert.Equal(t, 3.0, s.min)
	assert.Equal(t, 50.5, s.median)
	assert.Equal(t, 98.0, s.max)
}

func TestAverageOfRangeFallsBackToMedian(t *testing.T) {
	assert.Equal(t, 2.0, averageOfRange([]float64{1, 2, 3}, 0, 0.05))
	assert.Equal(t, 0.0, averageOfRange(nil, 0, 1))
}

func TestFormatNs(t *testing.T) {
	assert.Equal(t, "500ns", formatNs(500))
	assert.Equal(t, "1.5µs", formatNs(1500))
	assert.Equal(t, "2.0ms", formatNs(2e6))
	assert.Equal(t, "3.00s", formatNs(3e9))
}

func TestRenderGraph(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "graph.png")
	s := samples{
		"RingQueueReadWrite": {4: {100, 120, 110}, 20: {300, 320}},
		"RingQueueUnfair":    {4: {90, 95}, 20: {250}},
	}
	require.NoError(t, renderGraph(graphKey{workload: report.WorkloadQueue, cpus: 4}, s, filename))

	info, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
