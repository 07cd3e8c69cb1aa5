package interaction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distributed-system-analysis/jschart/internal/chartdata"
	"github.com/distributed-system-analysis/jschart/internal/chartregistry"
	"github.com/distributed-system-analysis/jschart/internal/interaction"
)

func threeDatasets(t *testing.T) (*chartregistry.Registry, chartregistry.Handle, *interaction.Controller) {
	t.Helper()
	registry := chartregistry.New()
	h, ctrl := registerChart(t, registry, map[string][][2]float64{
		"a": {{0, 1}, {1, 3}},
		"b": {{0, 2}, {1, 2}},
		"c": {{0, 5}, {1, 7}},
	}, chartdata.Options{DataModel: chartdata.ModelXY})
	return registry, h, ctrl
}

func TestToggleLock(t *testing.T) {
	registry, h, ctrl := threeDatasets(t)
	chart := registry.Get(h).Chart
	a, b := chart.Datasets[0], chart.Datasets[1]

	ctrl.ToggleLock(a)
	assert.Equal(t, a.Index, chart.State.ChartSelection)
	assert.True(t, a.Highlighted)

	// Locking another dataset moves the lock.
	ctrl.ToggleLock(b)
	assert.Equal(t, b.Index, chart.State.ChartSelection)
	assert.True(t, b.Highlighted)
	assert.False(t, a.Highlighted)

	// Clicking the locked dataset clears the lock.
	ctrl.ToggleLock(b)
	assert.Equal(t, chartdata.NoSelection, chart.State.ChartSelection)
	assert.False(t, b.Highlighted)
}

func TestHover_OnlyWhileUnlocked(t *testing.T) {
	registry, h, ctrl := threeDatasets(t)
	chart := registry.Get(h).Chart
	a, b := chart.Datasets[0], chart.Datasets[1]

	ctrl.Hover(a)
	assert.True(t, a.Highlighted)
	ctrl.Unhover(a)
	assert.False(t, a.Highlighted)

	ctrl.ToggleLock(b)
	ctrl.Hover(a)
	assert.False(t, a.Highlighted, "hover must not compete with a lock")
	ctrl.Unhover(b)
	assert.True(t, b.Highlighted, "unhover must not clear a lock")
}

func TestHide_ReleasesLockAndCountsDown(t *testing.T) {
	registry, h, ctrl := threeDatasets(t)
	chart := registry.Get(h).Chart
	a := chart.Datasets[0]

	ctrl.ToggleLock(a)
	ctrl.Hide(a)

	assert.True(t, a.Hidden)
	assert.False(t, a.Highlighted)
	assert.Equal(t, chartdata.NoSelection, chart.State.ChartSelection)
	assert.Equal(t, 2, chart.State.VisibleDatasets)
	assert.Equal(t, chart.VisibleCount(), chart.State.VisibleDatasets)

	// Hiding again is a no-op.
	ctrl.Hide(a)
	assert.Equal(t, 2, chart.State.VisibleDatasets)
}

func TestUnhide_DoesNotCompeteWithLock(t *testing.T) {
	registry, h, ctrl := threeDatasets(t)
	chart := registry.Get(h).Chart
	a, b := chart.Datasets[0], chart.Datasets[1]

	ctrl.Hide(a)
	ctrl.ToggleLock(b)
	ctrl.Unhide(a)

	assert.False(t, a.Hidden)
	assert.False(t, a.Highlighted)
	assert.True(t, b.Highlighted)
	assert.Equal(t, 3, chart.State.VisibleDatasets)
	assert.Equal(t, chart.VisibleCount(), chart.State.VisibleDatasets)
}

// The packed-file scenario: series A [(0,1),(1,3)] and B [(0,2),(1,2)] both
// have mean 2; hiding A and applying a y-average threshold of 2.5 hides B
// as well, leaving nothing visible.
func TestApplyYAverage(t *testing.T) {
	registry := chartregistry.New()
	h, ctrl := registerChart(t, registry, map[string][][2]float64{
		"a": {{0, 1}, {1, 3}},
		"b": {{0, 2}, {1, 2}},
	}, chartdata.Options{DataModel: chartdata.ModelXY})
	chart := registry.Get(h).Chart

	require.Equal(t, 2.0, chart.Datasets[0].Mean)
	require.Equal(t, 2.0, chart.Datasets[1].Mean)

	ctrl.Hide(chart.Datasets[0])
	ctrl.ApplyYAverage(2.5)

	assert.True(t, chart.Datasets[1].Hidden)
	assert.Equal(t, 0, chart.State.VisibleDatasets)
	assert.Equal(t, chart.VisibleCount(), chart.State.VisibleDatasets)
}
