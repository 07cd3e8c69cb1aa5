package interaction

import "github.com/distributed-system-analysis/jschart/internal/chartdata"

// ToggleLock flips the highlight lock for a dataset: clicking a legend
// entry or table row locks its highlight, clicking the already-locked one
// clears it. Only one dataset holds the lock at a time.
func (c *Controller) ToggleLock(ds *chartdata.Dataset) {
	if c.chart.State.ChartSelection == ds.Index {
		c.chart.State.ChartSelection = chartdata.NoSelection
		ds.Highlighted = false
		c.notify()
		return
	}

	for _, other := range c.chart.Datasets {
		other.Highlighted = false
	}
	c.chart.State.ChartSelection = ds.Index
	ds.Highlighted = true
	c.notify()
}

// Hover highlights a dataset while nothing holds the lock.
func (c *Controller) Hover(ds *chartdata.Dataset) {
	if c.chart.State.ChartSelection != chartdata.NoSelection {
		return
	}
	ds.Highlighted = true
	c.notify()
}

// Unhover clears a hover highlight; a locked highlight stays.
func (c *Controller) Unhover(ds *chartdata.Dataset) {
	if c.chart.State.ChartSelection != chartdata.NoSelection {
		return
	}
	ds.Highlighted = false
	c.notify()
}

// Hide removes a dataset from the view, releasing its highlight lock if it
// held one, and refreshes domains over the remaining visible datasets.
func (c *Controller) Hide(ds *chartdata.Dataset) {
	if ds.Hidden {
		return
	}
	if c.chart.State.ChartSelection == ds.Index {
		c.chart.State.ChartSelection = chartdata.NoSelection
	}
	ds.Highlighted = false
	c.chart.SetHidden(ds, true)
	c.RefreshData()
}

// Unhide restores a dataset. While another dataset holds the highlight
// lock the restored one comes back unhighlighted so it doesn't compete
// visually with the lock.
func (c *Controller) Unhide(ds *chartdata.Dataset) {
	if !ds.Hidden {
		return
	}
	c.chart.SetHidden(ds, false)
	if c.chart.State.ChartSelection != chartdata.NoSelection &&
		c.chart.State.ChartSelection != ds.Index {
		ds.Highlighted = false
	}
	c.RefreshData()
}

// ApplyYAverage hides every dataset whose mean (histogram mean in histogram
// mode) falls below the threshold.
func (c *Controller) ApplyYAverage(threshold float64) {
	for _, ds := range c.chart.Datasets {
		if ds.Hidden {
			continue
		}
		if ds.SortValue() < threshold {
			c.Hide(ds)
		}
	}
}
