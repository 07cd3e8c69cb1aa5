package render

import "github.com/distributed-system-analysis/jschart/internal/chartdata"

// palette cycles over datasets by assignment order.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// SeriesStyle is the view binding for one dataset.
type SeriesStyle struct {
	Color string
}

// styleTable maps datasets to their view bindings. Keeping this side table
// here, keyed by dataset identity, is what lets the data model stay free of
// render handles.
type styleTable struct {
	styles map[*chartdata.Dataset]SeriesStyle
}

func newStyleTable() *styleTable {
	return &styleTable{styles: map[*chartdata.Dataset]SeriesStyle{}}
}

// For returns a dataset's style, assigning the next palette color on first
// sight. Assignment is stable for the dataset's lifetime even if indices
// are reshuffled by sorting.
func (t *styleTable) For(ds *chartdata.Dataset) SeriesStyle {
	if style, ok := t.styles[ds]; ok {
		return style
	}
	style := SeriesStyle{Color: palette[len(t.styles)%len(palette)]}
	t.styles[ds] = style
	return style
}
