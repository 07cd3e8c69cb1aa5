package render

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/afero"
)

// ExportCSV reconstructs an (x, v1..vN) matrix restricted to the current
// chart-scale x-domain and writes it to a file on the given filesystem.
// Columns appear in dataset index order; a dataset with no sample at an x
// gets a blank cell, matching how sparse series were loaded.
func (s *Surface) ExportCSV(fs afero.Fs, path string) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("render: creating CSV export: %w", err)
	}
	defer func() { _ = f.Close() }()

	xLo, xHi := s.axes.X.Chart.Domain()

	// Union of x values across datasets within the visible domain.
	perDataset := make([]map[float64]float64, len(s.chart.Datasets))
	xSet := map[float64]struct{}{}
	for i, ds := range s.chart.Datasets {
		perDataset[i] = map[float64]float64{}
		for _, p := range ds.Points {
			if p.X < xLo || p.X > xHi {
				continue
			}
			perDataset[i][p.X] = p.Y
			xSet[p.X] = struct{}{}
		}
	}
	xs := make([]float64, 0, len(xSet))
	for x := range xSet {
		xs = append(xs, x)
	}
	sort.Float64s(xs)

	w := csv.NewWriter(f)
	header := []string{"x"}
	for _, ds := range s.chart.Datasets {
		header = append(header, ds.Name)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("render: writing CSV export: %w", err)
	}

	row := make([]string, len(header))
	for _, x := range xs {
		row[0] = strconv.FormatFloat(x, 'g', -1, 64)
		for i := range s.chart.Datasets {
			if y, ok := perDataset[i][x]; ok {
				row[i+1] = strconv.FormatFloat(y, 'g', -1, 64)
			} else {
				row[i+1] = ""
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("render: writing CSV export: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
