package sourceloader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wandb/simplejsonext"

	"github.com/distributed-system-analysis/jschart/internal/chartdata"
)

// PackedDelimiter separates series segments in a packed plot file.
const PackedDelimiter = "--- JSChart Packed Plot File V1 ---"

const labelPrefix = "#LABEL:"

// ParsePacked splits a packed plot file into one dataset per delimited
// segment. Dataset indices start at 0 in segment order.
func ParsePacked(data []byte) []*chartdata.Dataset {
	var datasets []*chartdata.Dataset
	for _, segment := range strings.Split(string(data), PackedDelimiter+"\n") {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		ds := parsePlotSegment(len(datasets), "", segment)
		datasets = append(datasets, ds)
	}
	return datasets
}

// ParsePlotFile parses a single-series plot file into the given dataset
// slot. A #LABEL line overrides the fallback name.
func ParsePlotFile(index int, fallbackName string, data []byte) *chartdata.Dataset {
	return parsePlotSegment(index, fallbackName, string(data))
}

func parsePlotSegment(index int, name, segment string) *chartdata.Dataset {
	ds := chartdata.NewDataset(index, name)
	for _, line := range strings.Split(segment, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, labelPrefix); ok {
			ds.Name = strings.TrimSpace(rest)
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		x, errX := strconv.ParseFloat(fields[0], 64)
		y, errY := strconv.ParseFloat(fields[1], 64)
		if errX != nil || errY != nil {
			continue
		}
		ds.Append(chartdata.NewDatapoint(x, y))
	}
	return ds
}

// ParseCSV parses a CSV matrix into one dataset per value column.
//
// In the shared-x layout, column 0 is the x value and the header names the
// remaining columns; a blank cell means the series has no sample at that x.
// In the dual-timestamp layout each series owns a (timestamp_ms, value)
// column pair, so an odd column count is a malformed shape.
func ParseCSV(data []byte, dualTimestamp bool) ([]*chartdata.Dataset, error) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	var header []string
	var rows [][]string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, ",")
		if header == nil {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}
	if header == nil {
		return nil, fmt.Errorf("sourceloader: empty CSV resource")
	}

	if dualTimestamp {
		return parseCSVDual(header, rows)
	}
	return parseCSVSharedX(header, rows), nil
}

func parseCSVSharedX(header []string, rows [][]string) []*chartdata.Dataset {
	datasets := make([]*chartdata.Dataset, 0, len(header)-1)
	for col := 1; col < len(header); col++ {
		datasets = append(datasets,
			chartdata.NewDataset(col-1, strings.TrimSpace(header[col])))
	}
	for _, row := range rows {
		x, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			continue
		}
		for col := 1; col < len(header) && col < len(row); col++ {
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			y, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			datasets[col-1].Append(chartdata.NewDatapoint(x, y))
		}
	}
	return datasets
}

func parseCSVDual(header []string, rows [][]string) ([]*chartdata.Dataset, error) {
	if len(header)%2 != 0 {
		return nil, fmt.Errorf(
			"sourceloader: dual-timestamp CSV has odd column count %d", len(header))
	}
	datasets := make([]*chartdata.Dataset, 0, len(header)/2)
	for col := 0; col < len(header); col += 2 {
		// The value column names the series.
		datasets = append(datasets,
			chartdata.NewDataset(col/2, strings.TrimSpace(header[col+1])))
	}
	for _, row := range rows {
		for col := 0; col+1 < len(row); col += 2 {
			tsCell := strings.TrimSpace(row[col])
			valCell := strings.TrimSpace(row[col+1])
			if tsCell == "" || valCell == "" {
				continue
			}
			ts, errT := strconv.ParseFloat(tsCell, 64)
			y, errV := strconv.ParseFloat(valCell, 64)
			if errT != nil || errV != nil {
				continue
			}
			p := chartdata.Datapoint{X: ts, Y: y, Timestamp: ts}
			datasets[col/2].Append(p)
		}
	}
	return datasets, nil
}

// JSONSeries is the decoded form of the JSON wire format, shared by the
// initial load and the live-update delta fetch.
type JSONSeries struct {
	Names      []string
	XAxis      string
	XAxisIndex int
	Rows       [][]float64
}

// ParseJSONSeries decodes the {data_series_names, x_axis_series, data}
// format. Decoding goes through simplejsonext since live sources emit NaN
// and Infinity sample values, which encoding/json rejects.
func ParseJSONSeries(data []byte) (*JSONSeries, error) {
	value, err := simplejsonext.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("sourceloader: decoding JSON series: %w", err)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("sourceloader: JSON series is not an object")
	}

	s := &JSONSeries{XAxisIndex: -1}

	names, ok := obj["data_series_names"].([]any)
	if !ok {
		return nil, fmt.Errorf("sourceloader: JSON series missing data_series_names")
	}
	for _, n := range names {
		name, _ := n.(string)
		s.Names = append(s.Names, name)
	}

	s.XAxis, _ = obj["x_axis_series"].(string)
	for i, name := range s.Names {
		if name == s.XAxis {
			s.XAxisIndex = i
		}
	}
	if s.XAxisIndex < 0 {
		return nil, fmt.Errorf(
			"sourceloader: x_axis_series %q not among series names", s.XAxis)
	}

	rows, ok := obj["data"].([]any)
	if !ok {
		return nil, fmt.Errorf("sourceloader: JSON series missing data")
	}
	for _, r := range rows {
		cells, ok := r.([]any)
		if !ok {
			continue
		}
		row := make([]float64, len(cells))
		for i, cell := range cells {
			row[i] = toFloat(cell)
		}
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

// Datasets converts the decoded series into one dataset per non-x column,
// with indices assigned in column order skipping the x column.
func (s *JSONSeries) Datasets() []*chartdata.Dataset {
	var datasets []*chartdata.Dataset
	for col, name := range s.Names {
		if col == s.XAxisIndex {
			continue
		}
		ds := chartdata.NewDataset(len(datasets), name)
		for _, row := range s.Rows {
			if col >= len(row) || s.XAxisIndex >= len(row) {
				continue
			}
			ds.Append(chartdata.NewDatapoint(row[s.XAxisIndex], row[col]))
		}
		datasets = append(datasets, ds)
	}
	return datasets
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	}
	return 0
}
