// Package chartconfig parses the YAML page configuration that describes
// the charts to build.
package chartconfig

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/distributed-system-analysis/jschart/internal/chartdata"
)

// Page is the top-level configuration.
type Page struct {
	BaseURL    string        `yaml:"base_url"`
	SentryDSN  string        `yaml:"sentry_dsn"`
	OutputDir  string        `yaml:"output_dir"`
	PlotWidth  float64       `yaml:"plot_width"`
	PlotHeight float64       `yaml:"plot_height"`
	Charts     []ChartConfig `yaml:"charts"`
}

type ChartConfig struct {
	Title        string       `yaml:"title"`
	DataModel    string       `yaml:"data_model"`
	Stacked      bool         `yaml:"stacked"`
	Source       SourceConfig `yaml:"source"`
	X            AxisConfig   `yaml:"x"`
	Y            AxisConfig   `yaml:"y"`
	Live         LiveConfig   `yaml:"live"`
	SortDatasets bool         `yaml:"sort_datasets"`
	HideBelow    *float64     `yaml:"hide_below"`
}

type SourceConfig struct {
	Kind          string   `yaml:"kind"`
	URL           string   `yaml:"url"`
	URLs          []string `yaml:"urls"`
	CSVTimeseries bool     `yaml:"csv_timeseries"`
}

type AxisConfig struct {
	Min   *float64 `yaml:"min"`
	Max   *float64 `yaml:"max"`
	Scale string   `yaml:"scale"`
}

type LiveConfig struct {
	Interval  Duration          `yaml:"interval"`
	History   int               `yaml:"history"`
	QueryArgs map[string]string `yaml:"query_args"`
}

// Duration is a time.Duration that decodes from the "30s"/"5m" YAML form,
// which yaml.v3 cannot place into a bare time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("chartconfig: bad duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads and validates a page configuration.
func Load(fs afero.Fs, path string) (*Page, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("chartconfig: reading %s: %w", path, err)
	}
	var page Page
	if err := yaml.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("chartconfig: parsing %s: %w", path, err)
	}
	if page.PlotWidth <= 0 {
		page.PlotWidth = 760
	}
	if page.PlotHeight <= 0 {
		page.PlotHeight = 420
	}
	if len(page.Charts) == 0 {
		return nil, fmt.Errorf("chartconfig: %s declares no charts", path)
	}
	return &page, nil
}

// Options converts one chart's configuration into engine options.
// Validation errors are local to the chart, per the page's error model.
func (cc *ChartConfig) Options() (chartdata.Options, error) {
	model, err := chartdata.ParseDataModel(cc.DataModel)
	if err != nil {
		return chartdata.Options{}, err
	}

	kind := chartdata.SourceKind(cc.Source.Kind)
	switch kind {
	case chartdata.SourcePacked, chartdata.SourceCSV, chartdata.SourceJSON:
		if cc.Source.URL == "" && len(cc.Source.URLs) == 0 {
			return chartdata.Options{}, fmt.Errorf(
				"chartconfig: chart %q has no source url", cc.Title)
		}
	case chartdata.SourcePlotFiles:
		if len(cc.Source.URLs) == 0 {
			return chartdata.Options{}, fmt.Errorf(
				"chartconfig: chart %q has no source urls", cc.Title)
		}
	default:
		return chartdata.Options{}, fmt.Errorf(
			"chartconfig: chart %q has unknown source kind %q", cc.Title, cc.Source.Kind)
	}

	return chartdata.Options{
		Title:     cc.Title,
		DataModel: model,
		Stacked:   cc.Stacked,
		X: chartdata.AxisOptions{
			Min: cc.X.Min, Max: cc.X.Max, Scale: cc.X.Scale,
		},
		Y: chartdata.AxisOptions{
			Min: cc.Y.Min, Max: cc.Y.Max, Scale: cc.Y.Scale,
		},
		Source: chartdata.SourceOptions{
			Kind:          kind,
			URL:           cc.Source.URL,
			URLs:          cc.Source.URLs,
			CSVTimeseries: cc.Source.CSVTimeseries,
		},
		Live: chartdata.LiveOptions{
			Interval:  time.Duration(cc.Live.Interval),
			History:   cc.Live.History,
			QueryArgs: cc.Live.QueryArgs,
		},
		SortDatasets: cc.SortDatasets,
		HideBelow:    cc.HideBelow,
	}, nil
}
