package analysis

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/zeu5/lewis-signaling/core"
	"github.com/zeu5/lewis-signaling/util"
)

// ChartComparator renders the success curves of every experiment as an
// HTML page with one cumulative and one windowed line chart.
type ChartComparator struct {
	savePath string
	run      int
	logger   *slog.Logger
}

var _ core.Comparator = &ChartComparator{}

func NewChartComparator(savePath string, run int, logger *slog.Logger) *ChartComparator {
	if logger == nil {
		logger = util.DiscardLogger()
	}
	return &ChartComparator{
		savePath: path.Join(savePath, "success.html"),
		run:      run,
		logger:   logger,
	}
}

func (c *ChartComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	if err := c.save(experimentNames, datasets); err != nil {
		c.logger.Error("saving chart", "path", c.savePath, "error", err)
	}
}

func (c *ChartComparator) save(experimentNames []string, datasets []core.DataSet) error {
	if err := os.MkdirAll(path.Dir(c.savePath), 0755); err != nil {
		return err
	}
	f, err := os.Create(c.savePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return RenderSuccessChart(f, fmt.Sprintf("Run %d", c.run), experimentNames, datasets)
}

// RenderSuccessChart writes the chart page for the given success datasets.
// Datasets that are nil or not *SuccessDataset are skipped.
func RenderSuccessChart(w io.Writer, subtitle string, experimentNames []string, datasets []core.DataSet) error {
	cumulative := newSuccessLine("Cumulative success rate", subtitle)
	windowed := newSuccessLine("Windowed success rate", subtitle)

	xAxisSet := false
	for i, name := range experimentNames {
		ds, ok := datasets[i].(*SuccessDataset)
		if !ok || ds == nil {
			continue
		}
		if !xAxisSet {
			rounds := make([]string, len(ds.Rounds))
			for j, r := range ds.Rounds {
				rounds[j] = strconv.Itoa(r)
			}
			cumulative.SetXAxis(rounds)
			windowed.SetXAxis(rounds)
			xAxisSet = true
		}
		cumulative.AddSeries(name, lineData(ds.Cumulative))
		windowed.AddSeries(name, lineData(ds.Windowed))
	}

	page := components.NewPage()
	page.AddCharts(cumulative, windowed)
	return page.Render(w)
}

func newSuccessLine(title, subtitle string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)
	return line
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.LineData{Value: v})
	}
	return items
}

type ChartComparatorConstructor struct {
	savePath string
	logger   *slog.Logger
}

var _ core.ComparatorConstructor = &ChartComparatorConstructor{}

func NewChartComparatorConstructor(savePath string, logger *slog.Logger) *ChartComparatorConstructor {
	return &ChartComparatorConstructor{
		savePath: savePath,
		logger:   logger,
	}
}

func (c *ChartComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewChartComparator(path.Join(c.savePath, strconv.Itoa(run)), run, c.logger)
}
