package render

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/glimpse-data/glimpse/internal/analysis"
)

// CorrelationHeatmap builds a labeled heatmap with numeric annotations. It
// handles degenerate 0x0 and 1x1 matrices without failing.
func CorrelationHeatmap(m *analysis.CorrelationMatrix) *charts.HeatMap {
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Correlation Matrix"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      m.Labels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      m.Labels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			Orient:     "horizontal",
			Left:       "center",
			InRange: &opts.VisualMapInRange{
				Color: []string{"#313695", "#f7f7f7", "#a50026"},
			},
		}),
	)

	data := make([]opts.HeatMapData, 0, m.Dim()*m.Dim())
	for i := 0; i < m.Dim(); i++ {
		for j := 0; j < m.Dim(); j++ {
			v := m.At(i, j)
			if math.IsNaN(v) {
				data = append(data, opts.HeatMapData{Value: [3]interface{}{i, j, "-"}})
				continue
			}
			data = append(data, opts.HeatMapData{
				Value: [3]interface{}{i, j, fmt.Sprintf("%.2f", v)},
			})
		}
	}
	hm.AddSeries("pearson", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)
	return hm
}

// ForecastChart overlays the observed series (solid) and the projection
// (dashed) on one line chart.
func ForecastChart(f *analysis.Forecast) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Forecast vs. Actual"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	n := len(f.Observed)
	total := n + len(f.Predicted)
	dates := make([]string, 0, total)
	actual := make([]opts.LineData, 0, total)
	forecast := make([]opts.LineData, 0, total)

	for _, p := range f.Observed {
		dates = append(dates, p.Date.Format("2006-01-02"))
		actual = append(actual, opts.LineData{Value: p.Value})
		forecast = append(forecast, opts.LineData{Value: "-"})
	}
	for _, p := range f.Predicted {
		dates = append(dates, p.Date.Format("2006-01-02"))
		actual = append(actual, opts.LineData{Value: "-"})
		forecast = append(forecast, opts.LineData{Value: p.Value})
	}

	line.SetXAxis(dates).
		AddSeries("Actual", actual).
		AddSeries("Forecast", forecast,
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}),
		)
	return line
}

// Renderable is what go-echarts charts expose for HTML output.
type Renderable interface {
	Render(w io.Writer) error
}

// WriteChartFile renders a chart as a standalone HTML file.
func WriteChartFile(c Renderable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()
	if err := c.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
