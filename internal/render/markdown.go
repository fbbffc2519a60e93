package render

import (
	"fmt"
	"strings"

	"github.com/glimpse-data/glimpse/internal/insight"
	"github.com/glimpse-data/glimpse/internal/pipeline"
)

// Markdown renders the combined report as a markdown document.
func Markdown(report *pipeline.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Glimpse report: %s\n\n", report.Source)
	fmt.Fprintf(&b, "%d rows x %d columns, generated %s\n\n",
		report.Rows, report.Columns, report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	for i := range report.Stages {
		writeStage(&b, &report.Stages[i])
	}
	return b.String()
}

func writeStage(b *strings.Builder, stage *pipeline.StageResult) {
	switch stage.Stage {
	case pipeline.StageSummary:
		b.WriteString("## Summary\n\n```\n")
		b.WriteString(stage.SummaryText)
		b.WriteString("```\n\n")

	case pipeline.StageCorrelation:
		b.WriteString("## Correlation\n\n")
		m := stage.Correlation
		if m == nil || m.Dim() == 0 {
			b.WriteString("No numeric columns to correlate.\n\n")
			break
		}
		b.WriteString("| |")
		for _, l := range m.Labels {
			fmt.Fprintf(b, " %s |", l)
		}
		b.WriteString("\n|-|")
		b.WriteString(strings.Repeat("-|", m.Dim()))
		b.WriteString("\n")
		for i, l := range m.Labels {
			fmt.Fprintf(b, "| %s |", l)
			for j := range m.Labels {
				if v := m.At(i, j); v == v {
					fmt.Fprintf(b, " %.2f |", v)
				} else {
					b.WriteString(" - |")
				}
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")

	case pipeline.StageForecast:
		b.WriteString("## Forecast\n\n")
		if stage.Forecast == nil {
			if stage.Err != "" {
				fmt.Fprintf(b, "%s\n\n", stage.Err)
			} else {
				b.WriteString("Forecast unavailable.\n\n")
			}
			break
		}
		f := stage.Forecast
		fmt.Fprintf(b, "Target `%s`: fitted trend %+.4f per day, intercept %.4f, %d observed points, %d projected days.\n\n",
			f.Target, f.Slope, f.Intercept, len(f.Observed), len(f.Predicted))
		if n := len(f.Predicted); n > 0 {
			last := f.Predicted[n-1]
			fmt.Fprintf(b, "Projection ends %s at %.4f.\n\n", last.Date.Format("2006-01-02"), last.Value)
		}

	case pipeline.StageOutliers:
		b.WriteString("## Outliers\n\n")
		for _, c := range stage.Outliers {
			if len(c.Values) == 0 {
				fmt.Fprintf(b, "- **%s**: no outliers found\n", c.Column)
				continue
			}
			fmt.Fprintf(b, "- **%s** (bounds [%.4g, %.4g]): %v\n", c.Column, c.Lower, c.Upper, c.Values)
		}
		b.WriteString("\n")
	}

	writeInsightMD(b, stage.Insight)
}

func writeInsightMD(b *strings.Builder, e insight.Explanation) {
	if e.Status == insight.StatusOK {
		b.WriteString("### AI explanation\n\n")
		for _, line := range e.Lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		return
	}
	fmt.Fprintf(b, "_%s_\n\n", e.Message)
}
