package insight

import (
	"fmt"
	"strings"

	"github.com/glimpse-data/glimpse/internal/analysis"
)

// Prompt builders for each analysis stage. The wording mirrors the questions
// an analyst would ask about that stage's output; the statistics themselves
// are inlined so the model has no reason to guess.

// SummaryPrompt asks for dataset-level insights from the descriptive summary.
func SummaryPrompt(summary string) string {
	return fmt.Sprintf(
		"The dataset summary is:\n%s\nProvide clear, concise insights in bullet points about patterns, trends, and anomalies.",
		summary)
}

// CorrelationPrompt asks for a plain-English reading of the matrix.
func CorrelationPrompt(m *analysis.CorrelationMatrix) string {
	var b strings.Builder
	b.WriteString("The Pearson correlation matrix is:\n")
	fmt.Fprintf(&b, "%12s", "")
	for _, l := range m.Labels {
		fmt.Fprintf(&b, " %12s", l)
	}
	b.WriteString("\n")
	for i, l := range m.Labels {
		fmt.Fprintf(&b, "%12s", l)
		for j := range m.Labels {
			fmt.Fprintf(&b, " %12.2f", m.At(i, j))
		}
		b.WriteString("\n")
	}
	b.WriteString("Explain the main relationships in plain English.")
	return b.String()
}

// ForecastPrompt asks for a trend interpretation.
func ForecastPrompt(f *analysis.Forecast) string {
	return fmt.Sprintf(
		"The dataset's %q values have been forecasted for the next %d days with a linear trend of %+.4f per day from a fitted intercept of %.4f. "+
			"Explain the forecast trend and whether it shows growth, decline, or stability.",
		f.Target, len(f.Predicted), f.Slope, f.Intercept)
}

// OutlierPrompt asks what the detected outliers might mean.
func OutlierPrompt(report analysis.OutlierReport) string {
	var b strings.Builder
	b.WriteString("The dataset has these detected outliers (IQR rule):\n")
	for _, c := range report {
		if len(c.Values) == 0 {
			fmt.Fprintf(&b, "  - %s: none\n", c.Column)
			continue
		}
		fmt.Fprintf(&b, "  - %s (bounds [%.4g, %.4g]): %v\n", c.Column, c.Lower, c.Upper, c.Values)
	}
	b.WriteString("Explain in plain language what these outliers might mean.")
	return b.String()
}
