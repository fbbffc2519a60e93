package render

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glimpse-data/glimpse/internal/dataset"
	"github.com/glimpse-data/glimpse/internal/insight"
	"github.com/glimpse-data/glimpse/internal/llm"
	"github.com/glimpse-data/glimpse/internal/model"
	"github.com/glimpse-data/glimpse/internal/pipeline"
)

func testReport(t *testing.T, csv string) *pipeline.Report {
	t.Helper()
	d, err := dataset.Load(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	explainer, err := insight.NewExplainer(llm.Config{})
	if err != nil {
		t.Fatalf("NewExplainer failed: %v", err)
	}
	p := pipeline.New(explainer, model.DefaultConfig())
	return p.Run(context.Background(), d, "test.csv", "")
}

func TestMarkdown_AllSections(t *testing.T) {
	report := testReport(t, "date,sales\n2024-01-01,1\n2024-01-02,2\n2024-01-03,3\n")

	md := Markdown(report)
	for _, want := range []string{"## Summary", "## Correlation", "## Forecast", "## Outliers"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing section %q", want)
		}
	}
}

func TestMarkdown_UnavailableForecast(t *testing.T) {
	report := testReport(t, "sales\n1\n2\n3\n")

	md := Markdown(report)
	if !strings.Contains(md, "## Forecast") {
		t.Error("forecast section missing entirely")
	}
	if !strings.Contains(md, "unavailable") {
		t.Error("expected the unavailable reason in the forecast section")
	}
}

func TestReport_MarshalsToJSON(t *testing.T) {
	// Includes a constant column, whose self-correlation is NaN
	report := testReport(t, "a,b\n1,5\n2,5\n3,5\n")

	if _, err := json.Marshal(report); err != nil {
		t.Fatalf("report must marshal cleanly: %v", err)
	}
}

func TestCorrelationHeatmap_RendersDegenerateMatrix(t *testing.T) {
	report := testReport(t, "s\nx\ny\n")
	stage := report.Stage(pipeline.StageCorrelation)

	var buf bytes.Buffer
	if err := CorrelationHeatmap(stage.Correlation).Render(&buf); err != nil {
		t.Fatalf("rendering a 0x0 heatmap failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected HTML output")
	}
}

func TestWriteExcel(t *testing.T) {
	report := testReport(t, "date,sales\n2024-01-01,1\n2024-01-02,2\n2024-01-03,3\n")

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteExcel(report, path); err != nil {
		t.Fatalf("WriteExcel failed: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("expected a non-empty workbook at %s (err=%v)", path, err)
	}
}
