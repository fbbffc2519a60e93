package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/glimpse-data/glimpse/internal/analysis"
	"github.com/glimpse-data/glimpse/internal/dataset"
	"github.com/glimpse-data/glimpse/internal/insight"
	"github.com/glimpse-data/glimpse/internal/model"
)

// Stage identifies one fixed step of the orchestrated run.
type Stage string

const (
	StageSummary     Stage = "summary"
	StageCorrelation Stage = "correlation"
	StageForecast    Stage = "forecast"
	StageOutliers    Stage = "outliers"
)

// StageResult pairs one stage's output with its AI explanation. Exactly one
// of the payload fields is set on success; Unavailable marks a forecast that
// could not be produced, Err anything else that went wrong.
type StageResult struct {
	Stage       Stage                       `json:"stage"`
	Err         string                      `json:"error,omitempty"`
	Unavailable bool                        `json:"unavailable,omitempty"`
	SummaryText string                      `json:"summary_text,omitempty"`
	Correlation *analysis.CorrelationMatrix `json:"correlation,omitempty"`
	Forecast    *analysis.Forecast          `json:"forecast,omitempty"`
	Outliers    analysis.OutlierReport      `json:"outliers,omitempty"`
	Insight     insight.Explanation         `json:"insight"`
}

// Report is the combined output of one orchestrated run: always four stages,
// in fixed order, regardless of individual stage failures.
type Report struct {
	Source      string        `json:"source"`
	Rows        int           `json:"rows"`
	Columns     int           `json:"columns"`
	GeneratedAt time.Time     `json:"generated_at"`
	Stages      []StageResult `json:"stages"`
}

// Stage returns the result for the named stage.
func (r *Report) Stage(s Stage) *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Stage == s {
			return &r.Stages[i]
		}
	}
	return nil
}

// Pipeline runs the fixed Summary -> Correlation -> Forecast -> Outliers
// sequence over one dataset. Stages are independent: no stage's failure stops
// the ones after it, and every run yields four results.
type Pipeline struct {
	explainer *insight.Explainer
	insight   model.InsightConfig
	horizon   int
}

// New creates a pipeline. The explainer may be one built from an empty LLM
// config, in which case every stage insight reports not-configured.
func New(explainer *insight.Explainer, cfg *model.Config) *Pipeline {
	return &Pipeline{
		explainer: explainer,
		insight:   cfg.Insight,
		horizon:   cfg.Forecast.Horizon,
	}
}

// Run executes all four stages against d. The forecast targets the given
// column, or the first numeric column when target is empty.
func (p *Pipeline) Run(ctx context.Context, d *dataset.Dataset, source, target string) *Report {
	report := &Report{
		Source:      source,
		Rows:        d.Rows(),
		Columns:     d.Cols(),
		GeneratedAt: time.Now().UTC(),
	}

	report.Stages = append(report.Stages,
		p.runSummary(ctx, d),
		p.runCorrelation(ctx, d),
		p.runForecast(ctx, d, target),
		p.runOutliers(ctx, d),
	)
	return report
}

func (p *Pipeline) runSummary(ctx context.Context, d *dataset.Dataset) StageResult {
	res := StageResult{Stage: StageSummary}
	res.SummaryText = analysis.Summarize(d)
	res.Insight = p.explainer.Explain(ctx, insight.SummaryPrompt(res.SummaryText))
	return res
}

func (p *Pipeline) runCorrelation(ctx context.Context, d *dataset.Dataset) StageResult {
	res := StageResult{Stage: StageCorrelation}
	res.Correlation = analysis.Correlate(d)
	res.Insight = p.explainer.Explain(ctx, insight.CorrelationPrompt(res.Correlation))
	return res
}

func (p *Pipeline) runForecast(ctx context.Context, d *dataset.Dataset, target string) StageResult {
	res := StageResult{Stage: StageForecast}

	if target == "" {
		if numeric := d.NumericColumns(); len(numeric) > 0 {
			target = numeric[0].Name
		}
	}
	if target == "" {
		res.Unavailable = true
		res.Insight = p.explainer.Explain(ctx,
			"The forecast stage was skipped because the dataset has no numeric column to forecast. Say so briefly.")
		return res
	}

	f, err := analysis.ForecastLinear(d, target, p.horizon)
	switch {
	case errors.Is(err, analysis.ErrUnavailable):
		res.Unavailable = true
		res.Err = err.Error()
	case err != nil:
		res.Err = err.Error()
	default:
		res.Forecast = f
		res.Insight = p.explainer.Explain(ctx, insight.ForecastPrompt(f))
		return res
	}

	res.Insight = p.explainer.Explain(ctx,
		"The forecast stage could not run: "+res.Err+". Explain briefly what the dataset is missing.")
	return res
}

func (p *Pipeline) runOutliers(ctx context.Context, d *dataset.Dataset) StageResult {
	res := StageResult{Stage: StageOutliers}
	res.Outliers = analysis.DetectOutliers(d)
	res.Insight = p.explainer.Explain(ctx, insight.OutlierPrompt(res.Outliers))
	return res
}

// RuleBasedInsights exposes the offline insight mode alongside the pipeline.
func (p *Pipeline) RuleBasedInsights(d *dataset.Dataset) []string {
	return insight.RuleBased(d, p.insight)
}
