package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glimpse-data/glimpse/internal/dataset"
	"github.com/glimpse-data/glimpse/internal/insight"
	"github.com/glimpse-data/glimpse/internal/llm"
	"github.com/glimpse-data/glimpse/internal/model"
	"github.com/glimpse-data/glimpse/internal/pipeline"
	"github.com/glimpse-data/glimpse/internal/render"
)

var (
	target      string
	horizon     int
	outMD       string
	outXLSX     string
	chartsDir   string
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.csv>",
	Short: "Run the full EDA pipeline over one CSV file",
	Long: `Analyze loads and cleans a CSV file, then runs the fixed pipeline:
summary, correlation, forecast, and outlier detection. Each stage can be
paired with an AI explanation when an LLM provider is configured.

Example:
  glimpse analyze sales.csv
  glimpse analyze sales.csv --target sales --horizon 90 --md report.md
  glimpse analyze sales.csv --llm --llm-provider openai --charts out/`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&target, "target", "", "numeric column to forecast (default: first numeric column)")
	analyzeCmd.Flags().IntVar(&horizon, "horizon", 0, "forecast horizon in days (default from config: 365)")

	// Output flags
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "write the combined report as Markdown to this path")
	analyzeCmd.Flags().StringVar(&outXLSX, "xlsx", "", "write the combined report as an Excel workbook to this path")
	analyzeCmd.Flags().StringVar(&chartsDir, "charts", "", "write HTML charts (heatmap, forecast) into this directory")

	// LLM flags
	analyzeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable AI-powered stage explanations")
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Output.Verbose {
		verbose = true
	}
	cfg.Output.Verbose = verbose
	if horizon > 0 {
		cfg.Forecast.Horizon = horizon
	}
	if llmEnabled {
		if err := configureLLM(cfg); err != nil {
			return err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := dataset.Load(f)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %s: %d rows, %d columns\n", path, d.Rows(), d.Cols())
		printPreview(d, cfg.Output.PreviewRows)
	}

	explainer, err := insight.NewExplainer(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("configure LLM: %w", err)
	}

	p := pipeline.New(explainer, cfg)
	report := p.Run(ctx, d, filepath.Base(path), target)

	md := render.Markdown(report)
	if outMD != "" {
		if err := os.WriteFile(outMD, []byte(md), 0o644); err != nil {
			return fmt.Errorf("write markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", outMD)
		}
	} else {
		fmt.Print(md)
	}

	fmt.Println("Rule-based insights:")
	for _, ins := range p.RuleBasedInsights(d) {
		fmt.Printf("  - %s\n", ins)
	}

	if outXLSX != "" {
		if err := render.WriteExcel(report, outXLSX); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Excel: %s\n", outXLSX)
		}
	}

	if chartsDir != "" {
		if err := writeCharts(report, chartsDir); err != nil {
			return err
		}
	}

	return nil
}

func writeCharts(report *pipeline.Report, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create charts dir: %w", err)
	}

	if stage := report.Stage(pipeline.StageCorrelation); stage != nil && stage.Correlation != nil {
		path := filepath.Join(dir, "correlation.html")
		if err := render.WriteChartFile(render.CorrelationHeatmap(stage.Correlation), path); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote chart: %s\n", path)
		}
	}

	if stage := report.Stage(pipeline.StageForecast); stage != nil && stage.Forecast != nil {
		path := filepath.Join(dir, "forecast.html")
		if err := render.WriteChartFile(render.ForecastChart(stage.Forecast), path); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote chart: %s\n", path)
		}
	}

	return nil
}

func printPreview(d *dataset.Dataset, n int) {
	fmt.Fprintf(os.Stderr, "  %s\n", strings.Join(d.Names(), " | "))
	for _, row := range d.Preview(n) {
		fmt.Fprintf(os.Stderr, "  %s\n", strings.Join(row, " | "))
	}
	fmt.Fprintln(os.Stderr)
}

// configureLLM fills cfg.LLM from flags and the environment.
func configureLLM(cfg *model.Config) error {
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel

	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}
