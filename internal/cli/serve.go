package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/glimpse-data/glimpse/internal/insight"
	"github.com/glimpse-data/glimpse/internal/llm"
	"github.com/glimpse-data/glimpse/internal/server"
)

var (
	serveAddr string
	serveTTL  time.Duration
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP dashboard",
	Long: `Serve starts an HTTP API for interactive analysis: upload a CSV and
request any analysis, the combined report, or rendered charts against it.
Uploaded datasets are held in memory and expire after the configured TTL.

Example:
  glimpse serve
  glimpse serve --addr :9000 --ttl 1h
  glimpse serve --llm --llm-provider openai`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().DurationVar(&serveTTL, "ttl", 30*time.Minute, "how long uploaded datasets stay available")

	// LLM flags
	serveCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable AI-powered stage explanations")
	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	serveCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Output.Verbose {
		verbose = true
	}
	cfg.Output.Verbose = verbose
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("ttl") {
		cfg.Server.DatasetTTL = serveTTL
	}
	if llmEnabled {
		if err := configureLLM(cfg); err != nil {
			return err
		}
	}

	explainer, err := insight.NewExplainer(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("configure LLM: %w", err)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if !verbose {
		logger = logger.Level(zerolog.InfoLevel)
	}

	return server.New(logger, cfg, explainer).Start()
}
