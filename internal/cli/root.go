package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/glimpse-data/glimpse/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "glimpse",
	Short: "Glimpse - exploratory data analysis for CSV files",
	Long: `Glimpse takes a CSV file and computes the standard first-look analyses:

- descriptive summary (types, null counts, describe table, top categories)
- Pearson correlation heatmap over numeric columns
- linear trend forecast of a date-ordered numeric column
- IQR outlier detection
- insights, either rule-based or explained by an LLM

Run it once per file with "analyze", or keep it running as a small HTTP
dashboard with "serve". AI explanations are optional and require an API key;
everything else works offline.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("glimpse v0.2.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.glimpse/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.glimpse")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match GLIMPSE_*
	viper.SetEnvPrefix("GLIMPSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// AutomaticEnv only surfaces keys viper already knows about, so every
	// config key is bound explicitly (GLIMPSE_FORECAST_HORIZON and friends).
	for _, key := range []string{
		"output.verbose", "output.preview_rows",
		"insight.high_max_ratio", "insight.low_min_ratio",
		"forecast.horizon",
		"llm.provider", "llm.model", "llm.api_key", "llm.base_url",
		"llm.timeout", "llm.max_tokens", "llm.requests_per_minute",
		"server.addr", "server.dataset_ttl", "server.max_upload_bytes",
		"server.shutdown_timeout",
	} {
		_ = viper.BindEnv(key)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig resolves the configuration hierarchy up to flags: defaults,
// overlaid with whatever viper read from the config file and the GLIMPSE_*
// environment. Commands apply their own flag overrides on top.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return cfg, nil
}
