package model

import "time"

// Config is the full Glimpse configuration, assembled from defaults, the
// config file, GLIMPSE_* environment variables and CLI flags.
type Config struct {
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Insight  InsightConfig  `yaml:"insight" mapstructure:"insight"`
	Forecast ForecastConfig `yaml:"forecast" mapstructure:"forecast"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
}

// OutputConfig controls local rendering.
type OutputConfig struct {
	// Verbose enables progress output on stderr
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`

	// PreviewRows is the number of leading rows shown after ingestion
	PreviewRows int `yaml:"preview_rows" mapstructure:"preview_rows"`
}

// InsightConfig holds the rule-based insight thresholds. The ratios are
// inherited conventions, not statistically principled values, so they are
// configuration rather than constants.
type InsightConfig struct {
	// HighMaxRatio flags a column when max > ratio * mean
	HighMaxRatio float64 `yaml:"high_max_ratio" mapstructure:"high_max_ratio"`

	// LowMinRatio flags a column when min < ratio * mean
	LowMinRatio float64 `yaml:"low_min_ratio" mapstructure:"low_min_ratio"`
}

// ForecastConfig holds forecasting defaults.
type ForecastConfig struct {
	// Horizon is the number of future days to project
	Horizon int `yaml:"horizon" mapstructure:"horizon"`
}

// LLMConfig holds LLM provider configuration for AI-powered insights.
type LLMConfig struct {
	// Provider name: "openai", "ollama", "" (disabled)
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model name (provider-specific)
	Model string `yaml:"model" mapstructure:"model"`

	// APIKey for hosted providers
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout for API requests, in seconds
	Timeout int `yaml:"timeout" mapstructure:"timeout"`

	// MaxTokens for response generation
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`

	// RequestsPerMinute caps outbound LLM calls (orchestrated runs issue
	// several prompts back-to-back)
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// ServerConfig holds the HTTP dashboard configuration.
type ServerConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr" mapstructure:"addr"`

	// DatasetTTL is how long an uploaded dataset stays available
	DatasetTTL time.Duration `yaml:"dataset_ttl" mapstructure:"dataset_ttl"`

	// MaxUploadBytes limits the size of an uploaded CSV
	MaxUploadBytes int64 `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`

	// ShutdownTimeout is the deadline for draining requests on shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Verbose:     false,
			PreviewRows: 5,
		},
		Insight: InsightConfig{
			HighMaxRatio: 1.5,
			LowMinRatio:  0.5,
		},
		Forecast: ForecastConfig{
			Horizon: 365,
		},
		LLM: LLMConfig{
			Provider:          "", // Disabled by default
			Model:             "",
			Timeout:           30,
			MaxTokens:         1000,
			RequestsPerMinute: 20,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			DatasetTTL:      30 * time.Minute,
			MaxUploadBytes:  32 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}
