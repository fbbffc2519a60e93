package insight

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/glimpse-data/glimpse/internal/llm"
)

// Status is the outcome of one AI-powered insight request. The two failure
// variants carry distinct user-facing messages so callers never have to
// pattern-match error strings.
type Status string

const (
	StatusOK            Status = "ok"
	StatusNotConfigured Status = "not_configured"
	StatusFailed        Status = "failed"
)

// Explanation is the AI-powered insight result. On StatusOK, Lines holds the
// model's reply split into lines; otherwise Message carries a single
// user-facing line and Lines is empty.
type Explanation struct {
	Status  Status   `json:"status"`
	Lines   []string `json:"lines,omitempty"`
	Message string   `json:"message,omitempty"`
	Model   string   `json:"model,omitempty"`
}

const (
	notConfiguredMessage = "AI insights are disabled: no LLM provider or API key is configured."
	failedMessagePrefix  = "AI insight request failed: "
)

// Explainer turns prompts into Explanations through an LLM provider. Errors
// never escape it: every outcome becomes an Explanation. A nil provider means
// AI insights are not configured. The rate limiter keeps orchestrated runs
// (several prompts back-to-back) under the provider's throttling threshold.
type Explainer struct {
	provider llm.Provider
	limiter  *rate.Limiter
	config   llm.Config
}

// NewExplainer builds an Explainer from LLM configuration. An empty provider
// name yields a working Explainer whose answers are all StatusNotConfigured.
// An unknown provider name is a configuration mistake and is returned as an
// error.
func NewExplainer(cfg llm.Config) (*Explainer, error) {
	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return newExplainer(provider, cfg), nil
}

// NewExplainerWithProvider wires an explicit provider, used by tests and by
// callers that construct providers themselves.
func NewExplainerWithProvider(provider llm.Provider, cfg llm.Config) *Explainer {
	return newExplainer(provider, cfg)
}

func newExplainer(provider llm.Provider, cfg llm.Config) *Explainer {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 20
	}
	return &Explainer{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
		config:   cfg,
	}
}

// Enabled reports whether a provider is configured.
func (e *Explainer) Enabled() bool {
	return e.provider != nil
}

// Explain sends one prompt and converts every failure into a message. It
// never returns an error.
func (e *Explainer) Explain(ctx context.Context, prompt string) Explanation {
	if e.provider == nil {
		return Explanation{Status: StatusNotConfigured, Message: notConfiguredMessage}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return Explanation{Status: StatusFailed, Message: failedMessagePrefix + err.Error()}
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Prompt:    prompt,
		MaxTokens: e.config.MaxTokens,
	})
	if err != nil {
		return Explanation{Status: StatusFailed, Message: failedMessagePrefix + err.Error()}
	}

	return Explanation{
		Status: StatusOK,
		Lines:  splitLines(resp.Text),
		Model:  resp.Model,
	}
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimRight(line, " \t"); line != "" {
			out = append(out, line)
		}
	}
	return out
}
