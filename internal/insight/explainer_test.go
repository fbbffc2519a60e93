package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/glimpse-data/glimpse/internal/llm"
)

// stubProvider returns a canned reply or error.
type stubProvider struct {
	reply string
	err   error
	calls int
}

func (s *stubProvider) Name() string                         { return "stub" }
func (s *stubProvider) IsAvailable(ctx context.Context) bool { return s.err == nil }
func (s *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Text: s.reply, Model: "stub-1"}, nil
}

func TestExplainer_NotConfigured(t *testing.T) {
	e, err := NewExplainer(llm.Config{})
	if err != nil {
		t.Fatalf("NewExplainer failed: %v", err)
	}
	if e.Enabled() {
		t.Error("expected explainer to be disabled with empty config")
	}

	exp := e.Explain(context.Background(), "prompt")
	if exp.Status != StatusNotConfigured {
		t.Fatalf("expected StatusNotConfigured, got %s", exp.Status)
	}
	if exp.Message == "" {
		t.Error("expected a user-facing message")
	}
	if len(exp.Lines) != 0 {
		t.Errorf("expected no lines, got %v", exp.Lines)
	}
}

func TestExplainer_CallFailed(t *testing.T) {
	stub := &stubProvider{err: errors.New("rate limited")}
	e := NewExplainerWithProvider(stub, llm.DefaultConfig())

	exp := e.Explain(context.Background(), "prompt")
	if exp.Status != StatusFailed {
		t.Fatalf("expected StatusFailed, got %s", exp.Status)
	}
	if !strings.Contains(exp.Message, "rate limited") {
		t.Errorf("expected the provider error in the message, got %q", exp.Message)
	}
}

func TestExplainer_FailureMessagesAreDistinct(t *testing.T) {
	disabled, _ := NewExplainer(llm.Config{})
	failing := NewExplainerWithProvider(&stubProvider{err: errors.New("boom")}, llm.DefaultConfig())

	a := disabled.Explain(context.Background(), "p")
	b := failing.Explain(context.Background(), "p")
	if a.Message == b.Message {
		t.Errorf("not-configured and call-failed must be distinguishable, both were %q", a.Message)
	}
}

func TestExplainer_SplitsReplyIntoLines(t *testing.T) {
	stub := &stubProvider{reply: "- first insight\n\n- second insight\n"}
	e := NewExplainerWithProvider(stub, llm.DefaultConfig())

	exp := e.Explain(context.Background(), "prompt")
	if exp.Status != StatusOK {
		t.Fatalf("expected StatusOK, got %s (%s)", exp.Status, exp.Message)
	}
	if len(exp.Lines) != 2 {
		t.Fatalf("expected 2 non-empty lines, got %v", exp.Lines)
	}
	if exp.Model != "stub-1" {
		t.Errorf("expected model to be recorded, got %q", exp.Model)
	}
}

func TestExplainer_UnknownProvider(t *testing.T) {
	_, err := NewExplainer(llm.Config{Provider: "delphi"})
	if err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}
