package insight

import (
	"strings"
	"testing"

	"github.com/glimpse-data/glimpse/internal/dataset"
	"github.com/glimpse-data/glimpse/internal/model"
)

func mustLoad(t *testing.T, raw string) *dataset.Dataset {
	t.Helper()
	d, err := dataset.Load(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return d
}

func defaultThresholds() model.InsightConfig {
	return model.DefaultConfig().Insight
}

func TestRuleBased_FlagsHighMax(t *testing.T) {
	// mean = 20.8, max = 100 > 1.5*mean
	d := mustLoad(t, "v\n1\n1\n1\n1\n100\n")

	insights := RuleBased(d, defaultThresholds())

	found := false
	for _, ins := range insights {
		if strings.Contains(ins, "v") && strings.Contains(ins, "high max") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a high-max insight, got %v", insights)
	}
}

func TestRuleBased_FlagsLowMin(t *testing.T) {
	// mean = 77.5, min = 10 < 0.5*mean; max 100 < 1.5*mean
	d := mustLoad(t, "v\n10\n100\n100\n100\n")

	insights := RuleBased(d, defaultThresholds())
	if len(insights) != 1 || !strings.Contains(insights[0], "low min") {
		t.Errorf("expected only a low-min insight, got %v", insights)
	}
}

func TestRuleBased_FallbackWhenNothingTriggers(t *testing.T) {
	d := mustLoad(t, "v\n10\n11\n12\n13\n")

	insights := RuleBased(d, defaultThresholds())
	if len(insights) != 1 || insights[0] != FallbackMessage {
		t.Errorf("expected single fallback message, got %v", insights)
	}
}

func TestRuleBased_ConfigurableRatios(t *testing.T) {
	d := mustLoad(t, "v\n10\n11\n12\n13\n")

	// With an extreme ratio everything is a high max
	cfg := model.InsightConfig{HighMaxRatio: 1.0001, LowMinRatio: 0}
	insights := RuleBased(d, cfg)
	if len(insights) != 1 || !strings.Contains(insights[0], "high max") {
		t.Errorf("expected high-max insight under tightened ratio, got %v", insights)
	}
}

func TestRuleBased_NeverEmpty(t *testing.T) {
	// No numeric columns at all
	d := mustLoad(t, "s\nx\ny\n")

	if insights := RuleBased(d, defaultThresholds()); len(insights) == 0 {
		t.Error("expected at least the fallback message, got empty list")
	}
}
