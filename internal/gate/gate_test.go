package gate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/escuriola/edaitorial/internal/gate"
	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/testutil"
)

type fixedAnalyzer struct {
	res   *model.AnalysisResult
	calls int
}

func (f *fixedAnalyzer) Analyze(context.Context, model.Content) *model.AnalysisResult {
	f.calls++
	return f.res
}

func issue(sev model.Severity, desc string) model.IssueRecord {
	return model.IssueRecord{Description: desc, Type: "SEO", Severity: sev, Category: model.CategorySEO}
}

func TestNew_ValidatesThreshold(t *testing.T) {
	t.Parallel()
	a := &fixedAnalyzer{}
	for _, threshold := range []int{-1, 101} {
		if _, err := gate.New(a, threshold, nil); !errors.Is(err, gate.ErrInvalidMinScore) {
			t.Errorf("min %d: expected ErrInvalidMinScore, got %v", threshold, err)
		}
	}
	if _, err := gate.New(nil, 80, nil); err == nil {
		t.Error("expected error for nil analyzer")
	}
}

func TestCheck_Threshold(t *testing.T) {
	t.Parallel()
	tests := []struct {
		score   int
		allowed bool
	}{
		{80, true},
		{79, false},
		{100, true},
	}
	for _, tt := range tests {
		a := &fixedAnalyzer{res: &model.AnalysisResult{OverallScore: tt.score, Source: model.SourceBatch}}
		g, err := gate.New(a, 80, &testutil.DummyLogger{})
		if err != nil {
			t.Fatal(err)
		}
		d := g.Check(context.Background(), model.Content{Title: "x"})
		if d.Allowed != tt.allowed || d.Score != tt.score || d.MinScore != 80 {
			t.Errorf("score %d: got %+v", tt.score, d)
		}
		if a.calls != 1 {
			t.Errorf("expected one analysis, got %d", a.calls)
		}
	}
}

func TestCheck_FailsafeAlwaysBlocked(t *testing.T) {
	t.Parallel()
	a := &fixedAnalyzer{res: model.FailsafeResult("fp", "v1")}
	g, _ := gate.New(a, 0, nil)

	d := g.Check(context.Background(), model.Content{})
	if d.Allowed {
		t.Fatal("fail-safe result must block publishing")
	}
	if len(d.Summary) != 1 || !strings.Contains(d.Summary[0], "not ready") {
		t.Errorf("unexpected summary %v", d.Summary)
	}
}

func TestSummarize_MostSevereFirst(t *testing.T) {
	t.Parallel()
	res := &model.AnalysisResult{Issues: []model.IssueRecord{
		issue(model.SeverityLow, "low-1"),
		issue(model.SeverityCritical, "crit-1"),
		issue(model.SeverityMedium, "med-1"),
		issue(model.SeverityHigh, "high-1"),
		issue(model.SeverityCritical, "crit-2"),
		issue(model.SeverityLow, "low-2"),
		issue(model.SeverityLow, "low-3"),
	}}

	got := gate.Summarize(res)
	want := []string{"crit-1", "crit-2", "high-1", "med-1", "low-1", "...and 2 more"}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %v", len(want), got)
	}
	for i, w := range want {
		if !strings.Contains(got[i], w) {
			t.Errorf("line %d: expected %q in %q", i, w, got[i])
		}
	}
	if res.Issues[0].Description != "low-1" {
		t.Error("Summarize must not reorder the result's issues")
	}
}
