package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/testutil"
	"github.com/escuriola/edaitorial/internal/tracker"
)

// newTestOrchestrator creates an Orchestrator on an in-memory database.
func newTestOrchestrator(t *testing.T, opts ...ComponentOption) *Orchestrator {
	t.Helper()
	cfg := DefaultConfig()
	cfg.StorageRoot = ":memory:"

	orch, err := NewOrchestrator(cfg, &testutil.DummyLogger{}, opts...)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	t.Cleanup(func() { orch.Close() })
	return orch
}

const twoCritical = `[
 {"description":"Missing alt text","type":"Accessibility","severity":"Critical","impact":"High"},
 {"description":"Broken link to /node/9","type":"Broken link","severity":"Critical","impact":"High"}
]`

// One critical issue per category: every category at 75.
const fiveCritical = `[
 {"description":"a","type":"SEO","severity":"Critical"},
 {"description":"b","type":"Accessibility","severity":"Critical"},
 {"description":"c","type":"Typos","severity":"Critical"},
 {"description":"d","type":"Link","severity":"Critical"},
 {"description":"e","type":"Content","severity":"Critical"}
]`

func TestBuildCheckers_UnknownNameIsReported(t *testing.T) {
	t.Parallel()
	off := false
	cfg := DefaultConfig()
	cfg.Checkers = map[string]CheckerConfig{
		CheckerTypos: {Enabled: &off},
		"speling":    {Priority: 3},
	}
	logger := &testutil.DummyLogger{}

	reg, err := buildCheckers(cfg, nil, nil, logger)
	if err != nil {
		t.Fatalf("buildCheckers: %v", err)
	}
	if _, ok := reg.Get("speling"); ok {
		t.Error("unknown name must not be registered")
	}
	if _, ok := reg.Get(CheckerTypos); !ok {
		t.Error("disabled checker should stay registered")
	}
	for _, c := range reg.Enabled() {
		if c.Name() == CheckerTypos {
			t.Error("typos should be disabled")
		}
	}
	if logger.WarnCount() != 1 || logger.Warns[0] != "unknown checker in configuration, ignored" {
		t.Errorf("expected one unknown checker warning, got %v", logger.Warns)
	}
}

func TestOrchestrator_AnalyzeNodeRecordsHistory(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Replies: []string{"[]", twoCritical}}
	orch := newTestOrchestrator(t, WithBackend(backend))
	ctx := context.Background()

	c := model.Content{NodeID: "42", Title: "Release notes", Body: "<p>Version 1 is out.</p>", URL: "https://example.com/node/42"}
	first := orch.AnalyzeNode(ctx, c)
	if first.OverallScore != 100 {
		t.Fatalf("expected clean first analysis, got %d", first.OverallScore)
	}

	node, err := orch.GetNode(ctx, "42")
	if err != nil || node.Title != "Release notes" {
		t.Fatalf("expected node registered, got %+v %v", node, err)
	}

	c.Body = "<p>Version 2 is out.</p>"
	second := orch.AnalyzeNode(ctx, c)
	if second.OverallScore != 90 {
		t.Fatalf("expected 90 after two critical issues, got %d", second.OverallScore)
	}

	entries, err := orch.History(ctx, "42", 0)
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d %v", len(entries), err)
	}

	cmp, err := orch.Compare(ctx, "42")
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if cmp.Scores.ScoreDelta != -10 || !cmp.ContentChanged || len(cmp.Chunks) == 0 {
		t.Errorf("unexpected comparison %+v", cmp)
	}
}

func TestOrchestrator_UnchangedContentKeepsHistory(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Replies: []string{"[]", twoCritical}}
	orch := newTestOrchestrator(t, WithBackend(backend))
	ctx := context.Background()

	c := model.Content{NodeID: "7", Title: "Pricing", Body: "<p>Old prices.</p>"}
	orch.AnalyzeNode(ctx, c)
	c.Body = "<p>New prices.</p>"
	orch.AnalyzeNode(ctx, c)
	again := orch.AnalyzeNode(ctx, c)

	if backend.Calls() != 2 || again.OverallScore != 90 {
		t.Fatalf("expected the repeat served from cache, got %d calls and score %d", backend.Calls(), again.OverallScore)
	}
	entries, err := orch.History(ctx, "7", 0)
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d %v", len(entries), err)
	}
	cmp, err := orch.Compare(ctx, "7")
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if cmp.Scores.ScoreDelta != -10 || !cmp.ContentChanged {
		t.Errorf("expected the old to new change, got %+v", cmp.Scores)
	}
}

func TestOrchestrator_ContentWithoutNodeIsNotRecorded(t *testing.T) {
	t.Parallel()
	orch := newTestOrchestrator(t, WithBackend(&testutil.DummyBackend{}))
	ctx := context.Background()

	orch.AnalyzeNode(ctx, model.Content{Title: "Loose draft", Body: "text"})

	nodes, err := orch.ListNodes(ctx, 0)
	if err != nil || len(nodes) != 0 {
		t.Errorf("expected no nodes, got %d %v", len(nodes), err)
	}
	if _, err := orch.Compare(ctx, "missing"); !errors.Is(err, tracker.ErrNoHistory) {
		t.Errorf("expected ErrNoHistory, got %v", err)
	}
}

func TestOrchestrator_CheckPublish(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "Blocked") {
			return fiveCritical, nil
		}
		return "[]", nil
	}}
	orch := newTestOrchestrator(t, WithBackend(backend))
	ctx := context.Background()

	ok := orch.CheckPublish(ctx, model.Content{Title: "Fine", Body: "x"})
	if !ok.Allowed || ok.Score != 100 {
		t.Errorf("expected publish allowed, got %+v", ok)
	}

	blocked := orch.CheckPublish(ctx, model.Content{Title: "Blocked", Body: "y"})
	if blocked.Allowed || blocked.Score != 75 || blocked.MinScore != 80 {
		t.Errorf("expected publish blocked, got %+v", blocked)
	}
	if len(blocked.Summary) == 0 || !strings.Contains(blocked.Summary[0], "Critical") {
		t.Errorf("expected critical issues in summary, got %v", blocked.Summary)
	}
}

func TestOrchestrator_NoCredentialsUsesRules(t *testing.T) {
	t.Parallel()
	orch := newTestOrchestrator(t)
	if orch.Components().Backend != nil {
		t.Fatal("expected no backend without credentials")
	}

	res := orch.AnalyzeNode(context.Background(), model.Content{Title: "Tiny", Body: "short"})
	if res.Source != model.SourceRules || len(res.Issues) != 2 {
		t.Errorf("expected rule-based result, got %s with %d issues", res.Source, len(res.Issues))
	}
}

func TestOrchestrator_AnalyzeJob(t *testing.T) {
	t.Parallel()
	orch := newTestOrchestrator(t, WithBackend(&testutil.DummyBackend{}))

	contents := []model.Content{
		{NodeID: "a", Title: "A", Body: "one"},
		{NodeID: "b", Title: "B", Body: "two"},
		{NodeID: "c", Title: "C", Body: "three"},
	}
	job, err := orch.StartAnalyzeJob(context.Background(), contents)
	if err != nil {
		t.Fatalf("StartAnalyzeJob: %v", err)
	}

	events := drainJob(t, job)
	want := []string{"status/pending", "status/running", "progress/", "progress/", "progress/", "result/done"}
	if got := eventKinds(events); strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("unexpected event sequence %v", got)
	}
	if last := events[len(events)-1]; last.Processed != 3 || last.Total != 3 {
		t.Errorf("expected final counts 3/3, got %d/%d", last.Processed, last.Total)
	}
	snap, err := orch.GetJob(job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if snap.Status != JobDone || snap.Processed != 3 || len(snap.Results) != 3 {
		t.Errorf("unexpected job state %+v", snap)
	}
}

func TestOrchestrator_CancelJob(t *testing.T) {
	t.Parallel()
	orch := newTestOrchestrator(t, WithBackend(&testutil.DummyBackend{Delay: 5 * time.Second}))

	contents := []model.Content{
		{NodeID: "a", Title: "A", Body: "one"},
		{NodeID: "b", Title: "B", Body: "two"},
		{NodeID: "c", Title: "C", Body: "three"},
	}
	job, err := orch.StartAnalyzeJob(context.Background(), contents)
	if err != nil {
		t.Fatalf("StartAnalyzeJob: %v", err)
	}
	for ev := range job.Events {
		if ev.Type == JobEventStatus && ev.Status == JobRunning {
			break
		}
	}
	orch.CancelJob(job.ID)

	events := drainJob(t, job)
	if len(events) == 0 {
		t.Fatal("expected events after cancel")
	}
	last := events[len(events)-1]
	if last.Type != JobEventStatus || last.Status != JobCanceled || last.Error == "" {
		t.Errorf("expected a canceled status event last, got %+v", last)
	}
	snap, err := orch.GetJob(job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if snap.Status != JobCanceled || snap.Processed >= 3 {
		t.Errorf("unexpected job state %+v", snap)
	}
}

func TestOrchestrator_JobErrors(t *testing.T) {
	t.Parallel()
	orch := newTestOrchestrator(t)
	if _, err := orch.StartAnalyzeJob(context.Background(), nil); err == nil {
		t.Error("expected error for empty job")
	}
	if _, err := orch.GetJob("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

// drainJob reads job events until the channel closes.
func drainJob(t *testing.T, job *Job) []JobEvent {
	t.Helper()
	var events []JobEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-job.Events:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("job did not finish")
			return nil
		}
	}
}

func eventKinds(events []JobEvent) []string {
	kinds := make([]string, len(events))
	for i, ev := range events {
		kinds[i] = string(ev.Type) + "/" + string(ev.Status)
	}
	return kinds
}

// ─── fetch / crawl ─────────────────────────────────────────────────────

func TestOrchestrator_FetchContent(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Bodies: map[string]string{
			"https://example.com/node/3": "<html><head><title>Guide</title></head><body><p>Text</p></body></html>",
		},
		FailURLs: map[string]bool{"https://example.com/down": true},
	}
	orch := newTestOrchestrator(t, WithWebClient(wc))

	got, err := orch.FetchContent(context.Background(), []string{
		"https://example.com/node/3",
		"https://example.com/down",
	})
	if err == nil || !strings.Contains(err.Error(), "example.com/down") {
		t.Errorf("expected joined fetch error, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one page, got %d", len(got))
	}
	if got[0].NodeID != "3" || got[0].Title != "Guide" {
		t.Errorf("unexpected content %+v", got[0])
	}
}

func TestOrchestrator_CrawlNodes(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Bodies: map[string]string{
			"https://example.com":        `<html><head><title>Home</title></head><body><a href="/node/1">one</a> <a href="/about">about</a> <a href="https://other.example/x">x</a></body></html>`,
			"https://example.com/node/1": `<html><head><title>First</title></head><body><p>1</p></body></html>`,
			"https://example.com/about":  `<html><body><p>no title</p></body></html>`,
		},
	}
	orch := newTestOrchestrator(t, WithWebClient(wc))
	ctx := context.Background()

	nodes, err := orch.CrawlNodes(ctx, "https://example.com", 1)
	if err != nil {
		t.Fatalf("CrawlNodes: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %+v", nodes)
	}

	byID := map[string]model.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}
	if byID["1"].Title != "First" {
		t.Errorf("expected /node/1 under id 1, got %+v", byID["1"])
	}
	if byID["/"].Title != "Home" {
		t.Errorf("expected root under /, got %+v", byID["/"])
	}
	if byID["/about"].Title != "https://example.com/about" {
		t.Errorf("expected url as fallback title, got %+v", byID["/about"])
	}

	if _, err := orch.GetNode(ctx, "1"); err != nil {
		t.Errorf("crawled node not registered: %v", err)
	}
}

func TestOrchestrator_CrawlNodesDepthZero(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Bodies: map[string]string{
			"https://example.com": `<html><head><title>Home</title></head><body><a href="/node/1">one</a></body></html>`,
		},
	}
	orch := newTestOrchestrator(t, WithWebClient(wc))

	nodes, err := orch.CrawlNodes(context.Background(), "https://example.com", 0)
	if err != nil || len(nodes) != 1 {
		t.Fatalf("expected root only, got %+v %v", nodes, err)
	}
	if wc.RequestCount() != 1 {
		t.Errorf("expected a single request, got %d", wc.RequestCount())
	}
}

func TestOrchestrator_CrawlNodesInvalidRoot(t *testing.T) {
	t.Parallel()
	orch := newTestOrchestrator(t, WithWebClient(&testutil.DummyWebClient{}))

	if _, err := orch.CrawlNodes(context.Background(), "not a url", -1); !errors.Is(err, ErrInvalidCrawlRoot) {
		t.Fatalf("expected ErrInvalidCrawlRoot, got %v", err)
	}
}
