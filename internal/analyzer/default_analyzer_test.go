package analyzer_test

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/escuriola/edaitorial/internal/analyzer"
	"github.com/escuriola/edaitorial/internal/cache"
	"github.com/escuriola/edaitorial/internal/checker"
	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/testutil"
)

const criticalSEO = `[{"description":"Missing meta description","type":"SEO","severity":"Critical","impact":"High"}]`

func content() model.Content {
	return model.Content{
		Title:       "Short title",
		Body:        "<p>A few words of <b>body</b> text.</p>",
		ContentType: "article",
	}
}

func newAnalyzer(t *testing.T, cfg *analyzer.Config, opts ...analyzer.Option) *analyzer.DefaultAnalyzer {
	t.Helper()
	a, err := analyzer.NewDefaultAnalyzer(cfg, nil, &testutil.DummyLogger{}, opts...)
	if err != nil {
		t.Fatalf("NewDefaultAnalyzer: %v", err)
	}
	return a
}

func aiRegistry(t *testing.T, backend *testutil.DummyBackend, names ...string) *checker.Registry {
	t.Helper()
	reg := checker.NewRegistry()
	for i, name := range names {
		if err := reg.Register(checker.NewAIChecker(name, (i+1)*10, "", backend, nil)); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	return reg
}

func noCache() *analyzer.Config {
	cfg := analyzer.DefaultConfig()
	cfg.CacheEnabled = false
	return cfg
}

// ─── Construction ──────────────────────────────────────────────────────

func TestNewDefaultAnalyzer_RequiresLogger(t *testing.T) {
	t.Parallel()
	if _, err := analyzer.NewDefaultAnalyzer(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil logger")
	}
}

// ─── Batch tier ────────────────────────────────────────────────────────

func TestAnalyze_BatchCriticalSEO(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Replies: []string{"```json\n" + criticalSEO + "\n```"}}
	a := newAnalyzer(t, noCache(), analyzer.WithBackend(backend))

	res := a.Analyze(context.Background(), content())

	if res.Source != model.SourceBatch {
		t.Fatalf("expected batch source, got %s", res.Source)
	}
	if res.CategoryScores[model.CategorySEO] != 75 {
		t.Errorf("expected seo 75, got %d", res.CategoryScores[model.CategorySEO])
	}
	for _, c := range model.Categories[1:] {
		if res.CategoryScores[c] != 100 {
			t.Errorf("expected %s 100, got %d", c, res.CategoryScores[c])
		}
	}
	if res.OverallScore != 95 || res.ScoreClass != model.ClassExcellent {
		t.Errorf("expected 95/excellent, got %d/%s", res.OverallScore, res.ScoreClass)
	}
	if res.ID == "" || res.Fingerprint != cache.Fingerprint(content().Title, content().Body) {
		t.Errorf("expected id and fingerprint to be set: %+v", res)
	}
	if backend.Calls() != 1 {
		t.Errorf("expected a single batch call, got %d", backend.Calls())
	}
}

func TestAnalyze_BatchEmptyArray(t *testing.T) {
	t.Parallel()
	a := newAnalyzer(t, noCache(), analyzer.WithBackend(&testutil.DummyBackend{Replies: []string{"[]"}}))

	res := a.Analyze(context.Background(), content())
	if res.OverallScore != 100 || res.ScoreClass != model.ClassExcellent || len(res.Issues) != 0 {
		t.Errorf("expected clean result, got %d/%s with %d issues", res.OverallScore, res.ScoreClass, len(res.Issues))
	}
}

func TestAnalyze_MalformedResponseYieldsNoIssues(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Replies: []string{"not json at all"}}
	a := newAnalyzer(t, noCache(),
		analyzer.WithBackend(backend),
		analyzer.WithCheckers(aiRegistry(t, backend, "seo", "typos")))

	res := a.Analyze(context.Background(), content())

	if res.Issues == nil || len(res.Issues) != 0 {
		t.Fatalf("expected issues == [], got %v", res.Issues)
	}
	if res.Source != model.SourceCheckers {
		t.Errorf("expected checkers source, got %s", res.Source)
	}
	if backend.Calls() != 3 {
		t.Errorf("expected batch plus two checker calls, got %d", backend.Calls())
	}
}

func TestAnalyze_MalformedWithoutCheckers(t *testing.T) {
	t.Parallel()
	a := newAnalyzer(t, noCache(), analyzer.WithBackend(&testutil.DummyBackend{Replies: []string{"{\"issues\": 3}"}}))

	res := a.Analyze(context.Background(), content())
	if len(res.Issues) != 0 || res.OverallScore != 100 {
		t.Errorf("expected no issues, got %v", res.Issues)
	}
}

// ─── Per-checker tier ──────────────────────────────────────────────────

func TestAnalyze_FallsBackToCheckers(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Respond: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "before publication"):
			return "Sorry, I cannot help with that.", nil
		case strings.Contains(prompt, "Review the SEO"):
			return `[{"description":"Title too short","type":"SEO","severity":"High"}]`, nil
		default:
			return `Here you go: [{"description":"teh","type":"Spelling","severity":"Low"}] hope it helps`, nil
		}
	}}
	a := newAnalyzer(t, noCache(),
		analyzer.WithBackend(backend),
		analyzer.WithCheckers(aiRegistry(t, backend, "seo", "typos")))

	res := a.Analyze(context.Background(), content())

	if res.Source != model.SourceCheckers {
		t.Fatalf("expected checkers source, got %s", res.Source)
	}
	if len(res.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(res.Issues))
	}
	if res.Issues[0].Source != "seo" || res.Issues[1].Source != "typos" {
		t.Errorf("expected priority order seo, typos; got %s, %s", res.Issues[0].Source, res.Issues[1].Source)
	}
	if res.CategoryScores[model.CategorySEO] != 85 || res.CategoryScores[model.CategoryTypos] != 95 {
		t.Errorf("unexpected category scores %v", res.CategoryScores)
	}
}

func TestAnalyze_EmptyBatchPromptSkipsBatch(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Replies: []string{criticalSEO}}
	cfg := noCache()
	cfg.BatchPrompt = ""
	a := newAnalyzer(t, cfg,
		analyzer.WithBackend(backend),
		analyzer.WithCheckers(aiRegistry(t, backend, "seo")))

	res := a.Analyze(context.Background(), content())
	if res.Source != model.SourceCheckers || backend.Calls() != 1 {
		t.Errorf("expected one checker call, got source %s and %d calls", res.Source, backend.Calls())
	}
	if res.Issues[0].Source != "seo" {
		t.Errorf("expected issue attributed to seo, got %q", res.Issues[0].Source)
	}
}

type panicChecker struct{}

func (panicChecker) Name() string  { return "boom" }
func (panicChecker) Priority() int { return 1 }
func (panicChecker) UsesAI() bool  { return false }
func (panicChecker) Check(context.Context, *checker.Input) checker.Outcome {
	panic("checker exploded")
}

func TestAnalyze_CheckerPanicIsIsolated(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "before publication") {
			return "", nil
		}
		return criticalSEO, nil
	}}
	reg := aiRegistry(t, backend, "seo")
	if err := reg.Register(panicChecker{}); err != nil {
		t.Fatal(err)
	}
	a := newAnalyzer(t, noCache(), analyzer.WithBackend(backend), analyzer.WithCheckers(reg))

	res := a.Analyze(context.Background(), content())
	if res.Source != model.SourceCheckers || len(res.Issues) != 1 {
		t.Errorf("expected the seo issue to survive, got %s with %d issues", res.Source, len(res.Issues))
	}
}

// ─── Rule tier ─────────────────────────────────────────────────────────

func TestAnalyze_UseAIFalseNeverCallsBackend(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Replies: []string{criticalSEO}}
	nodes := &testutil.DummyNodeSource{}
	cfg := noCache()
	cfg.UseAI = false
	a := newAnalyzer(t, cfg,
		analyzer.WithBackend(backend),
		analyzer.WithCheckers(aiRegistry(t, backend, "seo")),
		analyzer.WithNodeSource(nodes))

	res := a.Analyze(context.Background(), content())

	if backend.Calls() != 0 {
		t.Fatalf("expected no backend calls, got %d", backend.Calls())
	}
	if nodes.Calls != 0 {
		t.Errorf("expected no node lookups, got %d", nodes.Calls)
	}
	if res.Source != model.SourceRules || len(res.Issues) != 2 {
		t.Fatalf("expected two rule issues, got %s with %v", res.Source, res.Issues)
	}
	for _, is := range res.Issues {
		if is.Source != checker.RulesSource || is.Category != model.CategorySEO {
			t.Errorf("unexpected issue %+v", is)
		}
	}
	// Medium (10) + Low (5) in seo.
	if res.CategoryScores[model.CategorySEO] != 85 || res.OverallScore != 97 {
		t.Errorf("unexpected scores %v overall %d", res.CategoryScores, res.OverallScore)
	}
}

func TestAnalyze_UnavailableBackendUsesRulesAndLinks(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Unavailable: true}
	reg := aiRegistry(t, backend, "seo", "typos")
	if err := reg.Register(checker.NewLinkChecker(checker.DefaultLinkConfig(), nil, nil)); err != nil {
		t.Fatal(err)
	}
	a := newAnalyzer(t, noCache(), analyzer.WithBackend(backend), analyzer.WithCheckers(reg))

	c := content()
	c.Body = `<p>See <a href="#">this</a> for more.</p>`
	res := a.Analyze(context.Background(), c)

	if res.Source != model.SourceRules {
		t.Fatalf("expected rules source, got %s", res.Source)
	}
	var links, rules int
	for _, is := range res.Issues {
		switch is.Source {
		case checker.LinksName:
			links++
		case checker.RulesSource:
			rules++
		}
	}
	if links != 1 || rules != 2 {
		t.Errorf("expected 1 link and 2 rule issues, got %d and %d", links, rules)
	}
}

func TestAnalyze_NoBackendNoCheckersUsesRules(t *testing.T) {
	t.Parallel()
	a := newAnalyzer(t, noCache())

	res := a.Analyze(context.Background(), content())
	if res.Source != model.SourceRules || len(res.Issues) != 2 {
		t.Errorf("expected rule issues, got %s with %d issues", res.Source, len(res.Issues))
	}
}

// ─── Known nodes ───────────────────────────────────────────────────────

func TestAnalyze_KnownNodesFromSource(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{}
	nodes := &testutil.DummyNodeSource{Nodes: []model.NodeRef{
		{ID: "self", Title: "This article"},
		{ID: "n1", Title: "Pricing", URL: "https://example.com/pricing"},
		{ID: "n2", Title: "About"},
		{ID: "n3", Title: "Careers"},
	}}
	cfg := noCache()
	cfg.KnownNodesLimit = 2
	a := newAnalyzer(t, cfg, analyzer.WithBackend(backend), analyzer.WithNodeSource(nodes))

	c := content()
	c.NodeID = "self"
	a.Analyze(context.Background(), c)

	prompt := backend.Prompts[0]
	if !strings.Contains(prompt, "n1: Pricing (https://example.com/pricing)") || !strings.Contains(prompt, "n2: About") {
		t.Errorf("expected known nodes in prompt:\n%s", prompt)
	}
	if strings.Contains(prompt, "This article") || strings.Contains(prompt, "Careers") {
		t.Errorf("expected self excluded and sample bounded:\n%s", prompt)
	}
}

func TestAnalyze_ContentKnownNodesOverrideSource(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{}
	nodes := &testutil.DummyNodeSource{Nodes: []model.NodeRef{{ID: "db", Title: "From registry"}}}
	a := newAnalyzer(t, noCache(), analyzer.WithBackend(backend), analyzer.WithNodeSource(nodes))

	c := content()
	c.KnownNodes = []model.NodeRef{{ID: "inline", Title: "Supplied by caller"}}
	a.Analyze(context.Background(), c)

	if nodes.Calls != 0 {
		t.Errorf("expected registry not consulted, got %d calls", nodes.Calls)
	}
	if !strings.Contains(backend.Prompts[0], "inline: Supplied by caller") {
		t.Errorf("expected inline node in prompt")
	}
}

// ─── Cache ─────────────────────────────────────────────────────────────

func TestAnalyze_CacheMakesRepeatCallsIdentical(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Replies: []string{
		criticalSEO,
		`[{"description":"different","type":"Typos","severity":"High"}]`,
	}}
	store := cache.NewMemoryStore()
	a := newAnalyzer(t, analyzer.DefaultConfig(), analyzer.WithBackend(backend), analyzer.WithCache(store))
	ctx := context.Background()

	first := a.Analyze(ctx, content())
	second := a.Analyze(ctx, content())
	third := a.Analyze(ctx, content())

	if backend.Calls() != 1 {
		t.Fatalf("expected one backend call, got %d", backend.Calls())
	}
	b1, _ := json.Marshal(first)
	b2, _ := json.Marshal(second)
	if string(b1) != string(b2) {
		t.Errorf("cached result differs:\n%s\n%s", b1, b2)
	}
	if !reflect.DeepEqual(second, third) {
		t.Errorf("repeated cache hits differ")
	}

	changed := content()
	changed.Body += " More."
	if res := a.Analyze(ctx, changed); res.Issues[0].Description != "different" {
		t.Errorf("expected changed content to miss the cache, got %+v", res.Issues)
	}
}

func TestAnalyze_ZeroTTLDisablesStore(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Replies: []string{criticalSEO}}
	store := cache.NewMemoryStore()
	cfg := analyzer.DefaultConfig()
	cfg.CacheTTL = 0
	a := newAnalyzer(t, cfg, analyzer.WithBackend(backend), analyzer.WithCache(store))

	a.Analyze(context.Background(), content())
	a.Analyze(context.Background(), content())
	if backend.Calls() != 2 || store.Len() != 0 {
		t.Errorf("expected no caching, got %d calls and %d entries", backend.Calls(), store.Len())
	}
}

// ─── Fail-safe ─────────────────────────────────────────────────────────

func assertFailsafe(t *testing.T, res *model.AnalysisResult) {
	t.Helper()
	if res.Source != model.SourceFailsafe || res.OverallScore != 0 || res.ScoreClass != model.ClassCritical {
		t.Fatalf("expected fail-safe result, got %s %d %s", res.Source, res.OverallScore, res.ScoreClass)
	}
	if len(res.Issues) != 0 || len(res.CategoryScores) != len(model.Categories) {
		t.Errorf("unexpected fail-safe shape %+v", res)
	}
	for c, v := range res.CategoryScores {
		if v != 0 {
			t.Errorf("expected %s at 0, got %d", c, v)
		}
	}
}

func TestAnalyze_PanicReturnsFailsafeAndIsNotCached(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Respond: func(string) (string, error) { panic("backend exploded") }}
	store := cache.NewMemoryStore()
	a := newAnalyzer(t, analyzer.DefaultConfig(), analyzer.WithBackend(backend), analyzer.WithCache(store))

	assertFailsafe(t, a.Analyze(context.Background(), content()))
	if store.Len() != 0 {
		t.Errorf("fail-safe result must not be cached")
	}
	a.Analyze(context.Background(), content())
	if backend.Calls() != 2 {
		t.Errorf("expected backend retried on next call, got %d calls", backend.Calls())
	}
}

func TestAnalyze_StalledBackendFallsBackToRules(t *testing.T) {
	t.Parallel()
	backend := &testutil.DummyBackend{Delay: 5 * time.Second, Replies: []string{criticalSEO}}
	cfg := noCache()
	cfg.Timeout = time.Second
	a := newAnalyzer(t, cfg,
		analyzer.WithBackend(backend),
		analyzer.WithCheckers(aiRegistry(t, backend, "seo", "typos")))

	start := time.Now()
	res := a.Analyze(context.Background(), content())

	if res.Source != model.SourceRules || len(res.Issues) != 2 {
		t.Fatalf("expected rule issues, got %s with %d issues", res.Source, len(res.Issues))
	}
	if res.OverallScore != 97 {
		t.Errorf("expected rule score 97, got %d", res.OverallScore)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("deadline not honoured")
	}
}

type hangingChecker struct{ release chan struct{} }

func (hangingChecker) Name() string  { return "hang" }
func (hangingChecker) Priority() int { return 1 }
func (hangingChecker) UsesAI() bool  { return false }
func (h hangingChecker) Check(context.Context, *checker.Input) checker.Outcome {
	<-h.release
	return checker.OK(nil)
}

func TestAnalyze_DeadlineReturnsFailsafe(t *testing.T) {
	t.Parallel()
	h := hangingChecker{release: make(chan struct{})}
	t.Cleanup(func() { close(h.release) })
	reg := checker.NewRegistry()
	if err := reg.Register(h); err != nil {
		t.Fatal(err)
	}
	cfg := noCache()
	cfg.Timeout = 50 * time.Millisecond
	a := newAnalyzer(t, cfg, analyzer.WithCheckers(reg))

	start := time.Now()
	res := a.Analyze(context.Background(), content())
	assertFailsafe(t, res)
	if time.Since(start) > 2*time.Second {
		t.Errorf("deadline not honoured")
	}
}

func TestAnalyze_CancelledContextReturnsFailsafe(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := newAnalyzer(t, noCache(), analyzer.WithBackend(&testutil.DummyBackend{Delay: time.Second}))

	assertFailsafe(t, a.Analyze(ctx, content()))
}
