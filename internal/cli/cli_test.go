package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/escuriola/edaitorial/internal/gate"
	"github.com/escuriola/edaitorial/internal/model"
)

func init() {
	color.NoColor = true
}

// writeConfig writes a config that keeps the backend out of the way and
// stores everything under a temporary directory.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "edaitorial.yaml")
	cfg := "storage_root: " + filepath.Join(dir, "data") + "\nuse_ai: false\nlog_level: error\n" + extra
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

// ─── analyze ───────────────────────────────────────────────────────────

func TestAnalyze_InlineJSON(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "analyze", "--title", "Short", "--body", "<p>Hello world</p>", "-o", "json")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	var res model.AnalysisResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	// Short title and short body: two rule issues.
	if res.Source != model.SourceRules || len(res.Issues) != 2 {
		t.Errorf("expected 2 rule issues, got %s %d", res.Source, len(res.Issues))
	}
	if res.CategoryScores[model.CategorySEO] != 85 || res.OverallScore != 97 {
		t.Errorf("unexpected scores: seo=%d overall=%d", res.CategoryScores[model.CategorySEO], res.OverallScore)
	}
}

func TestAnalyze_Human(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "analyze", "--title", "Short", "--body", "Hello")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "SCORE 97/100 (excellent)") {
		t.Errorf("expected score line, got:\n%s", out)
	}
}

func TestAnalyze_GlobYAML(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "posts", "2024"), 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range map[string]string{
		"posts/a.md":      "# First post\n\nSome text.",
		"posts/2024/b.md": "# Second post\n\nMore text.",
		"posts/skip.txt":  "not matched",
	} {
		if err := os.WriteFile(filepath.Join(root, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out, err := run(t, cfg, "analyze", "--root", root, "-g", "posts/**/*.md", "--track", "-o", "json")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var results []model.AnalysisResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, out)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// --track records each file under its relative path.
	hist, err := run(t, cfg, "history", "posts/a.md", "-o", "json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(hist), &entries); err != nil || len(entries) != 1 {
		t.Fatalf("expected one history entry, got %v %s", err, hist)
	}
	if entries[0]["title"] != "First post" {
		t.Errorf("expected title from heading, got %v", entries[0]["title"])
	}
}

func TestAnalyze_NothingToAnalyze(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")

	if _, err := run(t, cfg, "analyze"); err == nil {
		t.Fatal("expected error without content flags")
	}
}

func TestAnalyze_UnknownFormat(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")

	_, err := run(t, cfg, "analyze", "--body", "x", "-o", "xml")
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

// ─── gate ──────────────────────────────────────────────────────────────

func TestGate_Allowed(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "gate", "--title", "Short", "--body", "Hello", "-o", "json")
	if err != nil {
		t.Fatalf("gate: %v", err)
	}
	var d gate.Decision
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if !d.Allowed || d.Score != 97 || d.MinScore != gate.DefaultMinScore {
		t.Errorf("unexpected decision %+v", d)
	}
}

func TestGate_BlockedExitCode(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "min_score: 98\n")

	out, err := run(t, cfg, "gate", "--title", "Short", "--body", "Hello")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitBlocked {
		t.Fatalf("expected exit code %d, got %v", ExitBlocked, err)
	}
	if !strings.Contains(out, "Publishing blocked: score 97 < 98") {
		t.Errorf("expected blocked line, got:\n%s", out)
	}
}

// ─── nodes / history / compare ─────────────────────────────────────────

func TestNodes_AddAndList(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")

	if _, err := run(t, cfg, "nodes", "add", "--id", "7", "--title", "Upgrade guide", "-o", "json"); err != nil {
		t.Fatalf("nodes add: %v", err)
	}
	out, err := run(t, cfg, "nodes", "list", "-o", "json")
	if err != nil {
		t.Fatalf("nodes list: %v", err)
	}
	var nodes []model.Node
	if err := json.Unmarshal([]byte(out), &nodes); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != "7" {
		t.Errorf("unexpected nodes %+v", nodes)
	}

	if _, err := run(t, cfg, "nodes", "delete", "7"); err != nil {
		t.Fatalf("nodes delete: %v", err)
	}
	if _, err := run(t, cfg, "nodes", "delete", "7"); err == nil {
		t.Error("expected error deleting a missing node")
	}
}

func TestNodes_AddRequiresTitle(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")

	if _, err := run(t, cfg, "nodes", "add", "--id", "7"); err == nil {
		t.Fatal("expected error without --title")
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")

	if _, err := run(t, cfg, "analyze", "--node-id", "42", "--title", "Notes", "--body", "version one", "-q"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if _, err := run(t, cfg, "compare", "42"); err == nil {
		t.Fatal("expected error with a single analysis")
	}
	if _, err := run(t, cfg, "analyze", "--node-id", "42", "--title", "Notes", "--body", "version two", "-q"); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	out, err := run(t, cfg, "compare", "42", "-o", "json")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	var cmp map[string]any
	if err := json.Unmarshal([]byte(out), &cmp); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if cmp["content_changed"] != true {
		t.Errorf("expected content change, got %v", cmp["content_changed"])
	}

	if _, err := run(t, cfg, "compare", "42", "--base", "x"); err == nil {
		t.Error("expected error for --base without --head")
	}
}

func TestCachePurge(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "cache", "purge")
	if err != nil {
		t.Fatalf("cache purge: %v", err)
	}
	if !strings.Contains(out, "Purged 0 expired entries") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "edaitorial version test") {
		t.Errorf("unexpected output %q", out)
	}
}

// ─── fetch / crawl ─────────────────────────────────────────────────────

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Home</title></head><body><a href="/node/5">five</a></body></html>`))
	})
	mux.HandleFunc("/node/5", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Short</title></head><body><article><p>Hello</p></article></body></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyze_Fetch(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")
	site := newSite(t)

	out, err := run(t, cfg, "analyze", "--fetch", site.URL+"/node/5", "-o", "json")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var res model.AnalysisResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if res.OverallScore != 97 {
		t.Errorf("expected 97, got %d", res.OverallScore)
	}

	// The page lives under /node/5, so its analysis is tracked as node 5.
	if _, err := run(t, cfg, "history", "5", "-o", "json"); err != nil {
		t.Errorf("expected history for node 5: %v", err)
	}
}

func TestAnalyze_FetchConflicts(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")

	if _, err := run(t, cfg, "analyze", "--fetch", "http://127.0.0.1/x", "--body", "x"); err == nil {
		t.Fatal("expected error combining --fetch and --body")
	}
}

func TestNodes_Crawl(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t, "")
	site := newSite(t)

	out, err := run(t, cfg, "nodes", "crawl", site.URL, "--depth", "1", "-o", "json")
	if err != nil {
		t.Fatalf("nodes crawl: %v", err)
	}
	var nodes []model.Node
	if err := json.Unmarshal([]byte(out), &nodes); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %+v", nodes)
	}

	list, err := run(t, cfg, "nodes", "list", "-o", "json")
	if err != nil {
		t.Fatalf("nodes list: %v", err)
	}
	if !strings.Contains(list, `"id":"5"`) && !strings.Contains(list, `"id": "5"`) {
		t.Errorf("expected node 5 registered, got %s", list)
	}
}

// ─── content parsing ───────────────────────────────────────────────────

func TestParseContent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name, file, raw string
		wantTitle       string
		wantBody        string
	}{
		{"markdown heading", "post.md", "# Hello\n\nBody text", "Hello", "Body text"},
		{"no heading", "release-notes_v2.md", "Just text", "release notes v2", "Just text"},
		{"html title", "page.html", "<html><head><title>Page</title></head><body><p>x</p></body></html>", "Page", "<p>x</p>"},
		{"html h1", "page.htm", "<body><h1>Head</h1><p>y</p></body>", "Head", "<h1>Head</h1><p>y</p>"},
		{"html no title", "about-us.html", "<p>z</p>", "about us", "<p>z</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := parseContent(tt.file, tt.raw)
			if c.Title != tt.wantTitle || c.Body != tt.wantBody {
				t.Errorf("got title=%q body=%q", c.Title, c.Body)
			}
		})
	}
}

func TestContentFlags_Stdin(t *testing.T) {
	t.Parallel()
	f := &contentFlags{file: "-", title: "Override", nodeID: "9"}
	got, err := f.contents(strings.NewReader("# Ignored\n\nfrom stdin"))
	if err != nil {
		t.Fatalf("contents: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Override" || got[0].Body != "from stdin" || got[0].NodeID != "9" {
		t.Errorf("unexpected content %+v", got)
	}
}

func TestContentFlags_GlobConflicts(t *testing.T) {
	t.Parallel()
	f := &contentFlags{globs: []string{"*.md"}, body: "x"}
	if _, err := f.contents(strings.NewReader("")); err == nil {
		t.Fatal("expected error combining --glob and --body")
	}
}
