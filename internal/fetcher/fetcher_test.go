package fetcher_test

import (
	"context"
	"testing"
	"time"

	"github.com/escuriola/edaitorial/internal/fetcher"
	"github.com/escuriola/edaitorial/internal/testutil"
)

const articlePage = `<html><head><title>Release notes</title></head>
<body><nav><a href="/">Home</a></nav>
<article><h1>Release notes</h1><p>See <a href="/node/7">the guide</a> and <a href="#">this</a>.</p></article>
</body></html>`

func newFetcher(t *testing.T, wc *testutil.DummyWebClient, concurrency int) *fetcher.Fetcher {
	t.Helper()
	cfg := fetcher.DefaultConfig()
	cfg.MaxConcurrency = concurrency
	f, err := fetcher.New(cfg, wc, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("fetcher.New: %v", err)
	}
	return f
}

func TestNew_RequiresWebClient(t *testing.T) {
	t.Parallel()
	if _, err := fetcher.New(fetcher.DefaultConfig(), nil, nil); err == nil {
		t.Fatal("expected error for nil webclient")
	}
}

func TestFetch_ExtractsContent(t *testing.T) {
	t.Parallel()
	url := "https://news.example/node/42"
	wc := &testutil.DummyWebClient{Bodies: map[string]string{url: articlePage}}
	f := newFetcher(t, wc, 2)

	pages := f.Fetch(context.Background(), []string{url})
	if len(pages) != 1 || pages[0].Err != nil {
		t.Fatalf("unexpected pages %+v", pages)
	}
	p := pages[0]
	if p.Content.Title != "Release notes" || p.Content.URL != url {
		t.Errorf("unexpected content %+v", p.Content)
	}
	if want := `<h1>Release notes</h1><p>See <a href="/node/7">the guide</a> and <a href="#">this</a>.</p>`; p.Content.Body != want {
		t.Errorf("expected article body, got %q", p.Content.Body)
	}
	if len(p.Links) != 2 || p.Links[0] != "https://news.example" || p.Links[1] != "https://news.example/node/7" {
		t.Errorf("unexpected links %v", p.Links)
	}
}

func TestFetch_KeepsOrderAndReportsFailures(t *testing.T) {
	t.Parallel()
	urls := []string{"https://a.example/1", "https://a.example/2", "https://a.example/3", "https://a.example/4"}
	wc := &testutil.DummyWebClient{
		ResponseDelay: 5 * time.Millisecond,
		FailURLs:      map[string]bool{urls[1]: true},
		Status:        map[string]int{urls[2]: 404},
	}
	f := newFetcher(t, wc, 2)

	pages := f.Fetch(context.Background(), urls)
	if len(pages) != len(urls) {
		t.Fatalf("expected %d pages, got %d", len(urls), len(pages))
	}
	for i, p := range pages {
		if p.URL != urls[i] {
			t.Errorf("page %d: expected %s, got %s", i, urls[i], p.URL)
		}
	}
	if pages[0].Err != nil || pages[3].Err != nil {
		t.Errorf("expected successes, got %v %v", pages[0].Err, pages[3].Err)
	}
	if pages[1].Err == nil {
		t.Error("expected transport failure")
	}
	if pages[2].Err == nil || pages[2].StatusCode != 404 {
		t.Errorf("expected 404 failure, got %+v", pages[2])
	}
	if wc.RequestCount() != len(urls) {
		t.Errorf("expected %d requests, got %d", len(urls), wc.RequestCount())
	}
}

func TestFetch_CanceledContext(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	f := newFetcher(t, wc, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pages := f.Fetch(ctx, []string{"https://a.example/1", "https://a.example/2"})
	for _, p := range pages {
		if p.Err == nil {
			t.Errorf("expected context error for %s", p.URL)
		}
	}
	if wc.RequestCount() != 0 {
		t.Errorf("expected no requests, got %d", wc.RequestCount())
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		raw       string
		selector  string
		wantTitle string
		wantBody  string
	}{
		{"h1 fallback", `<body><h1>Head</h1><p>y</p></body>`, "", "Head", "<h1>Head</h1><p>y</p>"},
		{"main selector", `<title>T</title><body><header>x</header><main><p>m</p></main></body>`, "article, main", "T", "<p>m</p>"},
		{"selector miss", `<title>T</title><body><p>b</p></body>`, "article", "T", "<p>b</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _ := fetcher.Extract("", tt.raw, tt.selector)
			if c.Title != tt.wantTitle || c.Body != tt.wantBody {
				t.Errorf("got title=%q body=%q", c.Title, c.Body)
			}
		})
	}
}

func TestExtract_RelativeLinksNeedBase(t *testing.T) {
	t.Parallel()
	raw := `<a href="/node/1">one</a><a href="https://other.example/x">two</a>`
	if _, links := fetcher.Extract("", raw, ""); len(links) != 1 || links[0] != "https://other.example/x" {
		t.Errorf("expected only the absolute link, got %v", links)
	}
}
