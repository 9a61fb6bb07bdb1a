package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/webclient"
)

// Module: fetcher
// Fetches published pages and turns them into analyzable content.
type Fetcher struct {
	cfg    Config
	wc     webclient.WebClient
	logger logging.Logger
}

// New creates a new Fetcher with the given webclient and logger.
func New(cfg Config, wc webclient.WebClient, logger logging.Logger) (*Fetcher, error) {
	if wc == nil {
		return nil, fmt.Errorf("fetcher: webclient is nil")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if cfg.ContentSelector == "" {
		cfg.ContentSelector = DefaultConfig().ContentSelector
	}
	return &Fetcher{
		cfg:    cfg,
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// Fetch gets every URL concurrently. The returned pages keep the order of
// pageURLs; failed fetches carry Err instead of content.
func (f *Fetcher) Fetch(ctx context.Context, pageURLs []string) []*Page {
	pages := make([]*Page, len(pageURLs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, f.cfg.MaxConcurrency)

	type result struct {
		idx  int
		page *Page
	}
	resCh := make(chan result)
	collectorDone := make(chan struct{})

	// Collect pages goroutine
	go func() {
		defer close(collectorDone)
		for r := range resCh {
			pages[r.idx] = r.page
		}
	}()

	// Fetch pages concurrently
	for i, pageURL := range pageURLs {
		if ctx.Err() != nil {
			pages[i] = &Page{URL: pageURL, Err: ctx.Err()}
			continue
		}

		wg.Add(1)

		go func(i int, pageURL string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			page := f.fetchPage(ctx, pageURL)
			resCh <- result{idx: i, page: page}
		}(i, pageURL)
	}

	wg.Wait()
	close(resCh)
	<-collectorDone
	return pages
}

func (f *Fetcher) fetchPage(ctx context.Context, pageURL string) *Page {
	response, err := f.HTTPGet(ctx, pageURL)
	if err != nil {
		f.logger.Warn("error while fetching page",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "error", Value: err})
		return &Page{URL: pageURL, Err: err}
	}
	if response.StatusCode >= http.StatusBadRequest {
		return &Page{URL: pageURL, StatusCode: response.StatusCode,
			Err: fmt.Errorf("GET %s: status %d", pageURL, response.StatusCode)}
	}
	if response.Truncated {
		f.logger.Warn("page body truncated",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "bytes", Value: len(response.Body)})
	}
	return PageFromResponse(pageURL, response, f.cfg.ContentSelector)
}

// HTTPGet makes an HTTP GET request for page.
func (f *Fetcher) HTTPGet(ctx context.Context, page string) (*webclient.Response, error) {
	resp, err := f.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodGet,
		URL:     page,
		Headers: http.Header{"Accept": []string{"text/html"}},
	})
	if err != nil {
		return nil, fmt.Errorf("error GETting %s: %w", page, err)
	}
	return resp, nil
}
