package enumerator

import (
	"context"
	"fmt"

	"github.com/escuriola/edaitorial/internal/fetcher"
	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/utils"
)

var _ Enumerator = (*Spider)(nil)

// Spider crawls one host breadth first. Depth 0 is the root page only.
type Spider struct {
	MaxDepth int

	// MaxPages caps the number of pages fetched; zero means no cap.
	MaxPages int

	fetcher *fetcher.Fetcher
	logger  logging.Logger
}

func NewSpider(maxDepth, maxPages int, f *fetcher.Fetcher, logger logging.Logger) *Spider {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Spider{
		MaxDepth: maxDepth,
		MaxPages: maxPages,
		fetcher:  f,
		logger:   logger.With(logging.Field{Key: "component", Value: "spider"}),
	}
}

type spiderHelper struct {
	spider  *Spider
	host    string
	seen    map[string]bool
	results []*fetcher.Page
}

func (sh *spiderHelper) full() bool {
	return sh.spider.MaxPages > 0 && len(sh.results) >= sh.spider.MaxPages
}

// nextLevel returns the unseen same-host links of pages.
func (sh *spiderHelper) nextLevel(pages []*fetcher.Page) []string {
	var next []string
	for _, p := range pages {
		for _, link := range p.Links {
			if utils.HostOf(link) != sh.host || sh.seen[link] {
				continue
			}
			sh.seen[link] = true
			next = append(next, link)
		}
	}
	return next
}

func (sh *spiderHelper) run(ctx context.Context, root string) {
	level := []string{root}
	for depth := 0; depth <= sh.spider.MaxDepth && len(level) > 0; depth++ {
		if ctx.Err() != nil {
			return
		}
		if sh.spider.MaxPages > 0 {
			if room := sh.spider.MaxPages - len(sh.results); len(level) > room {
				level = level[:room]
			}
		}

		pages := sh.spider.fetcher.Fetch(ctx, level)
		var ok []*fetcher.Page
		for _, p := range pages {
			if p.Err != nil {
				sh.spider.logger.Warn("error while crawling page",
					logging.Field{Key: "url", Value: p.URL},
					logging.Field{Key: "error", Value: p.Err.Error()})
				continue
			}
			ok = append(ok, p)
		}
		sh.results = append(sh.results, ok...)
		if sh.full() {
			return
		}
		level = sh.nextLevel(ok)
	}
}

// Enumerate fetches root and every same-host page reachable within
// MaxDepth links. Pages that fail to load are logged and left out.
func (s *Spider) Enumerate(ctx context.Context, target string) ([]*fetcher.Page, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("spider: fetcher is nil")
	}
	root, err := utils.NormalizeURL(target, "")
	if err != nil {
		return nil, fmt.Errorf("spider: %w", err)
	}
	if !utils.IsHTTP(root) {
		return nil, fmt.Errorf("spider: %s is not an http(s) url", target)
	}

	helper := &spiderHelper{
		spider: s,
		host:   utils.HostOf(root),
		seen:   map[string]bool{root: true},
	}
	helper.run(ctx, root)
	if err := ctx.Err(); err != nil {
		return helper.results, err
	}
	return helper.results, nil
}
