package fetcher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/utils"
	"github.com/escuriola/edaitorial/internal/webclient"
)

// Page is one fetched document.
type Page struct {
	URL        string
	StatusCode int
	Content    model.Content

	// Links holds the normalized absolute targets of the page's anchors.
	Links []string

	Err error
}

// PageFromResponse bridges the web client and the analyzer: it extracts the
// title, the main content and the outgoing links of an HTML response.
func PageFromResponse(pageURL string, resp *webclient.Response, selector string) *Page {
	base := pageURL
	if resp.FinalURL != "" {
		base = resp.FinalURL
	}
	page := &Page{URL: pageURL, StatusCode: resp.StatusCode}
	page.Content, page.Links = Extract(base, string(resp.Body), selector)
	page.Content.URL = pageURL
	return page
}

// Extract parses an HTML document. The title comes from <title>, then the
// first <h1>. The body is the inner HTML of the first element matching
// selector, or of <body>. Links are resolved against pageURL; with an empty
// pageURL only absolute links are kept.
func Extract(pageURL, raw, selector string) (model.Content, []string) {
	c := model.Content{URL: pageURL}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		c.Body = strings.TrimSpace(raw)
		return c, nil
	}

	c.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if c.Title == "" {
		c.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	main := doc.Find("body")
	if selector != "" {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			main = sel
		}
	}
	if body, err := main.Html(); err == nil {
		c.Body = strings.TrimSpace(body)
	}

	seen := map[string]bool{}
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if utils.IsPlaceholderHref(href) {
			return
		}
		abs, err := utils.NormalizeURL(href, pageURL)
		if err != nil || !utils.IsHTTP(abs) || seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})
	return c, links
}
