package checker

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/escuriola/edaitorial/internal/assessor"
	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/utils"
	"github.com/escuriola/edaitorial/internal/webclient"
)

// LinksName is the registry name of the link checker.
const LinksName = "links"

var nodePathRE = regexp.MustCompile(`^/node/([^/]+)$`)

// LinkConfig tunes the link checker.
type LinkConfig struct {
	Priority int `mapstructure:"priority"`

	// SiteURL identifies internal links when content has no URL of its own.
	SiteURL string `mapstructure:"site_url"`

	// ProbeExternal enables HEAD requests against absolute external links.
	ProbeExternal bool          `mapstructure:"probe_external"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
	MaxProbes     int           `mapstructure:"max_probes"`
}

// DefaultLinkConfig returns the link checker defaults.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		Priority:     40,
		ProbeTimeout: 5 * time.Second,
		MaxProbes:    20,
	}
}

// LinkChecker finds empty links and internal references to unknown nodes
// without asking the AI backend.
type LinkChecker struct {
	cfg    LinkConfig
	wc     webclient.WebClient
	logger logging.Logger
}

// NewLinkChecker builds a link checker. wc is only used when
// cfg.ProbeExternal is set and may be nil otherwise.
func NewLinkChecker(cfg LinkConfig, wc webclient.WebClient, logger logging.Logger) *LinkChecker {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if cfg.MaxProbes <= 0 {
		cfg.MaxProbes = DefaultLinkConfig().MaxProbes
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultLinkConfig().ProbeTimeout
	}
	return &LinkChecker{
		cfg:    cfg,
		wc:     wc,
		logger: logger.With(logging.Field{Key: "checker", Value: LinksName}),
	}
}

func (c *LinkChecker) Name() string  { return LinksName }
func (c *LinkChecker) Priority() int { return c.cfg.Priority }
func (c *LinkChecker) UsesAI() bool  { return false }

func (c *LinkChecker) Check(ctx context.Context, in *Input) Outcome {
	links := ExtractLinks(in.Content.Body)
	if len(links) == 0 {
		return OK(nil)
	}

	siteHost := utils.HostOf(in.Content.URL)
	if siteHost == "" {
		siteHost = utils.HostOf(c.cfg.SiteURL)
	}

	knownIDs := make(map[string]bool, len(in.KnownNodes))
	knownPaths := make(map[string]bool, len(in.KnownNodes))
	for _, n := range in.KnownNodes {
		knownIDs[n.ID] = true
		if p := utils.PathOf(n.URL); p != "" {
			knownPaths[p] = true
		}
	}

	issues := []model.IssueRecord{}
	seen := make(map[string]bool, len(links))
	probes := 0
	for _, l := range links {
		if utils.IsPlaceholderHref(l.Href) {
			issues = append(issues, assessor.NewIssue(
				fmt.Sprintf("Link %q has an empty or placeholder target.", label(l)),
				"Link", model.SeverityMedium, model.ImpactMedium, LinksName))
			continue
		}
		if seen[l.Href] {
			continue
		}
		seen[l.Href] = true

		host := utils.HostOf(l.Href)
		internal := host == "" || (siteHost != "" && host == siteHost)
		if internal {
			if is, broken := c.checkInternal(l, in.Content.NodeID, knownIDs, knownPaths); broken {
				issues = append(issues, is)
			}
			continue
		}

		if c.cfg.ProbeExternal && c.wc != nil && utils.IsHTTP(l.Href) && probes < c.cfg.MaxProbes {
			probes++
			if is, broken := c.probe(ctx, l); broken {
				issues = append(issues, is)
			}
		}
	}
	return OK(issues)
}

// NodeIDFromURL extracts the node id from a /node/<id> reference.
func NodeIDFromURL(raw string) (string, bool) {
	m := nodePathRE.FindStringSubmatch(utils.PathOf(raw))
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (c *LinkChecker) checkInternal(l Link, self string, knownIDs, knownPaths map[string]bool) (model.IssueRecord, bool) {
	if len(knownIDs) == 0 {
		return model.IssueRecord{}, false
	}
	p := utils.PathOf(l.Href)
	id, ok := NodeIDFromURL(l.Href)
	if !ok {
		return model.IssueRecord{}, false
	}
	if id == self || knownIDs[id] || knownPaths[p] {
		return model.IssueRecord{}, false
	}
	return assessor.NewIssue(
		fmt.Sprintf("Internal link %q points to node %s, which does not exist.", l.Href, id),
		"Broken link", model.SeverityHigh, model.ImpactHigh, LinksName), true
}

func (c *LinkChecker) probe(ctx context.Context, l Link) (model.IssueRecord, bool) {
	resp, err := c.wc.Do(ctx, &webclient.Request{Method: http.MethodHead, URL: l.Href, Timeout: c.cfg.ProbeTimeout})
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		resp, err = c.wc.Do(ctx, &webclient.Request{Method: http.MethodGet, URL: l.Href, Timeout: c.cfg.ProbeTimeout})
	}
	if err != nil {
		c.logger.Debug("link probe failed",
			logging.Field{Key: "url", Value: l.Href},
			logging.Field{Key: "error", Value: err})
		return assessor.NewIssue(
			fmt.Sprintf("External link %q could not be reached.", l.Href),
			"Link", model.SeverityMedium, model.ImpactMedium, LinksName), true
	}
	if resp.StatusCode >= 400 {
		return assessor.NewIssue(
			fmt.Sprintf("External link %q returned HTTP %d.", l.Href, resp.StatusCode),
			"Broken link", model.SeverityHigh, model.ImpactHigh, LinksName), true
	}
	return model.IssueRecord{}, false
}

func label(l Link) string {
	if l.Text != "" {
		return l.Text
	}
	if l.Href != "" {
		return l.Href
	}
	return "(no text)"
}
