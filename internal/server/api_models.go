package server

import "github.com/escuriola/edaitorial/internal/model"

// AnalyzeRequest is the content submitted for analysis or a publish check.
type AnalyzeRequest struct {
	NodeID      string          `json:"node_id" example:"42"`
	Title       string          `json:"title" example:"Release notes for 2.0"`
	Body        string          `json:"body" example:"<p>Version 2.0 is out. See <a href=\"/node/7\">the upgrade guide</a>.</p>"`
	ContentType string          `json:"content_type" example:"article"`
	URL         string          `json:"url" example:"https://example.com/node/42"`
	KnownNodes  []model.NodeRef `json:"known_nodes,omitempty"`
}

// Content converts the request into the analyzer's input.
func (r AnalyzeRequest) Content() model.Content {
	return model.Content{
		NodeID:      r.NodeID,
		Title:       r.Title,
		Body:        r.Body,
		ContentType: r.ContentType,
		URL:         r.URL,
		KnownNodes:  r.KnownNodes,
	}
}

// CreateNodeRequest registers a node so it can be referenced by other content.
type CreateNodeRequest struct {
	ID          string `json:"id" example:"7"`
	Title       string `json:"title" example:"Upgrade guide"`
	URL         string `json:"url" example:"https://example.com/node/7"`
	ContentType string `json:"content_type" example:"page"`
}

// StartAnalyzeJobRequest lists the content analyzed by a background job.
type StartAnalyzeJobRequest struct {
	Contents []AnalyzeRequest `json:"contents"`
}

// PurgeCacheResponse reports how many expired cache entries were removed.
type PurgeCacheResponse struct {
	Purged int `json:"purged" example:"12"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"node not found"`
}

// CrawlNodesRequest starts a same-host crawl that registers every page found.
type CrawlNodesRequest struct {
	URL string `json:"url" example:"https://example.com"`
	// Depth is the number of links to follow; negative or absent uses the
	// configured crawl depth.
	Depth *int `json:"depth,omitempty" example:"1"`
}
