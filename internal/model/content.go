package model

// Content is the raw material handed to the analyzer by a content source.
type Content struct {
	// NodeID optionally identifies the content in the node registry. It is
	// excluded from the known-node sample so a node never links to itself.
	NodeID string `json:"node_id,omitempty" yaml:"node_id,omitempty"`

	Title string `json:"title" yaml:"title"`

	// Body may contain inline markup.
	Body string `json:"body" yaml:"body"`

	// ContentType is passed to the backend as metadata only.
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`

	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// KnownNodes, when non-empty, replaces the registry lookup for the sample
	// of other content used in broken-reference detection.
	KnownNodes []NodeRef `json:"known_nodes,omitempty" yaml:"known_nodes,omitempty"`
}

// NodeRef is the short form of a node used in prompts and link checks.
type NodeRef struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
}
