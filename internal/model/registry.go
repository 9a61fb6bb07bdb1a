package model

// Node is a content item known to the registry.
type Node struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Ref returns the prompt/link-check form of the node.
func (n Node) Ref() NodeRef {
	return NodeRef{ID: n.ID, Title: n.Title, URL: n.URL}
}
