package model

import "strings"

// Severity is the closed vocabulary driving point deductions.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// ParseSeverity matches s case-insensitively. Anything outside the
// vocabulary, including the empty string, becomes Low.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Impact is informational and never affects scoring.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// ParseImpact matches s case-insensitively, defaulting to Low.
func ParseImpact(s string) Impact {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return ImpactHigh
	case "medium":
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// Category is the fixed partition used for sub-scoring.
type Category string

const (
	CategorySEO           Category = "seo"
	CategoryAccessibility Category = "accessibility"
	CategoryTypos         Category = "typos"
	CategoryLinks         Category = "links"
	CategoryContent       Category = "content"
)

// Categories lists every category in priority order. The order is also the
// classifier's tie-break order and the order suggestions are emitted in.
var Categories = []Category{
	CategorySEO,
	CategoryAccessibility,
	CategoryTypos,
	CategoryLinks,
	CategoryContent,
}

// IssueRecord is one validated finding. Records are built by the assessor's
// normalization step and are never mutated afterwards.
type IssueRecord struct {
	Description string   `json:"description" yaml:"description"`
	Type        string   `json:"type" yaml:"type"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Impact      Impact   `json:"impact" yaml:"impact"`

	// Category is derived from Type by the classifier.
	Category Category `json:"category" yaml:"category"`

	// Source names the checker that reported the issue (empty for batch calls).
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}
