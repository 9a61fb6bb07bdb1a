package assessor

import (
	"fmt"
	"strings"

	"github.com/escuriola/edaitorial/internal/model"
)

// PlaceholderDescription replaces a missing or empty description.
const PlaceholderDescription = "Unspecified issue"

// defaultType is used when an issue carries no usable type hint.
const defaultType = "Content"

// NormalizeIssues validates raw decoded JSON values into IssueRecords.
// Entries that are not objects are dropped; every kept entry has its fields
// coerced into the closed vocabularies. source is stamped on each record.
func NormalizeIssues(raw []any, source string) []model.IssueRecord {
	out := make([]model.IssueRecord, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, NormalizeIssue(obj, source))
	}
	return out
}

// NormalizeIssue coerces a single raw issue object.
func NormalizeIssue(obj map[string]any, source string) model.IssueRecord {
	desc := stringField(obj, "description")
	if desc == "" {
		desc = PlaceholderDescription
	}
	typ := stringField(obj, "type")
	if typ == "" {
		typ = defaultType
	}
	return model.IssueRecord{
		Description: desc,
		Type:        typ,
		Severity:    model.ParseSeverity(stringField(obj, "severity")),
		Impact:      model.ParseImpact(stringField(obj, "impact")),
		Category:    Classify(typ),
		Source:      source,
	}
}

// NewIssue builds a record from already-typed values, classifying its type.
func NewIssue(description, issueType string, sev model.Severity, impact model.Impact, source string) model.IssueRecord {
	return NormalizeIssue(map[string]any{
		"description": description,
		"type":        issueType,
		"severity":    string(sev),
		"impact":      string(impact),
	}, source)
}

// stringField reads key as text. Scalars are formatted; nested objects,
// arrays and nulls count as missing.
func stringField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64, bool, int, int64:
		return fmt.Sprint(x)
	default:
		return ""
	}
}
