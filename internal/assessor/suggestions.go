package assessor

import "github.com/escuriola/edaitorial/internal/model"

const (
	suggestionReady  = "Content is ready to publish."
	suggestionMinor  = "Content is in good shape; address the remaining issues before publishing."
	suggestionReview = "Content needs significant revision before it can be published."
)

var categorySuggestions = map[model.Category]string{
	model.CategorySEO:           "Improve SEO: review the title length, meta description and keyword usage.",
	model.CategoryAccessibility: "Improve accessibility: add alt text, check heading order and color contrast.",
	model.CategoryTypos:         "Fix spelling and grammar mistakes.",
	model.CategoryLinks:         "Repair or remove broken and empty links.",
	model.CategoryContent:       "Review content quality: structure, length and clarity.",
}

// Suggestions returns a band message chosen by the overall score followed by
// one message per distinct category present in issues, in category order.
func Suggestions(overall int, issues []model.IssueRecord) []string {
	out := make([]string, 0, 1+len(model.Categories))
	switch {
	case overall >= 90:
		out = append(out, suggestionReady)
	case overall >= 75:
		out = append(out, suggestionMinor)
	default:
		out = append(out, suggestionReview)
	}

	present := make(map[model.Category]bool, len(issues))
	for _, is := range issues {
		present[is.Category] = true
	}
	for _, c := range model.Categories {
		if present[c] {
			out = append(out, categorySuggestions[c])
		}
	}
	return out
}
