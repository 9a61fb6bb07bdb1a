package assessor

import (
	"strings"

	"github.com/escuriola/edaitorial/internal/model"
)

type keywordRule struct {
	category model.Category
	keywords []string
}

// keywordRules is evaluated top-down; the first rule with a matching keyword
// wins, so its order is the tie-break order.
var keywordRules = []keywordRule{
	{model.CategorySEO, []string{"seo"}},
	{model.CategoryAccessibility, []string{"accessibility", "wcag"}},
	{model.CategoryTypos, []string{"typo", "spelling"}},
	{model.CategoryLinks, []string{"link", "broken"}},
}

// Classify maps a free-text issue type onto one of the five categories.
// An exact (case-insensitive) category name wins; otherwise keywords are
// matched as substrings. Anything unmatched is content.
func Classify(issueType string) model.Category {
	t := strings.ToLower(strings.TrimSpace(issueType))
	if t == "" {
		return model.CategoryContent
	}
	for _, c := range model.Categories {
		if t == string(c) {
			return c
		}
	}
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.category
			}
		}
	}
	return model.CategoryContent
}
