package checker

import (
	"fmt"
	"unicode/utf8"

	"github.com/escuriola/edaitorial/internal/assessor"
	"github.com/escuriola/edaitorial/internal/model"
)

// RulesSource is stamped on issues produced by the rule-based fallback.
const RulesSource = "rules"

const (
	minTitleChars = 30
	maxTitleChars = 60
	minWords      = 300
)

// RuleIssues applies the fixed no-network heuristics: a title outside
// [30,60] characters and a body under 300 words each produce one SEO issue.
func RuleIssues(in *Input) []model.IssueRecord {
	issues := []model.IssueRecord{}
	n := utf8.RuneCountInString(in.Content.Title)
	if n < minTitleChars || n > maxTitleChars {
		issues = append(issues, assessor.NewIssue(
			fmt.Sprintf("Title is %d characters long; aim for %d to %d characters.", n, minTitleChars, maxTitleChars),
			"SEO", model.SeverityMedium, model.ImpactMedium, RulesSource))
	}
	if in.WordCount < minWords {
		issues = append(issues, assessor.NewIssue(
			fmt.Sprintf("Content has %d words; aim for at least %d.", in.WordCount, minWords),
			"SEO", model.SeverityLow, model.ImpactLow, RulesSource))
	}
	return issues
}
