package model

import "time"

// ScoreClass is the five-band label derived from the overall score.
type ScoreClass string

const (
	ClassExcellent ScoreClass = "excellent"
	ClassGood      ScoreClass = "good"
	ClassFair      ScoreClass = "fair"
	ClassPoor      ScoreClass = "poor"
	ClassCritical  ScoreClass = "critical"
)

// ResultSource records which tier of the fallback chain produced a result.
type ResultSource string

const (
	SourceBatch    ResultSource = "batch"
	SourceCheckers ResultSource = "checkers"
	SourceRules    ResultSource = "rules"
	SourceFailsafe ResultSource = "failsafe"
)

// CategoryScores maps every category to an integer in [0,100].
type CategoryScores map[Category]int

// NewCategoryScores returns scores with all five categories set to value.
func NewCategoryScores(value int) CategoryScores {
	cs := make(CategoryScores, len(Categories))
	for _, c := range Categories {
		cs[c] = value
	}
	return cs
}

// AnalysisResult is the output envelope for one content item.
//
// Example:
//
//	{
//	  "id": "8c0f0d1e-...",
//	  "fingerprint": "3f2a...",
//	  "overall_score": 95,
//	  "score_class": "excellent",
//	  "category_scores": {"seo": 75, "accessibility": 100, "typos": 100, "links": 100, "content": 100},
//	  "issues": [
//	    {"description": "Missing meta description", "type": "SEO", "severity": "Critical", "impact": "High", "category": "seo"}
//	  ],
//	  "suggestions": ["Content is ready to publish.", "Improve SEO: ..."],
//	  "source": "batch"
//	}
type AnalysisResult struct {
	// ID identifies this analysis run. Cached results keep the ID of the run
	// that populated the cache.
	ID string `json:"id" yaml:"id"`

	// Fingerprint is the content hash used as the cache key.
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`

	// OverallScore is round(mean(CategoryScores)), in [0,100].
	OverallScore int `json:"overall_score" yaml:"overall_score"`

	ScoreClass ScoreClass `json:"score_class" yaml:"score_class"`

	// CategoryScores always carries all five categories.
	CategoryScores CategoryScores `json:"category_scores" yaml:"category_scores"`

	// Issues keeps the order the backend produced them in.
	Issues []IssueRecord `json:"issues" yaml:"issues"`

	Suggestions []string `json:"suggestions" yaml:"suggestions"`

	// Source is the fallback tier that produced the issues.
	Source ResultSource `json:"source" yaml:"source"`

	// ScoringVersion identifies the deduction table and thresholds used.
	ScoringVersion string `json:"scoring_version" yaml:"scoring_version"`

	AnalyzedAt time.Time `json:"analyzed_at" yaml:"analyzed_at"`
}

// FailsafeResult is returned when the pipeline could not complete: every
// category at zero, no issues, class critical.
func FailsafeResult(fingerprint, scoringVersion string) *AnalysisResult {
	return &AnalysisResult{
		Fingerprint:    fingerprint,
		OverallScore:   0,
		ScoreClass:     ClassCritical,
		CategoryScores: NewCategoryScores(0),
		Issues:         []IssueRecord{},
		Suggestions:    []string{"Analysis failed; treat this content as not ready to publish."},
		Source:         SourceFailsafe,
		ScoringVersion: scoringVersion,
		AnalyzedAt:     time.Now().UTC(),
	}
}
