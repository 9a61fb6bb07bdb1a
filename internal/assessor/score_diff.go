package assessor

import "github.com/escuriola/edaitorial/internal/model"

// ScoreDiff describes how a result moved between two analyses of the same node.
type ScoreDiff struct {
	ScoreBase  int `json:"score_base"`
	ScoreHead  int `json:"score_head"`
	ScoreDelta int `json:"score_delta"`

	ClassBase model.ScoreClass `json:"class_base,omitempty"`
	ClassHead model.ScoreClass `json:"class_head,omitempty"`

	// CategoryDeltas holds head-base for every category that changed.
	CategoryDeltas map[model.Category]int `json:"category_deltas"`

	// IssueDelta is the change in issue count.
	IssueDelta int `json:"issue_delta"`

	// TypeDeltas holds the change in issue count per issue type.
	TypeDeltas map[string]int `json:"type_deltas"`
}

// DiffScores compares two results. A nil side is treated as an empty result
// with zero scores.
func DiffScores(base, head *model.AnalysisResult) *ScoreDiff {
	if base == nil {
		base = &model.AnalysisResult{CategoryScores: model.CategoryScores{}}
	}
	if head == nil {
		head = &model.AnalysisResult{CategoryScores: model.CategoryScores{}}
	}

	diff := &ScoreDiff{
		ScoreBase:      base.OverallScore,
		ScoreHead:      head.OverallScore,
		ScoreDelta:     head.OverallScore - base.OverallScore,
		ClassBase:      base.ScoreClass,
		ClassHead:      head.ScoreClass,
		CategoryDeltas: make(map[model.Category]int),
		IssueDelta:     len(head.Issues) - len(base.Issues),
		TypeDeltas:     make(map[string]int),
	}

	for _, c := range model.Categories {
		if d := head.CategoryScores[c] - base.CategoryScores[c]; d != 0 {
			diff.CategoryDeltas[c] = d
		}
	}

	counts := make(map[string]int)
	for _, is := range head.Issues {
		counts[is.Type]++
	}
	for _, is := range base.Issues {
		counts[is.Type]--
	}
	for k, v := range counts {
		if v != 0 {
			diff.TypeDeltas[k] = v
		}
	}
	return diff
}
