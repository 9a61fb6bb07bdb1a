package assessor

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/escuriola/edaitorial/internal/model"
)

const maxScore = 100

// ScoreCategories starts every category at 100 and subtracts each issue's
// deduction from the category it was classified into. Results are clamped to
// [0,100].
func ScoreCategories(issues []model.IssueRecord) model.CategoryScores {
	scores := model.NewCategoryScores(maxScore)
	for _, is := range issues {
		cat := is.Category
		if _, known := scores[cat]; !known {
			cat = Classify(is.Type)
		}
		scores[cat] -= Deduction(is.Severity)
	}
	for c, v := range scores {
		scores[c] = clamp(v)
	}
	return scores
}

// OverallScore is the rounded arithmetic mean of the category scores. An
// empty map has nothing to penalize and scores 100.
func OverallScore(scores model.CategoryScores) int {
	if len(scores) == 0 {
		return maxScore
	}
	values := make([]float64, 0, len(scores))
	for _, v := range scores {
		values = append(values, float64(v))
	}
	return clamp(int(math.Round(stat.Mean(values, nil))))
}

// Classify thresholds, evaluated top-down.
var classThresholds = []struct {
	min   int
	class model.ScoreClass
}{
	{90, model.ClassExcellent},
	{75, model.ClassGood},
	{50, model.ClassFair},
	{25, model.ClassPoor},
}

// ClassFor returns the score class band for an overall score.
func ClassFor(overall int) model.ScoreClass {
	for _, t := range classThresholds {
		if overall >= t.min {
			return t.class
		}
	}
	return model.ClassCritical
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > maxScore {
		return maxScore
	}
	return v
}
