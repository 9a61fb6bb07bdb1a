package assessor

import "github.com/escuriola/edaitorial/internal/model"

// deductions is the canonical severity table used by the category scorer.
var deductions = map[model.Severity]int{
	model.SeverityCritical: 25,
	model.SeverityHigh:     15,
	model.SeverityMedium:   10,
	model.SeverityLow:      5,
}

// Deduction returns the points an issue of severity sev removes from its
// category. Labels outside the vocabulary cost the same as Low.
func Deduction(sev model.Severity) int {
	if d, ok := deductions[sev]; ok {
		return d
	}
	return deductions[model.SeverityLow]
}
