package types

// ScoringLabel is the answer given to an assessment question
type ScoringLabel string

const (
	ScoringLabelSatisfactory   ScoringLabel = "Satisfactory"
	ScoringLabelNeedsAttention ScoringLabel = "NeedsAttention"
	ScoringLabelAtRisk         ScoringLabel = "AtRisk"
	ScoringLabelNotApplicable  ScoringLabel = "NotApplicable"
)

// PossiblePointsPerQuestion is the maximum score an answered question contributes
const PossiblePointsPerQuestion = 4

// AllScoringLabels returns all valid scoring labels in display order
func AllScoringLabels() []ScoringLabel {
	return []ScoringLabel{
		ScoringLabelSatisfactory,
		ScoringLabelNeedsAttention,
		ScoringLabelAtRisk,
		ScoringLabelNotApplicable,
	}
}

// IsValid checks if the scoring label is valid
func (l ScoringLabel) IsValid() bool {
	switch l {
	case ScoringLabelSatisfactory,
		ScoringLabelNeedsAttention,
		ScoringLabelAtRisk,
		ScoringLabelNotApplicable:
		return true
	default:
		return false
	}
}

// Points returns the score of the label. NotApplicable counts as a neutral 2.
func (l ScoringLabel) Points() int {
	switch l {
	case ScoringLabelSatisfactory:
		return 3
	case ScoringLabelNeedsAttention, ScoringLabelNotApplicable:
		return 2
	case ScoringLabelAtRisk:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of the scoring label
func (l ScoringLabel) String() string {
	return string(l)
}
