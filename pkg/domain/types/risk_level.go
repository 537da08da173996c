package types

// RiskLevel classifies a percentage score
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low Risk"
	RiskLevelMedium RiskLevel = "Medium Risk"
	RiskLevelHigh   RiskLevel = "High Risk"
)

// RiskLevelFromPercentage maps a 0-100 score to a risk level
func RiskLevelFromPercentage(pct float64) RiskLevel {
	switch {
	case pct >= 75:
		return RiskLevelLow
	case pct >= 50:
		return RiskLevelMedium
	default:
		return RiskLevelHigh
	}
}

// NeedsRemediation reports whether questions in a category at this level
// produce recommendations
func (r RiskLevel) NeedsRemediation() bool {
	return r == RiskLevelHigh || r == RiskLevelMedium
}

// String returns the string representation of the risk level
func (r RiskLevel) String() string {
	return string(r)
}

// Priority orders recommendations and next steps
type Priority string

const (
	PriorityImmediate Priority = "Immediate"
	PriorityHigh      Priority = "High"
	PriorityMedium    Priority = "Medium"
)

// Rank returns a sort key, lower is more urgent
func (p Priority) Rank() int {
	switch p {
	case PriorityImmediate:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}
