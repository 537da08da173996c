package types

import "fmt"

// ReportType is the kind of QBR deliverable
type ReportType string

const (
	ReportTypeIndividual ReportType = "individual"
	ReportTypeAggregate  ReportType = "aggregate"
)

// IsValid checks if the report type is valid
func (t ReportType) IsValid() bool {
	switch t {
	case ReportTypeIndividual, ReportTypeAggregate:
		return true
	default:
		return false
	}
}

// Normalize treats an empty type as individual
func (t ReportType) Normalize() ReportType {
	if t == "" {
		return ReportTypeIndividual
	}
	return t
}

// DataQuality is the label shown on report cards
func (t ReportType) DataQuality() string {
	if t == ReportTypeAggregate {
		return "Aggregate"
	}
	return "Comprehensive"
}

// String returns the string representation of the report type
func (t ReportType) String() string {
	return string(t)
}

// ParseReportType parses a string into a ReportType. Empty input means individual.
func ParseReportType(s string) (ReportType, error) {
	t := ReportType(s).Normalize()
	if !t.IsValid() {
		return "", fmt.Errorf("invalid report type: %s (must be individual or aggregate)", s)
	}
	return t, nil
}
