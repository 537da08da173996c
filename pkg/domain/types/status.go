package types

// ItemStatus is the status rendered for a QBR category item
type ItemStatus string

const (
	ItemStatusSatisfactory   ItemStatus = "satisfactory"
	ItemStatusNeedsAttention ItemStatus = "needs_attention"
)

// StatusIf returns satisfactory when ok holds, needs_attention otherwise
func StatusIf(ok bool) ItemStatus {
	if ok {
		return ItemStatusSatisfactory
	}
	return ItemStatusNeedsAttention
}

// Trend is the direction shown next to a QBR insight
type Trend string

const (
	TrendPositive       Trend = "positive"
	TrendNeutral        Trend = "neutral"
	TrendNegative       Trend = "negative"
	TrendNeedsAttention Trend = "needs_attention"
)

// TrendAbove returns positive when v > high, neutral when v > mid, else negative
func TrendAbove(v, high, mid float64) Trend {
	switch {
	case v > high:
		return TrendPositive
	case v > mid:
		return TrendNeutral
	default:
		return TrendNegative
	}
}

// TrendBelow is TrendAbove for metrics where lower is better
func TrendBelow(v, low, mid float64) Trend {
	switch {
	case v < low:
		return TrendPositive
	case v < mid:
		return TrendNeutral
	default:
		return TrendNegative
	}
}

// Severity is the weight of a QBR risk entry
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// SeverityAbove returns high when v > high, medium when v > mid, else low
func SeverityAbove(v, high, mid float64) Severity {
	switch {
	case v > high:
		return SeverityHigh
	case v > mid:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// SeverityBelow returns high when v < high, medium when v < mid, else low
func SeverityBelow(v, high, mid float64) Severity {
	switch {
	case v < high:
		return SeverityHigh
	case v < mid:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
