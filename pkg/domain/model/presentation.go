package model

import (
	"strings"

	"github.com/secmon-lab/lmx/pkg/domain/types"
)

// IconRule assigns Icon when the lowercased subject contains any keyword
type IconRule struct {
	Keywords []string `toml:"keywords" json:"keywords"`
	Icon     string   `toml:"icon" json:"icon"`
}

// Presentation holds the catalog display rules for cards
type Presentation struct {
	DefaultIcon         string                        `toml:"default_icon"`
	AssessmentTitles    map[types.AssessmentID]string `toml:"assessment_titles"`
	AssessmentIcons     []IconRule                    `toml:"assessment_icons"`
	AssessmentGradients []string                      `toml:"assessment_gradients"`
	QBRIcons            []IconRule                    `toml:"qbr_icons"`
	QBRGradients        []string                      `toml:"qbr_gradients"`
}

var assessmentGradients = []string{
	"from-blue-500 to-cyan-500",
	"from-purple-500 to-pink-500",
	"from-green-500 to-emerald-500",
	"from-orange-500 to-red-500",
	"from-indigo-500 to-purple-500",
	"from-teal-500 to-blue-500",
	"from-yellow-500 to-orange-500",
	"from-pink-500 to-rose-500",
	"from-cyan-500 to-blue-500",
}

// DefaultPresentation returns the built-in display rules
func DefaultPresentation() *Presentation {
	qbrGradients := append(append([]string{}, assessmentGradients...), "from-gray-600 to-slate-800")

	return &Presentation{
		DefaultIcon: "📋",
		AssessmentTitles: map[types.AssessmentID]string{
			"ai-readiness":              "AI Readiness Assessment",
			"cs-readiness":              "Customer Success Readiness Assessment",
			"cyber-insurance-readiness": "Cyber Insurance Readiness Assessment",
			"cyber-resilience":          "Cyber Resilience Assessment",
			"digital-work-analytics":    "Digital Work Analytics Assessment",
			"technology-alignment":      "Technology Alignment Assessment",
			"new-client-comprehensive":  "New Client Assessment (Comprehensive)",
			"new-client-quick":          "New Client Assessment (Quick)",
			"base-policies":             "Base Policies & Procedures Assessment",
		},
		AssessmentIcons: []IconRule{
			{Keywords: []string{"ai", "artificial intelligence", "machine learning"}, Icon: "🧠"},
			{Keywords: []string{"security", "cyber", "threat", "vulnerability"}, Icon: "🔒"},
			{Keywords: []string{"insurance", "compliance", "risk"}, Icon: "🛡️"},
			{Keywords: []string{"data", "analytics", "metrics", "performance"}, Icon: "📊"},
			{Keywords: []string{"technology", "tech", "digital"}, Icon: "💻"},
			{Keywords: []string{"business", "process", "workflow"}, Icon: "📋"},
			{Keywords: []string{"policies", "procedures"}, Icon: "📋"},
			{Keywords: []string{"customer", "success"}, Icon: "📊"},
			{Keywords: []string{"new client", "onboarding"}, Icon: "📋"},
			{Keywords: []string{"alignment", "architecture"}, Icon: "🔍"},
		},
		AssessmentGradients: append([]string{}, assessmentGradients...),
		QBRIcons: []IconRule{
			{Keywords: []string{"backup", "radar"}, Icon: "🛡️"},
			{Keywords: []string{"control", "map"}, Icon: "🗺️"},
			{Keywords: []string{"cork"}, Icon: "🍷"},
			{Keywords: []string{"huntress"}, Icon: "🔍"},
			{Keywords: []string{"produce", "8"}, Icon: "📊"},
			{Keywords: []string{"rewst"}, Icon: "⚡"},
			{Keywords: []string{"aggregate", "comprehensive"}, Icon: "📋"},
		},
		QBRGradients: qbrGradients,
	}
}

func matchIcon(rules []IconRule, subject, fallback string) string {
	text := strings.ToLower(subject)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Icon
			}
		}
	}
	return fallback
}

func pickGradient(gradients []string, id string) string {
	if len(gradients) == 0 {
		return ""
	}
	return gradients[len(id)%len(gradients)]
}

// AssessmentTitle returns the override title for id, or the first three
// words of description followed by " Assessment"
func (p *Presentation) AssessmentTitle(id types.AssessmentID, description string) string {
	if title, ok := p.AssessmentTitles[id]; ok {
		return title
	}
	words := strings.Split(description, " ")
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ") + " Assessment"
}

// AssessmentIcon picks an icon from the description and keywords
func (p *Presentation) AssessmentIcon(description string, keywords []string) string {
	return matchIcon(p.AssessmentIcons, description+" "+strings.Join(keywords, " "), p.DefaultIcon)
}

func (p *Presentation) AssessmentGradient(id types.AssessmentID) string {
	return pickGradient(p.AssessmentGradients, string(id))
}

// QBRIcon picks an icon from the company name and report type
func (p *Presentation) QBRIcon(company string, reportType types.ReportType) string {
	return matchIcon(p.QBRIcons, company+" "+string(reportType), p.DefaultIcon)
}

func (p *Presentation) QBRGradient(id types.ReportID) string {
	return pickGradient(p.QBRGradients, string(id))
}
