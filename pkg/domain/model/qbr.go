package model

import (
	"strings"

	"github.com/secmon-lab/lmx/pkg/domain/types"
)

// QBRConfig is one entry of the QBR config index
type QBRConfig struct {
	ID          types.ReportID   `json:"id"`
	JSONFile    string           `json:"json_file"`
	Title       string           `json:"title"`
	Company     string           `json:"company"`
	Type        types.ReportType `json:"type"`
	Description string           `json:"description"`
}

// QBRConfigIndex is the qbr-configs.json document
type QBRConfigIndex map[types.ReportID]*QBRConfig

// QBRCard is the catalog entry returned by the deliverables list endpoint
type QBRCard struct {
	ID          types.ReportID   `json:"id"`
	Title       string           `json:"title"`
	Company     string           `json:"company"`
	Type        types.ReportType `json:"type"`
	Description string           `json:"description"`
	Icon        string           `json:"icon"`
	Gradient    string           `json:"gradient"`
	Status      string           `json:"status"`
	LastUpdated int64            `json:"lastUpdated"`
	QBRURL      string           `json:"qbrUrl"`
	DataQuality string           `json:"dataQuality"`
	Product     string           `json:"product"`
}

// ReportDocument is a QBR report kept as free-form JSON
type ReportDocument map[string]any

// QBRFileName returns the template file name for a report ID
func QBRFileName(id types.ReportID) string {
	return string(id) + ".json"
}

// QBRReport is the typed form of a newly created report template
type QBRReport struct {
	ID                types.ReportID   `json:"id"`
	Title             string           `json:"title"`
	Company           string           `json:"company"`
	DateRange         string           `json:"dateRange"`
	MonthlyInvestment string           `json:"monthlyInvestment"`
	ManagedEndpoints  string           `json:"managedEndpoints"`
	Type              types.ReportType `json:"type"`
	Description       string           `json:"description"`
	ExecutiveSummary  string           `json:"executiveSummary"`
	Categories        []QBRCategory    `json:"categories"`
	EnhancedSections  EnhancedSections `json:"enhancedSections"`

	HardwareStats *HardwareStats `json:"hardwareStats,omitempty"`
	SoftwareStats *SoftwareStats `json:"softwareStats,omitempty"`
	Contracts     *Contracts     `json:"contracts,omitempty"`
	Roadmap       *Roadmap       `json:"roadmap,omitempty"`
}

type QBRCategory struct {
	Name  string    `json:"name"`
	Score int       `json:"score"`
	Items []QBRItem `json:"items"`
}

type QBRItem struct {
	Name   string           `json:"name"`
	Status types.ItemStatus `json:"status"`
}

type EnhancedSections struct {
	Risks           []QBRRisk           `json:"risks"`
	Insights        []QBRInsight        `json:"insights"`
	Recommendations []QBRRecommendation `json:"recommendations"`
}

type QBRRisk struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Severity    types.Severity `json:"severity"`
	Impact      string         `json:"impact"`
}

type QBRInsight struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Metric      string      `json:"metric"`
	Trend       types.Trend `json:"trend"`
}

type QBRRecommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Effort      string `json:"effort"`
	Impact      string `json:"impact"`
}

type HardwareStats struct {
	TotalAssets        int    `json:"totalAssets"`
	OverdueReplacement int    `json:"overdueReplacement"`
	UnsupportedOS      int    `json:"unsupportedOS"`
	ReplacementBudget  string `json:"replacementBudget"`
}

type SoftwareStats struct {
	TotalAssets     int `json:"totalAssets"`
	Unsupported     int `json:"unsupported"`
	UnsupportedSoon int `json:"unsupportedSoon"`
	Supported       int `json:"supported"`
}

type Contracts struct {
	Monthly []Contract `json:"monthly"`
	Annual  []Contract `json:"annual"`
}

type Contract struct {
	Vendor      string `json:"vendor"`
	Description string `json:"description"`
	Cost        string `json:"cost"`
	NextDue     string `json:"nextDue"`
}

type Roadmap struct {
	TotalInvestment string       `json:"totalInvestment"`
	Initiatives     []Initiative `json:"initiatives"`
}

type Initiative struct {
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Investment  string `json:"investment"`
	Assets      int    `json:"assets"`
}

func items(satisfactory []string, needsAttention ...string) []QBRItem {
	var out []QBRItem
	for _, n := range satisfactory {
		out = append(out, QBRItem{Name: n, Status: types.ItemStatusSatisfactory})
	}
	for _, n := range needsAttention {
		out = append(out, QBRItem{Name: n, Status: types.ItemStatusNeedsAttention})
	}
	return out
}

// NewQBRTemplate builds the starter report written by AddReport
func NewQBRTemplate(id types.ReportID, company string, reportType types.ReportType) *QBRReport {
	name := TitleCase(company)
	report := &QBRReport{
		ID:                id,
		Title:             name + " Business Review Report",
		Company:           strings.ToUpper(company),
		DateRange:         "Q2 2025 • Business Intelligence",
		MonthlyInvestment: "$2,500",
		ManagedEndpoints:  "25 Managed Endpoints",
		Type:              reportType,
		Description:       name + " business review and analysis report",
		ExecutiveSummary: name + " demonstrates strong business performance with opportunities for optimization. " +
			"This quarter, we've successfully managed 25 endpoints and achieved significant improvements in operational efficiency and security posture.",
		Categories: []QBRCategory{
			{
				Name:  "Security Posture",
				Score: 75,
				Items: items([]string{"Endpoint Protection", "Email Security", "Multi-Factor Authentication"}, "Security Awareness"),
			},
			{
				Name:  "Business Continuity",
				Score: 80,
				Items: items([]string{"Backup Success Rate", "Disaster Recovery", "Data Retention"}, "Recovery Testing"),
			},
			{
				Name:  "IT Infrastructure",
				Score: 70,
				Items: []QBRItem{
					{Name: "Hardware Lifecycle", Status: types.ItemStatusNeedsAttention},
					{Name: "Software Management", Status: types.ItemStatusSatisfactory},
					{Name: "Network Security", Status: types.ItemStatusSatisfactory},
					{Name: "Cloud Services", Status: types.ItemStatusNeedsAttention},
				},
			},
		},
		EnhancedSections: EnhancedSections{
			Risks: []QBRRisk{
				{
					Title:       "Data Security Risk",
					Description: "Potential vulnerabilities in data protection and access controls.",
					Severity:    types.SeverityMedium,
					Impact:      "Data breaches and unauthorized access to sensitive information.",
				},
				{
					Title:       "System Reliability Risk",
					Description: "Aging infrastructure may lead to system failures and downtime.",
					Severity:    types.SeverityMedium,
					Impact:      "Business disruption and potential data loss.",
				},
				{
					Title:       "Compliance Risk",
					Description: "Need to ensure compliance with industry regulations and standards.",
					Severity:    types.SeverityLow,
					Impact:      "Potential regulatory penalties and audit findings.",
				},
			},
			Insights: []QBRInsight{
				{
					Title:       "Security Improvements",
					Description: "Significant progress in security posture with room for enhancement.",
					Metric:      "75% Security Score",
					Trend:       types.TrendPositive,
				},
				{
					Title:       "Business Continuity",
					Description: "Strong backup and disaster recovery procedures in place.",
					Metric:      "80% Continuity Score",
					Trend:       types.TrendPositive,
				},
				{
					Title:       "Infrastructure Health",
					Description: "Good overall infrastructure with some areas needing attention.",
					Metric:      "70% Infrastructure Score",
					Trend:       types.TrendPositive,
				},
			},
			Recommendations: []QBRRecommendation{
				{
					Title:       "Enhance Security Awareness",
					Description: "Implement comprehensive security training for all employees.",
					Priority:    "high",
					Effort:      "Medium",
					Impact:      "Improved security culture and reduced human error",
				},
				{
					Title:       "Improve Recovery Testing",
					Description: "Increase frequency and scope of disaster recovery testing.",
					Priority:    "medium",
					Effort:      "Low",
					Impact:      "Faster recovery times and better preparedness",
				},
				{
					Title:       "Infrastructure Modernization",
					Description: "Plan for hardware and software upgrades to improve reliability.",
					Priority:    "medium",
					Effort:      "High",
					Impact:      "Reduced downtime and improved performance",
				},
			},
		},
	}

	if reportType != types.ReportTypeAggregate {
		return report
	}

	report.HardwareStats = &HardwareStats{
		TotalAssets:        156,
		OverdueReplacement: 12,
		UnsupportedOS:      8,
		ReplacementBudget:  "$18,000",
	}
	report.SoftwareStats = &SoftwareStats{
		TotalAssets:     892,
		Unsupported:     34,
		UnsupportedSoon: 23,
		Supported:       835,
	}
	report.Contracts = &Contracts{
		Monthly: []Contract{
			{Vendor: "Microsoft 365", Description: "Email and productivity suite", Cost: "$2,500.00", NextDue: "2025-08-31"},
			{Vendor: "Security Platform", Description: "Enterprise security solution", Cost: "$1,800.00", NextDue: "2025-08-31"},
		},
		Annual: []Contract{
			{Vendor: "Hardware Maintenance", Description: "Annual hardware support contracts", Cost: "$15,000.00", NextDue: "2025-12-31"},
			{Vendor: "Software Licensing", Description: "Annual software license renewals", Cost: "$8,000.00", NextDue: "2025-06-30"},
		},
	}
	report.Roadmap = &Roadmap{
		TotalInvestment: "$24,750.00",
		Initiatives: []Initiative{
			{
				Priority:    "open",
				Title:       "Workstation Modernization",
				Description: "Replace aging workstations to improve performance and security.",
				Investment:  "$18,000.00",
				Assets:      12,
			},
			{
				Priority:    "proposed",
				Title:       "Security Enhancement",
				Description: "Implement advanced security measures and training programs.",
				Investment:  "$6,750.00",
				Assets:      25,
			},
		},
	}
	return report
}

// NewQBRConfig builds the index entry registered by AddReport
func NewQBRConfig(report *QBRReport) *QBRConfig {
	return &QBRConfig{
		ID:          report.ID,
		JSONFile:    QBRFileName(report.ID),
		Title:       report.Title,
		Company:     report.Company,
		Type:        report.Type,
		Description: report.Description,
	}
}
