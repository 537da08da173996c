package model

import "time"

// ITGlueClient is an organization as exposed by the client list endpoint
type ITGlueClient struct {
	UUID           string `json:"uuid"`
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id"`
}

// ITGlueClientList is returned by the IT Glue client list endpoint
type ITGlueClientList struct {
	Success bool           `json:"success"`
	Clients []ITGlueClient `json:"clients"`
	Message string         `json:"message"`
}

type ITGlueAssetTypes struct {
	Hardware int `json:"hardware"`
	Software int `json:"software"`
	Network  int `json:"network"`
	Cloud    int `json:"cloud"`
}

type ITGlueAssetData struct {
	TotalAssets        int              `json:"total_assets"`
	DocumentedAssets   int              `json:"documented_assets"`
	UndocumentedAssets int              `json:"undocumented_assets"`
	ManagedAssets      int              `json:"managed_assets"`
	HardwareAssets     int              `json:"hardware_assets"`
	SoftwareAssets     int              `json:"software_assets"`
	NetworkAssets      int              `json:"network_assets"`
	CloudAssets        int              `json:"cloud_assets"`
	AssetTypes         ITGlueAssetTypes `json:"asset_types"`
}

type ITGlueProcessData struct {
	TotalProcesses      int      `json:"total_processes"`
	DocumentedProcesses int      `json:"documented_processes"`
	OutdatedProcesses   int      `json:"outdated_processes"`
	ComplianceScore     int      `json:"compliance_score"`
	ProcessTypes        []string `json:"process_types"`
	RecentUpdates       int      `json:"recent_updates"`
}

type ITGlueUserData struct {
	TotalUsers           int      `json:"total_users"`
	ActiveUsers          int      `json:"active_users"`
	ActiveUserPercentage int      `json:"active_user_percentage"`
	TopContributors      []string `json:"top_contributors"`
}

type ITGlueActivityData struct {
	RecentUpdates       int `json:"recent_updates"`
	AvgDocumentationAge int `json:"avg_documentation_age"`
	UpdateFrequency     int `json:"update_frequency"`
}

type ITGlueComplianceData struct {
	ComplianceScore   int      `json:"compliance_score"`
	ComplianceItems   int      `json:"compliance_items"`
	CompliantItems    int      `json:"compliant_items"`
	NonCompliantItems int      `json:"non_compliant_items"`
	Categories        []string `json:"categories"`
	LastAudit         string   `json:"last_audit"`
}

// Expiration buckets of configurations
const (
	ExpirationActive       = "Active"
	ExpirationExpiringSoon = "Expiring Soon (30 days)"
	ExpirationExpired      = "Expired"
	ExpirationNone         = "No Expiration Date"
)

// NewExpirationBuckets returns all buckets initialised to zero
func NewExpirationBuckets() map[string]int {
	return map[string]int{
		ExpirationActive:       0,
		ExpirationExpiringSoon: 0,
		ExpirationExpired:      0,
		ExpirationNone:         0,
	}
}

type ConfigurationSummary struct {
	Total        int            `json:"total"`
	ByType       map[string]int `json:"byType"`
	ByExpiration map[string]int `json:"byExpiration"`
}

type DomainEntry struct {
	Name        string `json:"name"`
	ExpiryDate  string `json:"expiryDate"`
	Registrar   string `json:"registrar"`
	DisplayText string `json:"displayText"`
}

type DomainSummary struct {
	Total int           `json:"total"`
	List  []DomainEntry `json:"list"`
}

type PasswordSummary struct {
	Total int `json:"total"`
	Fresh int `json:"fresh"`
	Stale int `json:"stale"`
}

type SSLCertificateEntry struct {
	Name        string `json:"name"`
	Issuer      string `json:"issuer"`
	ExpiryDate  string `json:"expiryDate"`
	Algorithm   string `json:"algorithm"`
	DisplayText string `json:"displayText"`
}

type SSLCertificateSummary struct {
	Total        int                   `json:"total"`
	ExpiringSoon int                   `json:"expiringSoon"`
	List         []SSLCertificateEntry `json:"list"`
}

// FlexibleAssetGroup counts flexible assets of one type with a few example names
type FlexibleAssetGroup struct {
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

type FlexibleAssetSummary struct {
	ByType   map[string]int                 `json:"byType"`
	Detailed map[string]*FlexibleAssetGroup `json:"detailed"`
}

type DocumentationSummary struct {
	Configurations  ConfigurationSummary  `json:"configurations"`
	Domains         DomainSummary         `json:"domains"`
	Passwords       PasswordSummary       `json:"passwords"`
	SSLCertificates SSLCertificateSummary `json:"sslCertificates"`
	FlexibleAssets  FlexibleAssetSummary  `json:"flexibleAssets"`
}

type ITGlueOverallMetrics struct {
	DocumentationCompleteness int `json:"documentation_completeness"`
	AssetManagementScore      int `json:"asset_management_score"`
	ProcessComplianceScore    int `json:"process_compliance_score"`
	UserEngagementScore       int `json:"user_engagement_score"`
}

// ITGlueLiveData is the metric set computed from one IT Glue refresh
type ITGlueLiveData struct {
	AssetData            ITGlueAssetData      `json:"assetData"`
	ProcessData          ITGlueProcessData    `json:"processData"`
	UserData             ITGlueUserData       `json:"userData"`
	ActivityData         ITGlueActivityData   `json:"activityData"`
	ComplianceData       ITGlueComplianceData `json:"complianceData"`
	DocumentationSummary DocumentationSummary `json:"documentationSummary"`
	OverallMetrics       ITGlueOverallMetrics `json:"overallMetrics"`
	LastRefresh          time.Time            `json:"lastRefresh"`
	SelectedClientUUID   string               `json:"selectedClientUuid"`
	SelectedClientName   string               `json:"selectedClientName"`
}

// SampleITGlueLiveData returns fixed metrics used to exercise the IT Glue
// template without calling the vendor
func SampleITGlueLiveData(now time.Time) *ITGlueLiveData {
	return &ITGlueLiveData{
		AssetData: ITGlueAssetData{
			TotalAssets:        150,
			DocumentedAssets:   120,
			UndocumentedAssets: 30,
			ManagedAssets:      135,
			HardwareAssets:     45,
			SoftwareAssets:     60,
			NetworkAssets:      25,
			CloudAssets:        20,
			AssetTypes:         ITGlueAssetTypes{Hardware: 45, Software: 60, Network: 25, Cloud: 20},
		},
		ProcessData: ITGlueProcessData{
			TotalProcesses:      25,
			DocumentedProcesses: 20,
			OutdatedProcesses:   5,
			ComplianceScore:     85,
			ProcessTypes: []string{
				"Incident Response",
				"Change Management",
				"Backup Procedures",
				"Security Protocols",
				"User Onboarding",
			},
			RecentUpdates: 12,
		},
		UserData: ITGlueUserData{
			TotalUsers:           15,
			ActiveUsers:          10,
			ActiveUserPercentage: 67,
			TopContributors:      []string{"John Smith", "Sarah Johnson", "Mike Davis"},
		},
		ActivityData: ITGlueActivityData{
			RecentUpdates:       45,
			AvgDocumentationAge: 45,
			UpdateFrequency:     1,
		},
		ComplianceData: ITGlueComplianceData{
			ComplianceScore:   84,
			ComplianceItems:   50,
			CompliantItems:    42,
			NonCompliantItems: 8,
			Categories:        []string{"Security Policies", "Data Protection", "Access Controls", "Audit Procedures"},
			LastAudit:         "2025-07-15",
		},
		DocumentationSummary: DocumentationSummary{
			Configurations:  ConfigurationSummary{ByType: map[string]int{}, ByExpiration: NewExpirationBuckets()},
			Domains:         DomainSummary{List: []DomainEntry{}},
			SSLCertificates: SSLCertificateSummary{List: []SSLCertificateEntry{}},
			FlexibleAssets: FlexibleAssetSummary{
				ByType:   map[string]int{},
				Detailed: map[string]*FlexibleAssetGroup{},
			},
		},
		OverallMetrics: ITGlueOverallMetrics{
			DocumentationCompleteness: 80,
			AssetManagementScore:      90,
			ProcessComplianceScore:    85,
			UserEngagementScore:       67,
		},
		LastRefresh:        now,
		SelectedClientUUID: "test-client-123",
		SelectedClientName: "Test Organization",
	}
}
