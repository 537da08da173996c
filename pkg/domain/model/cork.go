package model

import (
	"time"

	"github.com/secmon-lab/lmx/pkg/domain/types"
)

// CorkClient is an entry of the Cork client list
type CorkClient struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CorkClientList is returned by the client list endpoint
type CorkClientList struct {
	Clients     []CorkClient `json:"clients"`
	Total       int          `json:"total"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

type CorkSecurityMetrics struct {
	TotalEvents      int       `json:"total_events"`
	ResolvedEvents   int       `json:"resolved_events"`
	UnresolvedEvents int       `json:"unresolved_events"`
	ResponseTimeAvg  float64   `json:"response_time_avg"`
	CriticalEvents   int       `json:"critical_events"`
	WarningEvents    int       `json:"warning_events"`
	InfoEvents       int       `json:"info_events"`
	EventTypes       []string  `json:"event_types"`
	LastUpdated      time.Time `json:"last_updated"`
}

type CorkDeviceTypes struct {
	EDR  int `json:"edr"`
	BCDR int `json:"bcdr"`
	RMM  int `json:"rmm"`
}

type CorkEndpointData struct {
	TotalDevices       int             `json:"total_devices"`
	ProtectedDevices   int             `json:"protected_devices"`
	UnprotectedDevices int             `json:"unprotected_devices"`
	ProtectionRate     string          `json:"protection_rate"`
	DeviceTypes        CorkDeviceTypes `json:"device_types"`
	ActiveIntegrations int             `json:"active_integrations"`
	IntegrationNames   []string        `json:"integration_names"`
}

type CorkEmailData struct {
	TotalDomains     int    `json:"total_domains"`
	TotalInboxes     int    `json:"total_inboxes"`
	ProtectedInboxes int    `json:"protected_inboxes"`
	ProtectionRate   string `json:"protection_rate"`
}

type CorkConnectionStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Vendor string `json:"vendor"`
}

type CorkIntegrations struct {
	Total            int                    `json:"total"`
	Active           int                    `json:"active"`
	Vendors          []string               `json:"vendors"`
	ConnectionStatus []CorkConnectionStatus `json:"connection_status"`
}

type CorkWarrantyItem struct {
	ClientName string `json:"client_name"`
	Package    string `json:"package"`
	Active     bool   `json:"active"`
	StartDate  string `json:"start_date"`
}

type CorkWarranties struct {
	Total        int                `json:"total"`
	Active       int                `json:"active"`
	CoverageRate string             `json:"coverage_rate"`
	Items        []CorkWarrantyItem `json:"items"`
}

// ChartSlice is one slice of a pie chart
type ChartSlice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type CorkCharts struct {
	WarrantyCoverage  []ChartSlice `json:"warranty_coverage"`
	IntegrationStatus []ChartSlice `json:"integration_status"`
}

type CorkOverallMetrics struct {
	DeviceProtectionScore int `json:"device_protection_score"`
	EventResolutionRate   int `json:"event_resolution_rate"`
	TotalAssets           int `json:"total_assets"`
	SecurityCoverage      int `json:"security_coverage"`
}

// CorkLiveData is the metric set computed from one Cork refresh
type CorkLiveData struct {
	SecurityMetrics    CorkSecurityMetrics `json:"securityMetrics"`
	EndpointData       CorkEndpointData    `json:"endpointData"`
	EmailData          CorkEmailData       `json:"emailData"`
	Integrations       CorkIntegrations    `json:"integrations"`
	Warranties         CorkWarranties      `json:"warranties"`
	Charts             CorkCharts          `json:"charts"`
	OverallMetrics     CorkOverallMetrics  `json:"overallMetrics"`
	LastRefresh        time.Time           `json:"lastRefresh"`
	SelectedClientUUID string              `json:"selectedClientUuid"`
	SelectedClientName string              `json:"selectedClientName"`
}

// RefreshResult is returned by the vendor refresh operations. Data holds
// the live metrics for Cork and the rendered report for IT Glue, whose live
// metrics go to LiveData.
type RefreshResult struct {
	Success  bool   `json:"success"`
	Data     any    `json:"data"`
	LiveData any    `json:"liveData,omitempty"`
	Message  string `json:"message"`

	ReportID   types.ReportID `json:"-"`
	ClientName string         `json:"-"`
}
