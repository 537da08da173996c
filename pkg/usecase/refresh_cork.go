package usecase

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/secmon-lab/lmx/pkg/service/cork"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
	"github.com/secmon-lab/lmx/pkg/utils/placeholder"
)

const (
	corkEventWindow         = 30 * 24 * time.Hour
	corkResponseTimeAvg     = 2.1
	corkEmailProtection     = "100%"
	chartColorActiveGreen   = "#10B981"
	chartColorInactiveRed   = "#EF4444"
	chartColorActiveBlue    = "#3B82F6"
	chartColorInactiveAmber = "#F59E0B"
)

// Integration vendor keywords used to classify tool coverage
var (
	edrKeywords  = []string{"edr", "sophos", "crowdstrike", "sentinelone", "defender", "malwarebytes"}
	bcdrKeywords = []string{"bcdr", "datto", "acronis", "backup", "veeam", "carbonite"}
	rmmKeywords  = []string{"rmm", "ninja", "connectwise", "kaseya", "n-able", "pulseway"}
)

// corkSnapshot is the raw vendor data of one refresh
type corkSnapshot struct {
	client       cork.Client
	events       []cork.Event
	devices      []cork.Device
	domains      []cork.Domain
	inboxes      []cork.Inbox
	warranties   []cork.Warranty
	integrations []cork.Integration
}

// RefreshCork fetches live Cork data for a client, renders the Cork report
// template with it and stores the rendered copy
func (uc *RefreshUseCase) RefreshCork(ctx context.Context, clientUUID string) (*model.RefreshResult, error) {
	return uc.run(ctx, types.VendorCork, uc.cork != nil, clientUUID, uc.refreshCork)
}

func (uc *RefreshUseCase) refreshCork(ctx context.Context, clientUUID string) (*model.RefreshResult, error) {
	tmpl, err := uc.loadTemplate(ctx, types.VendorCork)
	if err != nil {
		return nil, err
	}

	snap, err := uc.fetchCork(ctx, clientUUID)
	if err != nil {
		return nil, err
	}

	live := buildCorkLiveData(snap, clientUUID, uc.now())
	derived := deriveCork(live)

	pctx, err := corkContext(live, derived)
	if err != nil {
		return nil, err
	}

	id := types.VendorCork.TemplateReportID()
	doc := render(tmpl, pctx, corkSections(live, snap.domains))
	if err := uc.persist(ctx, id, doc); err != nil {
		return nil, err
	}

	return &model.RefreshResult{
		Success:    true,
		Data:       live,
		Message:    "Cork data refreshed successfully",
		ReportID:   id,
		ClientName: live.SelectedClientName,
	}, nil
}

func (uc *RefreshUseCase) fetchCork(ctx context.Context, clientUUID string) (*corkSnapshot, error) {
	logger := logging.From(ctx)
	until := uc.now()
	since := until.Add(-corkEventWindow)

	var (
		snap    corkSnapshot
		clients *cork.ClientList
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		events, err := uc.cork.ListEvents(ctx, clientUUID, since, until)
		if err != nil {
			return goerr.Wrap(err, "failed to fetch security metrics")
		}
		snap.events = events
		return nil
	})
	eg.Go(func() error {
		devices, err := uc.cork.ListDevices(ctx, clientUUID)
		if err != nil {
			return goerr.Wrap(err, "failed to fetch devices")
		}
		snap.devices = devices
		return nil
	})
	// Email endpoints answering with an error status count as empty;
	// transport and decode failures still fail the refresh
	eg.Go(func() error {
		domains, err := uc.cork.ListDomains(ctx, clientUUID)
		switch {
		case errors.Is(err, cork.ErrUnexpectedStatus):
			logger.Warn("Cork domains unavailable, counting none", "error", err)
			snap.domains = []cork.Domain{}
		case err != nil:
			return goerr.Wrap(err, "failed to fetch domains")
		default:
			snap.domains = domains
		}
		return nil
	})
	eg.Go(func() error {
		inboxes, err := uc.cork.ListInboxes(ctx, clientUUID)
		switch {
		case errors.Is(err, cork.ErrUnexpectedStatus):
			logger.Warn("Cork inboxes unavailable, counting none", "error", err)
			snap.inboxes = []cork.Inbox{}
		case err != nil:
			return goerr.Wrap(err, "failed to fetch inboxes")
		default:
			snap.inboxes = inboxes
		}
		return nil
	})
	eg.Go(func() error {
		warranties, err := uc.cork.ListWarranties(ctx)
		if err != nil {
			logger.Warn("Cork warranties unavailable, continuing without them", "error", err)
			snap.warranties = []cork.Warranty{}
			return nil
		}
		snap.warranties = warranties
		return nil
	})
	eg.Go(func() error {
		integrations, err := uc.cork.ListConnectedIntegrations(ctx)
		if err != nil {
			logger.Warn("Cork integrations unavailable, continuing without them", "error", err)
			snap.integrations = []cork.Integration{}
			return nil
		}
		snap.integrations = integrations
		return nil
	})
	eg.Go(func() error {
		list, err := uc.cork.ListClients(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to fetch clients")
		}
		clients = list
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	client, ok := clients.Find(clientUUID)
	if !ok {
		return nil, goerr.New("Client with UUID "+clientUUID+" not found in clients list",
			goerr.V(ClientUUIDKey, clientUUID))
	}
	snap.client = *client
	return &snap, nil
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// uniqueStrings returns the non-empty values of in, first occurrence first
func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := []string{}
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func percentString(n int) string {
	return strconv.Itoa(n) + "%"
}

func buildCorkLiveData(snap *corkSnapshot, clientUUID string, now time.Time) *model.CorkLiveData {
	live := &model.CorkLiveData{
		LastRefresh:        now.UTC(),
		SelectedClientUUID: clientUUID,
		SelectedClientName: snap.client.Name,
	}
	if live.SelectedClientName == "" {
		live.SelectedClientName = "Unknown Client"
	}

	// security metrics
	sm := &live.SecurityMetrics
	var eventTypes []string
	for _, e := range snap.events {
		eventTypes = append(eventTypes, e.EventType)
		if e.IsResolved() {
			sm.ResolvedEvents++
			sm.InfoEvents++
		} else {
			sm.UnresolvedEvents++
		}
		if e.AtRisk {
			sm.CriticalEvents++
		} else if !e.IsResolved() {
			sm.WarningEvents++
		}
	}
	sm.TotalEvents = len(snap.events)
	sm.ResponseTimeAvg = corkResponseTimeAvg
	sm.EventTypes = uniqueStrings(eventTypes)
	sm.LastUpdated = now.UTC()

	// endpoints
	ed := &live.EndpointData
	var integrationNames []string
	for _, d := range snap.devices {
		if d.IsProtected() {
			ed.ProtectedDevices++
		}
		for _, ep := range d.AssociatedEndpoints {
			if ep.Integration != nil {
				integrationNames = append(integrationNames, ep.Integration.DisplayName)
			}
		}
	}
	ed.TotalDevices = len(snap.devices)
	ed.UnprotectedDevices = ed.TotalDevices - ed.ProtectedDevices
	ed.ProtectionRate = percentString(percentOf(ed.ProtectedDevices, ed.TotalDevices))
	ed.IntegrationNames = uniqueStrings(integrationNames)
	ed.ActiveIntegrations = len(ed.IntegrationNames)

	// connected integrations
	in := &live.Integrations
	in.Vendors = []string{}
	in.ConnectionStatus = make([]model.CorkConnectionStatus, 0, len(snap.integrations))
	for _, i := range snap.integrations {
		if i.IsActive() {
			in.Active++
		}
		vendor := i.VendorName()
		if vendor != "" {
			in.Vendors = append(in.Vendors, vendor)
			lower := strings.ToLower(vendor)
			if containsAny(lower, edrKeywords) {
				ed.DeviceTypes.EDR++
			}
			if containsAny(lower, bcdrKeywords) {
				ed.DeviceTypes.BCDR++
			}
			if containsAny(lower, rmmKeywords) {
				ed.DeviceTypes.RMM++
			}
		}
		in.ConnectionStatus = append(in.ConnectionStatus, model.CorkConnectionStatus{
			Name:   i.DisplayName,
			Status: i.ConnectionStatus,
			Vendor: vendor,
		})
	}
	in.Total = len(snap.integrations)

	// email
	live.EmailData = model.CorkEmailData{
		TotalDomains:     len(snap.domains),
		TotalInboxes:     len(snap.inboxes),
		ProtectedInboxes: len(snap.inboxes),
		ProtectionRate:   corkEmailProtection,
	}

	// warranties
	w := &live.Warranties
	w.Items = make([]model.CorkWarrantyItem, 0, len(snap.warranties))
	for _, item := range snap.warranties {
		if item.Active {
			w.Active++
		}
		w.Items = append(w.Items, model.CorkWarrantyItem{
			ClientName: item.ClientName,
			Package:    item.Package,
			Active:     item.Active,
			StartDate:  item.StartDate,
		})
	}
	w.Total = len(snap.warranties)
	w.CoverageRate = percentString(percentOf(w.Active, w.Total))

	live.Charts = model.CorkCharts{
		WarrantyCoverage: []model.ChartSlice{
			{Label: "Active Warranties", Value: w.Active, Color: chartColorActiveGreen},
			{Label: "Inactive Warranties", Value: w.Total - w.Active, Color: chartColorInactiveRed},
		},
		IntegrationStatus: []model.ChartSlice{
			{Label: "Active Integrations", Value: in.Active, Color: chartColorActiveBlue},
			{Label: "Inactive Integrations", Value: in.Total - in.Active, Color: chartColorInactiveAmber},
		},
	}

	deviceProtection := percentOf(ed.ProtectedDevices, ed.TotalDevices)
	resolution := percentOf(sm.ResolvedEvents, sm.TotalEvents)
	integrationCoverage := percentOf(in.Active, in.Total)
	compliance := corkComplianceMonitoring(sm, ed, resolution)

	live.OverallMetrics = model.CorkOverallMetrics{
		DeviceProtectionScore: deviceProtection,
		EventResolutionRate:   resolution,
		TotalAssets:           ed.TotalDevices + live.EmailData.TotalDomains + live.EmailData.TotalInboxes,
		SecurityCoverage:      roundDiv(deviceProtection+integrationCoverage+compliance, 3),
	}
	return live
}

func roundDiv(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(d)))
}

// corkComplianceMonitoring scores four 25 point checks: events detected,
// risks identified, response tooling present and events resolved
func corkComplianceMonitoring(sm *model.CorkSecurityMetrics, ed *model.CorkEndpointData, resolution int) int {
	score := 0
	if sm.TotalEvents > 0 {
		score += 25
	}
	if sm.CriticalEvents > 0 || sm.WarningEvents > 0 {
		score += 25
	}
	if ed.ActiveIntegrations > 0 {
		score += 25
	}
	switch {
	case resolution > 50:
		score += 25
	case resolution > 0:
		score += roundDiv(resolution, 4)
	}
	return score
}

// corkDerived holds the adjectives and trends computed from live data
type corkDerived struct {
	IntegrationCoverage         int            `json:"integrationCoverage"`
	ComplianceMonitoring        int            `json:"complianceMonitoring"`
	CoverageAdjective           string         `json:"coverageAdjective"`
	ResponseAdjective           string         `json:"responseAdjective"`
	ResponseCapabilityAdjective string         `json:"responseCapabilityAdjective"`
	CoverageTrend               types.Trend    `json:"coverageTrend"`
	IntegrationHealthTrend      types.Trend    `json:"integrationHealthTrend"`
	EventResponseTrend          types.Trend    `json:"eventResponseTrend"`
	WarrantyTrend               types.Trend    `json:"warrantyTrend"`
	UnresolvedEventSeverity     types.Severity `json:"unresolvedEventSeverity"`
}

func adjective(v, high, mid int, top, middle, low string) string {
	switch {
	case v > high:
		return top
	case v > mid:
		return middle
	default:
		return low
	}
}

func deriveCork(live *model.CorkLiveData) *corkDerived {
	om := live.OverallMetrics
	integrationCoverage := percentOf(live.Integrations.Active, live.Integrations.Total)
	warrantyCoverage := percentOf(live.Warranties.Active, live.Warranties.Total)

	return &corkDerived{
		IntegrationCoverage:         integrationCoverage,
		ComplianceMonitoring:        corkComplianceMonitoring(&live.SecurityMetrics, &live.EndpointData, om.EventResolutionRate),
		CoverageAdjective:           adjective(om.SecurityCoverage, 80, 60, "excellent", "good", "fair"),
		ResponseAdjective:           adjective(om.EventResolutionRate, 80, 50, "highly responsive", "responsive", "limited"),
		ResponseCapabilityAdjective: adjective(live.Integrations.Active, 5, 2, "strong", "adequate", "limited"),
		CoverageTrend:               types.TrendAbove(float64(om.SecurityCoverage), 80, 60),
		IntegrationHealthTrend:      types.TrendAbove(float64(integrationCoverage), 80, 60),
		EventResponseTrend:          types.TrendAbove(float64(om.EventResolutionRate), 80, 50),
		WarrantyTrend:               types.TrendAbove(float64(warrantyCoverage), 80, 50),
		UnresolvedEventSeverity:     types.SeverityAbove(float64(live.SecurityMetrics.UnresolvedEvents), 5, 2),
	}
}

// corkContext builds the placeholder context: the live data under its JSON
// names, "calculated", and flat convenience keys used by the template.
// Derived values only reach the top level through the flat keys.
func corkContext(live *model.CorkLiveData, d *corkDerived) (placeholder.Context, error) {
	pctx, err := placeholder.NewContext(live)
	if err != nil {
		return nil, err
	}
	calculated, err := placeholder.NewContext(d)
	if err != nil {
		return nil, err
	}

	sm, ed, om := live.SecurityMetrics, live.EndpointData, live.OverallMetrics
	flat, err := placeholder.NewContext(map[string]any{
		"coveragePercent":           om.SecurityCoverage,
		"deviceCount":               ed.TotalDevices,
		"integrationCount":          live.Integrations.Active,
		"activeIntegrationCount":    live.Integrations.Active,
		"totalIntegrationCount":     live.Integrations.Total,
		"vendorCount":               len(live.Integrations.Vendors),
		"totalEventCount":           sm.TotalEvents,
		"resolvedEventCount":        sm.ResolvedEvents,
		"unresolvedEventCount":      sm.UnresolvedEvents,
		"eventResolutionRate":       om.EventResolutionRate,
		"totalAssetCount":           om.TotalAssets,
		"domainCount":               live.EmailData.TotalDomains,
		"inboxCount":                live.EmailData.TotalInboxes,
		"activeWarrantyCount":       live.Warranties.Active,
		"totalWarrantyCount":        live.Warranties.Total,
		"warrantyCoverageRate":      live.Warranties.CoverageRate,
		"deviceProtectionScore":     om.DeviceProtectionScore,
		"integrationCoverageScore":  d.IntegrationCoverage,
		"complianceMonitoringScore": d.ComplianceMonitoring,
		"deviceProtectionRate":      ed.ProtectionRate,
		"insecureEmailCount":        0,
		"mfaEventCount":             0,

		"coverageAdjective":           d.CoverageAdjective,
		"responseAdjective":           d.ResponseAdjective,
		"responseCapabilityAdjective": d.ResponseCapabilityAdjective,
		"coverageTrend":               d.CoverageTrend,
		"integrationHealthTrend":      d.IntegrationHealthTrend,
		"eventResponseTrend":          d.EventResponseTrend,
		"warrantyTrend":               d.WarrantyTrend,
		"unresolvedEventSeverity":     d.UnresolvedEventSeverity,

		"endpointDetectionStatus":   types.StatusIf(ed.ProtectedDevices > 0),
		"threatPreventionStatus":    types.StatusIf(ed.ProtectedDevices > 0),
		"mlModelsStatus":            types.StatusIf(ed.ProtectedDevices > 0),
		"behavioralAnalysisStatus":  types.StatusIf(ed.ProtectedDevices > 0),
		"anomalyDetectionStatus":    types.StatusIf(ed.ProtectedDevices > 0),
		"predictiveAnalyticsStatus": types.StatusIf(ed.ProtectedDevices > 0),
		"edrStatus":                 types.StatusIf(ed.DeviceTypes.EDR > 0),
		"bcdrStatus":                types.StatusIf(ed.DeviceTypes.BCDR > 0),
		"rmmStatus":                 types.StatusIf(ed.DeviceTypes.RMM > 0),
		"emailSecurityStatus":       types.StatusIf(live.EmailData.TotalDomains > 0),
		"eventDetectionStatus":      types.StatusIf(sm.TotalEvents > 0),
		"riskAssessmentStatus":      types.StatusIf(sm.CriticalEvents > 0 || sm.WarningEvents > 0),
		"responseCapabilityStatus":  types.StatusIf(ed.ActiveIntegrations > 0),
		"resolutionRateStatus":      types.StatusIf(om.EventResolutionRate > 50),
	})
	if err != nil {
		return nil, err
	}

	pctx.Set("calculated", map[string]any(calculated))
	pctx.Merge(flat)
	return pctx, nil
}

// corkSections returns the structured sections attached to the rendered
// Cork report
func corkSections(live *model.CorkLiveData, domains []cork.Domain) map[string]any {
	sm, ed, in, w := live.SecurityMetrics, live.EndpointData, live.Integrations, live.Warranties

	domainNames := []string{}
	for _, d := range domains {
		if name := d.DisplayName(); name != "" {
			domainNames = append(domainNames, name)
		}
	}

	return map[string]any{
		"warrantyCoverage": map[string]any{
			"rate":   w.CoverageRate,
			"active": w.Active,
			"total":  w.Total,
			"items":  w.Items,
		},
		"securityMetrics": map[string]any{
			"totalEvents":      sm.TotalEvents,
			"resolvedEvents":   sm.ResolvedEvents,
			"unresolvedEvents": sm.UnresolvedEvents,
			"responseTimeAvg":  sm.ResponseTimeAvg,
			"criticalEvents":   sm.CriticalEvents,
			"warningEvents":    sm.WarningEvents,
			"infoEvents":       sm.InfoEvents,
			"eventTypes":       sm.EventTypes,
		},
		"deviceProtection": map[string]any{
			"totalDevices":       ed.TotalDevices,
			"protectedDevices":   ed.ProtectedDevices,
			"unprotectedDevices": ed.UnprotectedDevices,
			"protectionRate":     ed.ProtectionRate,
			"deviceTypes":        ed.DeviceTypes,
			"activeIntegrations": ed.ActiveIntegrations,
			"integrationNames":   ed.IntegrationNames,
		},
		"integrationHealth": map[string]any{
			"totalIntegrations":    in.Total,
			"activeIntegrations":   in.Active,
			"inactiveIntegrations": in.Total - in.Active,
			"healthRate":           percentString(percentOf(in.Active, in.Total)),
			"vendors":              in.Vendors,
			"connectionStatus":     in.ConnectionStatus,
		},
		"emailSecurity": map[string]any{
			"totalDomains":     live.EmailData.TotalDomains,
			"totalInboxes":     live.EmailData.TotalInboxes,
			"protectedInboxes": live.EmailData.ProtectedInboxes,
			"protectionRate":   live.EmailData.ProtectionRate,
			"domains":          domainNames,
			"securityFeatures": []string{"SPF", "DKIM", "DMARC"},
		},
	}
}
