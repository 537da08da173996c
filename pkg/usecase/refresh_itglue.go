package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/secmon-lab/lmx/pkg/service/itglue"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
	"github.com/secmon-lab/lmx/pkg/utils/placeholder"
)

const (
	itglueRecentWindow      = 30 * 24 * time.Hour
	itglueStaleWindow       = 90 * 24 * time.Hour
	itglueExpiryWindow      = 30 * 24 * time.Hour
	itglueFlexibleAssetJobs = 4
	maxFlexibleExamples     = 3
	maxTopContributors      = 3
	unknownValue            = "Unknown"
)

var (
	hardwareKeywords = []string{"server", "workstation", "laptop", "desktop"}
	softwareKeywords = []string{"software", "application", "license"}
	networkKeywords  = []string{"switch", "router", "firewall", "network"}
	cloudKeywords    = []string{"cloud", "aws", "azure", "gcp"}

	complianceCategories = []string{
		"Asset Documentation",
		"Process Documentation",
		"Configuration Management",
		"Password Management",
	}

	configurationTypeIDKeys = []string{"configuration-type-id", "asset-type-id", "configuration_type_id", "asset_type_id"}
	expirationDateKeys      = []string{
		"warranty-expires-at", "mitp-device-expiration-date", "mitp-end-of-life-date",
		"expiration-date", "expires-on", "valid-until", "end-of-life-date",
		"warranty_expires_at", "mitp_device_expiration_date", "mitp_end_of_life_date",
		"expiration_date", "expires_on", "valid_until", "end_of_life_date",
	}
)

// itglueSnapshot is the raw vendor data of one refresh
type itglueSnapshot struct {
	configurations     []itglue.Resource
	domains            []itglue.Resource
	passwords          []itglue.Resource
	sslCertificates    []itglue.Resource
	configurationTypes []itglue.Resource
	flexibleAssetTypes []itglue.Resource
	flexibleAssets     []itglue.Resource
	users              []itglue.Resource
	activities         []itglue.Resource
	clientName         string
}

// RefreshITGlue fetches live IT Glue data for an organization, renders the
// IT Glue report template with it and stores the rendered copy
func (uc *RefreshUseCase) RefreshITGlue(ctx context.Context, clientUUID string) (*model.RefreshResult, error) {
	return uc.run(ctx, types.VendorITGlue, uc.itglue != nil, clientUUID, uc.refreshITGlue)
}

func (uc *RefreshUseCase) refreshITGlue(ctx context.Context, clientUUID string) (*model.RefreshResult, error) {
	tmpl, err := uc.loadTemplate(ctx, types.VendorITGlue)
	if err != nil {
		return nil, err
	}

	snap, err := uc.fetchITGlue(ctx, clientUUID)
	if err != nil {
		return nil, err
	}

	live := buildITGlueLiveData(snap, clientUUID, uc.now())
	doc, err := renderITGlue(tmpl, live)
	if err != nil {
		return nil, err
	}

	id := types.VendorITGlue.TemplateReportID()
	if err := uc.persist(ctx, id, doc); err != nil {
		return nil, err
	}

	return &model.RefreshResult{
		Success:    true,
		Data:       doc,
		LiveData:   live,
		Message:    "IT Glue data refreshed successfully",
		ReportID:   id,
		ClientName: live.SelectedClientName,
	}, nil
}

// TestITGlueTemplate renders the IT Glue template against fixed sample data.
// Nothing is fetched or stored.
func (uc *RefreshUseCase) TestITGlueTemplate(ctx context.Context) (*model.RefreshResult, error) {
	tmpl, err := uc.loadTemplate(ctx, types.VendorITGlue)
	if err != nil {
		return nil, err
	}

	live := model.SampleITGlueLiveData(uc.now().UTC())
	doc, err := renderITGlue(tmpl, live)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("IT Glue template test rendered", "keys", len(doc))
	return &model.RefreshResult{
		Success:  true,
		Data:     doc,
		LiveData: live,
		Message:  "IT Glue template processing test completed successfully",
		ReportID: types.VendorITGlue.TemplateReportID(),
	}, nil
}

// optionalList runs fetch and logs a failure instead of returning it
func optionalList(ctx context.Context, name string, fetch func() ([]itglue.Resource, error)) []itglue.Resource {
	items, err := fetch()
	if err != nil {
		logging.From(ctx).Warn("IT Glue "+name+" unavailable, continuing without them", "error", err)
		return []itglue.Resource{}
	}
	return items
}

func (uc *RefreshUseCase) fetchITGlue(ctx context.Context, orgID string) (*itglueSnapshot, error) {
	var snap itglueSnapshot
	svc := uc.itglue

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		items, err := svc.ListConfigurations(ctx, orgID)
		if err != nil {
			return goerr.Wrap(err, "failed to fetch configurations")
		}
		snap.configurations = items
		return nil
	})
	eg.Go(func() error {
		snap.domains = optionalList(ctx, "domains", func() ([]itglue.Resource, error) {
			return svc.ListDomains(ctx, orgID)
		})
		return nil
	})
	eg.Go(func() error {
		snap.passwords = optionalList(ctx, "passwords", func() ([]itglue.Resource, error) {
			return svc.ListPasswords(ctx, orgID)
		})
		return nil
	})
	eg.Go(func() error {
		snap.sslCertificates = optionalList(ctx, "SSL certificates", func() ([]itglue.Resource, error) {
			return svc.ListSSLCertificates(ctx, orgID)
		})
		return nil
	})
	eg.Go(func() error {
		snap.configurationTypes = optionalList(ctx, "configuration types", func() ([]itglue.Resource, error) {
			return svc.ListConfigurationTypes(ctx)
		})
		if len(snap.configurationTypes) == 0 {
			snap.configurationTypes = optionalList(ctx, "asset types", func() ([]itglue.Resource, error) {
				return svc.ListAssetTypes(ctx)
			})
		}
		return nil
	})
	eg.Go(func() error {
		assetTypes := optionalList(ctx, "flexible asset types", func() ([]itglue.Resource, error) {
			return svc.ListFlexibleAssetTypes(ctx)
		})
		snap.flexibleAssetTypes = assetTypes
		snap.flexibleAssets = uc.fetchFlexibleAssets(ctx, assetTypes, orgID)
		return nil
	})
	eg.Go(func() error {
		snap.users = optionalList(ctx, "users", func() ([]itglue.Resource, error) {
			return svc.ListUsers(ctx)
		})
		return nil
	})
	eg.Go(func() error {
		snap.activities = optionalList(ctx, "activities", func() ([]itglue.Resource, error) {
			return svc.ListActivities(ctx, orgID)
		})
		return nil
	})
	eg.Go(func() error {
		snap.clientName = uc.organizationName(ctx, orgID)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// fetchFlexibleAssets collects the organization's flexible assets of every
// named type. Types that fail are skipped. Results keep the type order.
func (uc *RefreshUseCase) fetchFlexibleAssets(ctx context.Context, assetTypes []itglue.Resource, orgID string) []itglue.Resource {
	logger := logging.From(ctx)

	var named []itglue.Resource
	for _, t := range assetTypes {
		if t.Name() != "" {
			named = append(named, t)
		}
	}

	perType := make([][]itglue.Resource, len(named))
	var eg errgroup.Group
	eg.SetLimit(itglueFlexibleAssetJobs)
	for i, t := range named {
		eg.Go(func() error {
			items, err := uc.itglue.ListFlexibleAssets(ctx, t.ID, orgID)
			if err != nil {
				logger.Warn("skipping flexible asset type", "type", t.Name(), "type_id", t.ID, "error", err)
				return nil
			}
			for j := range items {
				if items[j].Attributes == nil {
					items[j].Attributes = itglue.Attributes{}
				}
				if items[j].Attributes.ID("flexible-asset-type-id") == "" {
					items[j].Attributes["flexible-asset-type-id"] = t.ID
				}
			}
			perType[i] = items
			return nil
		})
	}
	_ = eg.Wait()

	all := []itglue.Resource{}
	for _, items := range perType {
		all = append(all, items...)
	}
	return all
}

// organizationName returns the organization's name, falling back to the
// first visible organization and then to "Unknown Client"
func (uc *RefreshUseCase) organizationName(ctx context.Context, orgID string) string {
	logger := logging.From(ctx)

	org, err := uc.itglue.GetOrganization(ctx, orgID)
	if err == nil {
		if name := org.Name(); name != "" {
			return name
		}
		return "Unknown Client"
	}

	logger.Warn("organization not found, using first available organization", "error", err)
	orgs, err := uc.itglue.ListOrganizations(ctx)
	if err != nil {
		logger.Warn("failed to list organizations", "error", err)
		return "Unknown Client"
	}
	if len(orgs) > 0 && orgs[0].Name() != "" {
		return orgs[0].Name()
	}
	return "Unknown Client"
}

func countNamesContaining(resources []itglue.Resource, keywords []string) int {
	n := 0
	for _, r := range resources {
		if containsAny(strings.ToLower(r.Name()), keywords) {
			n++
		}
	}
	return n
}

func hasName(r itglue.Resource) bool {
	return strings.TrimSpace(r.Name()) != ""
}

func updatedAt(r itglue.Resource) (time.Time, bool) {
	return r.Attributes.Time("updated_at", "updated-at")
}

func buildITGlueLiveData(snap *itglueSnapshot, clientUUID string, now time.Time) *model.ITGlueLiveData {
	recentCutoff := now.Add(-itglueRecentWindow)
	staleCutoff := now.Add(-itglueStaleWindow)

	live := &model.ITGlueLiveData{
		LastRefresh:        now.UTC(),
		SelectedClientUUID: clientUUID,
		SelectedClientName: snap.clientName,
	}
	if live.SelectedClientName == "" {
		live.SelectedClientName = "Unknown Client"
	}

	// assets
	assets := snap.configurations
	ad := &live.AssetData
	var ageSum, ageCount int
	for _, a := range assets {
		if hasName(a) {
			ad.DocumentedAssets++
		}
		if v, ok := a.Attributes.Float("asset_type_id"); ok && v > 0 {
			ad.ManagedAssets++
		}
		if ts, ok := updatedAt(a); ok {
			ageSum += int(now.Sub(ts) / (24 * time.Hour))
			ageCount++
		}
	}
	ad.TotalAssets = len(assets)
	ad.UndocumentedAssets = ad.TotalAssets - ad.DocumentedAssets
	ad.HardwareAssets = countNamesContaining(assets, hardwareKeywords)
	ad.SoftwareAssets = countNamesContaining(assets, softwareKeywords)
	ad.NetworkAssets = countNamesContaining(assets, networkKeywords)
	ad.CloudAssets = countNamesContaining(assets, cloudKeywords)
	ad.AssetTypes = model.ITGlueAssetTypes{
		Hardware: ad.HardwareAssets,
		Software: ad.SoftwareAssets,
		Network:  ad.NetworkAssets,
		Cloud:    ad.CloudAssets,
	}

	// processes are flexible assets
	flex := snap.flexibleAssets
	pd := &live.ProcessData
	pd.ProcessTypes = []string{}
	for _, f := range flex {
		if hasName(f) {
			pd.DocumentedProcesses++
		}
		if name := f.Name(); name != "" {
			pd.ProcessTypes = append(pd.ProcessTypes, name)
		}
		ts, ok := updatedAt(f)
		if !ok || ts.Before(staleCutoff) {
			pd.OutdatedProcesses++
		}
		if ok && ts.After(recentCutoff) {
			pd.RecentUpdates++
		}
	}
	pd.TotalProcesses = len(flex)
	pd.ComplianceScore = percentOf(pd.DocumentedProcesses, pd.TotalProcesses)

	// users
	ud := &live.UserData
	ud.TopContributors = []string{}
	for _, u := range snap.users {
		if ts, ok := u.Attributes.Time("last_sign_in_at", "last-sign-in-at"); ok && ts.After(recentCutoff) {
			ud.ActiveUsers++
		}
		if name := u.Name(); name != "" && len(ud.TopContributors) < maxTopContributors {
			ud.TopContributors = append(ud.TopContributors, name)
		}
	}
	ud.TotalUsers = len(snap.users)
	ud.ActiveUserPercentage = percentOf(ud.ActiveUsers, ud.TotalUsers)

	// activity
	act := &live.ActivityData
	for _, a := range snap.activities {
		if ts, ok := a.Attributes.Time("created_at", "created-at"); ok && ts.After(recentCutoff) {
			act.RecentUpdates++
		}
	}
	if ageCount > 0 {
		act.AvgDocumentationAge = roundDiv(ageSum, ageCount)
	}
	if act.RecentUpdates > 0 {
		act.UpdateFrequency = roundDiv(30, act.RecentUpdates)
	}

	live.ComplianceData = model.ITGlueComplianceData{
		ComplianceScore:   percentOf(ad.DocumentedAssets, ad.TotalAssets),
		ComplianceItems:   ad.TotalAssets + pd.TotalProcesses,
		CompliantItems:    ad.DocumentedAssets + pd.DocumentedProcesses,
		NonCompliantItems: ad.UndocumentedAssets + (pd.TotalProcesses - pd.DocumentedProcesses),
		Categories:        append([]string(nil), complianceCategories...),
		LastAudit:         now.UTC().Format(time.DateOnly),
	}

	live.DocumentationSummary = buildDocumentationSummary(snap, now)

	live.OverallMetrics = model.ITGlueOverallMetrics{
		DocumentationCompleteness: percentOf(ad.DocumentedAssets+pd.DocumentedProcesses, ad.TotalAssets+pd.TotalProcesses),
		AssetManagementScore:      percentOf(ad.ManagedAssets, ad.TotalAssets),
		ProcessComplianceScore:    pd.ComplianceScore,
		UserEngagementScore:       ud.ActiveUserPercentage,
	}
	return live
}

// expirationBucket classifies a configuration by its first known expiry date
func expirationBucket(attrs itglue.Attributes, now time.Time) string {
	expiry, ok := attrs.Time(expirationDateKeys...)
	switch {
	case !ok:
		return model.ExpirationNone
	case expiry.Before(now):
		return model.ExpirationExpired
	case !expiry.After(now.Add(itglueExpiryWindow)):
		return model.ExpirationExpiringSoon
	default:
		return model.ExpirationActive
	}
}

func configurationTypeName(r itglue.Resource, typeNames map[string]string) string {
	if name := r.Attributes.String("configuration-type-name"); name != "" {
		return name
	}
	typeID := r.Attributes.ID(configurationTypeIDKeys...)
	if typeID == "" {
		typeID = r.RelationshipID("configuration-type")
	}
	if typeID == "" {
		return unknownValue
	}
	if name, ok := typeNames[typeID]; ok {
		return name
	}
	return "Type " + typeID
}

func buildDocumentationSummary(snap *itglueSnapshot, now time.Time) model.DocumentationSummary {
	var summary model.DocumentationSummary

	// configurations
	typeNames := make(map[string]string, len(snap.configurationTypes))
	for _, t := range snap.configurationTypes {
		if name := t.Name(); name != "" {
			typeNames[t.ID] = name
		}
	}
	cs := &summary.Configurations
	cs.Total = len(snap.configurations)
	cs.ByType = map[string]int{}
	cs.ByExpiration = model.NewExpirationBuckets()
	for _, c := range snap.configurations {
		cs.ByType[configurationTypeName(c, typeNames)]++
		cs.ByExpiration[expirationBucket(c.Attributes, now)]++
	}

	// domains
	summary.Domains.Total = len(snap.domains)
	summary.Domains.List = make([]model.DomainEntry, 0, len(snap.domains))
	for _, d := range snap.domains {
		name := orUnknown(d.Name())
		expiry := unknownValue
		if ts, ok := d.Attributes.Time("expires-on"); ok {
			expiry = ts.UTC().Format(time.DateOnly)
		}
		summary.Domains.List = append(summary.Domains.List, model.DomainEntry{
			Name:        name,
			ExpiryDate:  expiry,
			Registrar:   orUnknown(d.Attributes.String("registrar-name")),
			DisplayText: name + " (expires: " + expiry + ")",
		})
	}

	// passwords: metadata only
	freshCutoff := now.Add(-itglueStaleWindow)
	summary.Passwords.Total = len(snap.passwords)
	for _, p := range snap.passwords {
		if ts, ok := p.Attributes.Time("password-updated-at"); ok && !ts.Before(freshCutoff) {
			summary.Passwords.Fresh++
		}
	}
	summary.Passwords.Stale = summary.Passwords.Total - summary.Passwords.Fresh

	// SSL certificates
	expiringCutoff := now.Add(itglueExpiryWindow)
	ssl := &summary.SSLCertificates
	ssl.Total = len(snap.sslCertificates)
	ssl.List = make([]model.SSLCertificateEntry, 0, len(snap.sslCertificates))
	for _, c := range snap.sslCertificates {
		expiry := unknownValue
		if ts, ok := c.Attributes.Time("valid-until"); ok {
			expiry = ts.UTC().Format(time.DateOnly)
			if !ts.After(expiringCutoff) {
				ssl.ExpiringSoon++
			}
		}
		name := orUnknown(c.Attributes.String("name", "host"))
		issuer := orUnknown(c.Attributes.String("issued-by", "issuer-organization"))
		ssl.List = append(ssl.List, model.SSLCertificateEntry{
			Name:        name,
			Issuer:      issuer,
			ExpiryDate:  expiry,
			Algorithm:   orUnknown(c.Attributes.String("signature-algorithm")),
			DisplayText: name + " (" + issuer + ") - expires: " + expiry,
		})
	}

	// flexible assets grouped by type
	flexTypeNames := make(map[string]string, len(snap.flexibleAssetTypes))
	for _, t := range snap.flexibleAssetTypes {
		if name := t.Name(); name != "" {
			flexTypeNames[t.ID] = name
		}
	}
	fa := &summary.FlexibleAssets
	fa.ByType = map[string]int{}
	fa.Detailed = map[string]*model.FlexibleAssetGroup{}
	for _, f := range snap.flexibleAssets {
		typeName := flexibleAssetTypeName(f, flexTypeNames)
		group, ok := fa.Detailed[typeName]
		if !ok {
			group = &model.FlexibleAssetGroup{Examples: []string{}}
			fa.Detailed[typeName] = group
		}
		group.Count++
		if len(group.Examples) < maxFlexibleExamples {
			name := f.Name()
			if name == "" {
				name = "Unnamed Asset"
			}
			group.Examples = append(group.Examples, name)
		}
	}
	for name, group := range fa.Detailed {
		fa.ByType[name] = group.Count
	}
	return summary
}

func flexibleAssetTypeName(r itglue.Resource, typeNames map[string]string) string {
	if name := r.Attributes.String("flexible-asset-type-name"); name != "" {
		return name
	}
	typeID := r.Attributes.ID("flexible-asset-type-id")
	if typeID == "" {
		return unknownValue
	}
	if name, ok := typeNames[typeID]; ok {
		return name
	}
	return "Type " + typeID
}

func orUnknown(s string) string {
	if s == "" {
		return unknownValue
	}
	return s
}

// itglueDerived holds the adjectives, trends and severities computed from
// live data
type itglueDerived struct {
	DocumentationCoverage     int            `json:"documentationCoverage"`
	AssetManagement           int            `json:"assetManagement"`
	DocumentationAdjective    string         `json:"documentationAdjective"`
	EngagementAdjective       string         `json:"engagementAdjective"`
	DocumentationTrend        types.Trend    `json:"documentationTrend"`
	AssetManagementTrend      types.Trend    `json:"assetManagementTrend"`
	ComplianceTrend           types.Trend    `json:"complianceTrend"`
	EngagementTrend           types.Trend    `json:"engagementTrend"`
	FreshnessTrend            types.Trend    `json:"freshnessTrend"`
	UndocumentedAssetSeverity types.Severity `json:"undocumentedAssetSeverity"`
	OutdatedProcessSeverity   types.Severity `json:"outdatedProcessSeverity"`
	UserEngagementSeverity    types.Severity `json:"userEngagementSeverity"`
}

func deriveITGlue(live *model.ITGlueLiveData) *itglueDerived {
	ad := live.AssetData
	completeness := live.OverallMetrics.DocumentationCompleteness
	active := live.UserData.ActiveUserPercentage
	assetManagement := percentOf(ad.ManagedAssets, ad.TotalAssets)

	return &itglueDerived{
		DocumentationCoverage:     percentOf(ad.DocumentedAssets, ad.TotalAssets),
		AssetManagement:           assetManagement,
		DocumentationAdjective:    adjective(completeness, 80, 60, "excellent", "good", "fair"),
		EngagementAdjective:       adjective(active, 80, 50, "strong", "moderate", "limited"),
		DocumentationTrend:        types.TrendAbove(float64(completeness), 80, 60),
		AssetManagementTrend:      types.TrendAbove(float64(assetManagement), 80, 60),
		ComplianceTrend:           types.TrendAbove(float64(live.ComplianceData.ComplianceScore), 80, 60),
		EngagementTrend:           types.TrendAbove(float64(active), 80, 50),
		FreshnessTrend:            types.TrendBelow(float64(live.ActivityData.AvgDocumentationAge), 30, 90),
		UndocumentedAssetSeverity: types.SeverityAbove(float64(ad.UndocumentedAssets), 10, 5),
		OutdatedProcessSeverity:   types.SeverityAbove(float64(live.ProcessData.OutdatedProcesses), 5, 2),
		UserEngagementSeverity:    types.SeverityBelow(float64(active), 30, 50),
	}
}

func needsAttentionAbove(v, limit int) types.Trend {
	if v > limit {
		return types.TrendNeedsAttention
	}
	return types.TrendPositive
}

// itglueContext builds the placeholder context: the live data under its
// JSON names, "calculated", and flat convenience keys used by the template
func itglueContext(live *model.ITGlueLiveData, d *itglueDerived) (placeholder.Context, error) {
	pctx, err := placeholder.NewContext(live)
	if err != nil {
		return nil, err
	}
	calculated, err := placeholder.NewContext(d)
	if err != nil {
		return nil, err
	}

	ad, pd, ud, act, cd := live.AssetData, live.ProcessData, live.UserData, live.ActivityData, live.ComplianceData
	ds := live.DocumentationSummary
	expired := ds.Configurations.ByExpiration[model.ExpirationExpired]

	flexibleTotal := 0
	for _, n := range ds.FlexibleAssets.ByType {
		flexibleTotal += n
	}

	flat, err := placeholder.NewContext(map[string]any{
		"documentationCompleteness": live.OverallMetrics.DocumentationCompleteness,
		"totalAssets":               ad.TotalAssets,
		"documentedAssets":          ad.DocumentedAssets,
		"managedAssets":             ad.ManagedAssets,
		"activeUsers":               ud.ActiveUsers,
		"recentUpdates":             act.RecentUpdates,
		"documentedProcesses":       pd.DocumentedProcesses,
		"complianceScore":           cd.ComplianceScore,
		"undocumentedAssets":        ad.UndocumentedAssets,
		"outdatedProcesses":         pd.OutdatedProcesses,
		"activeUserPercentage":      ud.ActiveUserPercentage,
		"avgDocumentationAge":       act.AvgDocumentationAge,
		"complianceItems":           cd.ComplianceItems,

		"documentationAdjective":    d.DocumentationAdjective,
		"engagementAdjective":       d.EngagementAdjective,
		"documentationTrend":        d.DocumentationTrend,
		"assetManagementTrend":      d.AssetManagementTrend,
		"complianceTrend":           d.ComplianceTrend,
		"engagementTrend":           d.EngagementTrend,
		"freshnessTrend":            d.FreshnessTrend,
		"undocumentedAssetSeverity": d.UndocumentedAssetSeverity,
		"outdatedProcessSeverity":   d.OutdatedProcessSeverity,
		"userEngagementSeverity":    d.UserEngagementSeverity,

		"assetDocumentationStatus":   types.StatusIf(ad.DocumentedAssets > 0),
		"processDocumentationStatus": types.StatusIf(pd.DocumentedProcesses > 0),
		"configManagementStatus":     types.StatusIf(ad.NetworkAssets > 0),
		"passwordManagementStatus":   types.StatusIf(ad.SoftwareAssets > 0),
		"vendorDocumentationStatus":  types.StatusIf(ad.HardwareAssets > 0),
		"hardwareAssetStatus":        types.StatusIf(ad.HardwareAssets > 0),
		"softwareAssetStatus":        types.StatusIf(ad.SoftwareAssets > 0),
		"networkAssetStatus":         types.StatusIf(ad.NetworkAssets > 0),
		"cloudAssetStatus":           types.StatusIf(ad.CloudAssets > 0),
		"docStandardsStatus":         types.StatusIf(cd.ComplianceScore > 70),
		"processAdoptionStatus":      types.StatusIf(ud.ActiveUsers > 0),
		"userEngagementStatus":       types.StatusIf(act.RecentUpdates > 0),
		"updateFrequencyStatus":      types.StatusIf(act.AvgDocumentationAge < 30),

		"documentedConfigs":  ad.NetworkAssets,
		"managedPasswords":   ad.SoftwareAssets,
		"documentedVendors":  ad.HardwareAssets,
		"hardwareAssets":     ad.HardwareAssets,
		"softwareAssets":     ad.SoftwareAssets,
		"networkAssets":      ad.NetworkAssets,
		"cloudAssets":        ad.CloudAssets,
		"lastRefresh":        live.LastRefresh,
		"selectedClientUuid": live.SelectedClientUUID,

		"configurationsTotal":         ds.Configurations.Total,
		"configurationsByType":        ds.Configurations.ByType,
		"configurationsByExpiration":  ds.Configurations.ByExpiration,
		"flexibleAssetsDetailed":      ds.FlexibleAssets.Detailed,
		"domainsTotal":                ds.Domains.Total,
		"domainsList":                 ds.Domains.List,
		"passwordsTotal":              ds.Passwords.Total,
		"passwordsFresh":              ds.Passwords.Fresh,
		"passwordsStale":              ds.Passwords.Stale,
		"sslCertificatesTotal":        ds.SSLCertificates.Total,
		"sslCertificatesExpiringSoon": ds.SSLCertificates.ExpiringSoon,
		"sslCertificatesList":         ds.SSLCertificates.List,
		"flexibleAssetsByType":        ds.FlexibleAssets.ByType,

		"configurationsExpired":           expired,
		"configurationsExpiringSoon":      ds.Configurations.ByExpiration[model.ExpirationExpiringSoon],
		"configurationsExpiredPercentage": percentOf(expired, ds.Configurations.Total),
		"configurationsTypeCount":         len(ds.Configurations.ByType),
		"flexibleAssetsTotal":             flexibleTotal,
		"flexibleAssetTypesCount":         len(ds.FlexibleAssets.ByType),

		"configurationsExpiredTrend":       needsAttentionAbove(expired, 50),
		"sslCertificatesExpiringSoonTrend": needsAttentionAbove(ds.SSLCertificates.ExpiringSoon, 0),
		"passwordsStaleTrend":              needsAttentionAbove(ds.Passwords.Stale, 0),
	})
	if err != nil {
		return nil, err
	}

	pctx.Set("calculated", map[string]any(calculated))
	pctx.Merge(flat)
	return pctx, nil
}

// renderITGlue resolves the template, attaches the detail sections and puts
// back the documentation summary lists as structured values
func renderITGlue(tmpl any, live *model.ITGlueLiveData) (model.ReportDocument, error) {
	pctx, err := itglueContext(live, deriveITGlue(live))
	if err != nil {
		return nil, err
	}
	doc := render(tmpl, pctx, itglueSections(live))

	summary, ok := doc["documentationSummary"].(map[string]any)
	if !ok {
		return doc, nil
	}
	ds := live.DocumentationSummary
	if ssl, ok := summary["sslCertificates"].(map[string]any); ok {
		ssl["list"] = ds.SSLCertificates.List
	}
	if domains, ok := summary["domains"].(map[string]any); ok {
		domains["list"] = ds.Domains.List
	}
	if configs, ok := summary["configurations"].(map[string]any); ok {
		configs["byExpiration"] = ds.Configurations.ByExpiration
	}
	return doc, nil
}

func itglueSections(live *model.ITGlueLiveData) map[string]any {
	ad, pd, ud, act, cd := live.AssetData, live.ProcessData, live.UserData, live.ActivityData, live.ComplianceData

	return map[string]any{
		"documentationMetrics": map[string]any{
			"totalAssets":        ad.TotalAssets,
			"documentedAssets":   ad.DocumentedAssets,
			"undocumentedAssets": ad.UndocumentedAssets,
			"completenessRate":   percentString(live.OverallMetrics.DocumentationCompleteness),
			"assetTypes":         ad.AssetTypes,
			"managedAssets":      ad.ManagedAssets,
			"managementRate":     percentString(percentOf(ad.ManagedAssets, ad.TotalAssets)),
		},
		"processManagement": map[string]any{
			"totalProcesses":      pd.TotalProcesses,
			"documentedProcesses": pd.DocumentedProcesses,
			"outdatedProcesses":   pd.OutdatedProcesses,
			"complianceScore":     pd.ComplianceScore,
			"processTypes":        pd.ProcessTypes,
			"recentUpdates":       pd.RecentUpdates,
		},
		"userEngagement": map[string]any{
			"totalUsers":           ud.TotalUsers,
			"activeUsers":          ud.ActiveUsers,
			"activeUserPercentage": percentString(ud.ActiveUserPercentage),
			"recentUpdates":        act.RecentUpdates,
			"avgDocumentationAge":  act.AvgDocumentationAge,
			"topContributors":      ud.TopContributors,
		},
		"complianceCoverage": map[string]any{
			"totalItems":        cd.ComplianceItems,
			"compliantItems":    cd.CompliantItems,
			"nonCompliantItems": cd.NonCompliantItems,
			"complianceRate":    percentString(cd.ComplianceScore),
			"categories":        cd.Categories,
			"lastAudit":         cd.LastAudit,
		},
	}
}
