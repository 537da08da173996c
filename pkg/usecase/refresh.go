package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/secmon-lab/lmx/pkg/repository"
	"github.com/secmon-lab/lmx/pkg/service/cork"
	"github.com/secmon-lab/lmx/pkg/service/itglue"
	"github.com/secmon-lab/lmx/pkg/utils/async"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
	"github.com/secmon-lab/lmx/pkg/utils/metrics"
	"github.com/secmon-lab/lmx/pkg/utils/placeholder"
)

// RefreshDeps carries the optional collaborators of RefreshUseCase. A nil
// vendor service means that vendor has no API key configured.
type RefreshDeps struct {
	Cork     cork.Service
	ITGlue   itglue.Service
	Notifier interfaces.Notifier
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

type RefreshUseCase struct {
	repo     interfaces.Repository
	cork     cork.Service
	itglue   itglue.Service
	notifier interfaces.Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewRefreshUseCase(repo interfaces.Repository, deps RefreshDeps) *RefreshUseCase {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &RefreshUseCase{
		repo:     repo,
		cork:     deps.Cork,
		itglue:   deps.ITGlue,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		now:      now,
	}
}

func vendorNotConfigured(v types.Vendor) error {
	return goerr.Wrap(newPublicError(ErrVendorNotConfigured, v.DisplayName()+" API key not configured", nil),
		"vendor is not configured", goerr.V(VendorKey, v))
}

// refreshFailed wraps a vendor failure so that the message reads
// "Failed to refresh <Vendor> data: <cause>"
func refreshFailed(v types.Vendor, err error) error {
	msg := "Failed to refresh " + v.DisplayName() + " data: " + err.Error()
	return goerr.Wrap(newPublicError(ErrRefreshFailed, msg, err), "vendor refresh failed", goerr.V(VendorKey, v))
}

// ListCorkClients proxies the Cork client list
func (uc *RefreshUseCase) ListCorkClients(ctx context.Context) (*model.CorkClientList, error) {
	if uc.cork == nil {
		return nil, vendorNotConfigured(types.VendorCork)
	}

	list, err := uc.cork.ListClients(ctx)
	if err != nil {
		return nil, goerr.Wrap(newPublicError(ErrVendorRequest, "Failed to fetch clients from Cork API", err),
			"failed to list Cork clients")
	}

	out := &model.CorkClientList{
		Clients:     make([]model.CorkClient, 0, len(list.Items)),
		Total:       list.Total,
		LastUpdated: uc.now().UTC(),
	}
	for _, c := range list.Items {
		out.Clients = append(out.Clients, model.CorkClient{
			UUID:      c.UUID,
			Name:      c.Name,
			Status:    c.Status,
			CreatedAt: c.CreatedAt,
		})
	}
	return out, nil
}

// ListITGlueClients proxies the IT Glue organization list
func (uc *RefreshUseCase) ListITGlueClients(ctx context.Context) (*model.ITGlueClientList, error) {
	if uc.itglue == nil {
		return nil, vendorNotConfigured(types.VendorITGlue)
	}

	orgs, err := uc.itglue.ListOrganizations(ctx)
	if err != nil {
		return nil, goerr.Wrap(newPublicError(ErrVendorRequest, "Failed to fetch IT Glue clients: "+err.Error(), err),
			"failed to list IT Glue clients")
	}

	out := &model.ITGlueClientList{
		Success: true,
		Clients: make([]model.ITGlueClient, 0, len(orgs)),
		Message: "IT Glue clients fetched successfully",
	}
	for _, org := range orgs {
		out.Clients = append(out.Clients, model.ITGlueClient{
			UUID:           org.ID,
			Name:           org.Name(),
			OrganizationID: org.Attributes.ID("organization_id", "organization-id"),
		})
	}
	return out, nil
}

// RefreshVendor dispatches to the vendor specific refresh. It is the entry
// point of the scheduled worker.
func (uc *RefreshUseCase) RefreshVendor(ctx context.Context, vendor types.Vendor, clientUUID string) (*model.RefreshResult, error) {
	switch vendor {
	case types.VendorCork:
		return uc.RefreshCork(ctx, clientUUID)
	case types.VendorITGlue:
		return uc.RefreshITGlue(ctx, clientUUID)
	default:
		return nil, goerr.Wrap(ErrInvalidInput, "unknown vendor", goerr.V(VendorKey, vendor))
	}
}

type refreshFunc func(ctx context.Context, clientUUID string) (*model.RefreshResult, error)

// run wraps a vendor refresh with input checks, logging, metrics and the
// completion notification
func (uc *RefreshUseCase) run(ctx context.Context, vendor types.Vendor, configured bool, clientUUID string, fn refreshFunc) (*model.RefreshResult, error) {
	clientUUID = strings.TrimSpace(clientUUID)
	if clientUUID == "" {
		return nil, goerr.Wrap(newPublicError(ErrClientUUIDMissing, ErrClientUUIDMissing.Error(), nil),
			"missing client UUID", goerr.V(VendorKey, vendor))
	}
	if !configured {
		return nil, vendorNotConfigured(vendor)
	}

	logger := logging.From(ctx).With("vendor", vendor, "client_uuid", clientUUID)
	ctx = logging.With(ctx, logger)
	logger.Info("starting refresh")

	started := uc.now()
	result, err := fn(ctx, clientUUID)
	elapsed := uc.now().Sub(started)
	uc.metrics.ObserveRefresh(string(vendor), err == nil, elapsed)

	event := &model.RefreshEvent{
		Vendor:     vendor,
		ClientUUID: clientUUID,
		ReportID:   vendor.TemplateReportID(),
		StartedAt:  started,
		Duration:   elapsed,
		Err:        err,
	}
	if result != nil {
		event.ClientName = result.ClientName
	}
	uc.notify(ctx, event)

	if err != nil {
		if !errors.Is(err, ErrRefreshFailed) && !errors.Is(err, ErrReportNotFound) && !errors.Is(err, ErrTemplateInvalid) {
			err = refreshFailed(vendor, err)
		}
		logger.Error("refresh failed", "error", err, "duration", elapsed)
		return nil, err
	}

	logger.Info("refresh completed", "client_name", result.ClientName, "duration", elapsed)
	return result, nil
}

func (uc *RefreshUseCase) notify(ctx context.Context, event *model.RefreshEvent) {
	if uc.notifier == nil {
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		uc.notifier.NotifyRefresh(ctx, event)
		return nil
	})
}

// loadTemplate reads and decodes the report template of a vendor. The
// template must be registered under the vendor's report ID.
func (uc *RefreshUseCase) loadTemplate(ctx context.Context, vendor types.Vendor) (any, error) {
	id := vendor.TemplateReportID()
	jsonFile := model.QBRFileName(id)

	idx, err := uc.repo.Deliverable().GetIndex(ctx)
	if err == nil {
		if cfg, ok := idx[id]; ok && cfg != nil && cfg.JSONFile != "" {
			jsonFile = cfg.JSONFile
		}
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to load QBR index")
	}

	data, _, err := uc.repo.Deliverable().GetTemplate(ctx, jsonFile)
	if errors.Is(err, model.ErrNotFound) {
		return nil, goerr.Wrap(ErrReportNotFound, vendor.DisplayName()+" report template not found",
			goerr.V(ReportIDKey, id), goerr.V("json_file", jsonFile))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read report template", goerr.V(ReportIDKey, id))
	}

	var tmpl any
	if err := placeholder.Decode(data, &tmpl); err != nil {
		return nil, goerr.Wrap(ErrTemplateInvalid, "report template does not parse",
			goerr.V(ReportIDKey, id), goerr.V("cause", err.Error()))
	}
	return tmpl, nil
}

// render resolves the template against ctxMap and returns the document
// with top-level sections applied on top
func render(tmpl any, ctxMap placeholder.Context, sections map[string]any) model.ReportDocument {
	resolved := placeholder.Resolve(tmpl, ctxMap)
	doc, ok := resolved.(map[string]any)
	if !ok {
		doc = map[string]any{"content": resolved}
	}
	for k, v := range sections {
		doc[k] = v
	}
	return model.ReportDocument(doc)
}

func (uc *RefreshUseCase) persist(ctx context.Context, id types.ReportID, doc model.ReportDocument) error {
	data, err := repository.EncodeJSON(doc)
	if err != nil {
		return err
	}
	if err := uc.repo.Deliverable().PutRendered(ctx, id, data); err != nil {
		return goerr.Wrap(err, "failed to store rendered report", goerr.V(ReportIDKey, id))
	}
	return nil
}
