package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/secmon-lab/lmx/pkg/repository"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
	"github.com/secmon-lab/lmx/pkg/utils/placeholder"
)

type QBRUseCase struct {
	repo         interfaces.Repository
	presentation *model.Presentation
	now          func() time.Time
}

func NewQBRUseCase(repo interfaces.Repository, presentation *model.Presentation, now func() time.Time) *QBRUseCase {
	if presentation == nil {
		presentation = model.DefaultPresentation()
	}
	if now == nil {
		now = time.Now
	}
	return &QBRUseCase{
		repo:         repo,
		presentation: presentation,
		now:          now,
	}
}

// ListReports builds catalog cards for every registered QBR report, sorted
// by title. A missing index yields an empty catalog.
func (uc *QBRUseCase) ListReports(ctx context.Context) ([]*model.QBRCard, error) {
	idx, err := uc.repo.Deliverable().GetIndex(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return []*model.QBRCard{}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load QBR index")
	}

	logger := logging.From(ctx)
	now := uc.now().Unix()
	cards := make([]*model.QBRCard, 0, len(idx))
	for id, cfg := range idx {
		if cfg == nil {
			continue
		}

		description := cfg.Description
		doc, err := uc.loadDocument(ctx, id, cfg)
		switch {
		case err == nil:
			if d, ok := doc["description"].(string); ok && d != "" {
				description = d
			}
		case errors.Is(err, model.ErrNotFound):
			logger.Warn("QBR report file missing", "report_id", id, "json_file", cfg.JSONFile)
		default:
			logger.Warn("could not read QBR report", "report_id", id, "error", err)
		}

		reportType := cfg.Type.Normalize()
		cards = append(cards, &model.QBRCard{
			ID:          id,
			Title:       cfg.Title,
			Company:     cfg.Company,
			Type:        cfg.Type,
			Description: description,
			Icon:        uc.presentation.QBRIcon(cfg.Company, cfg.Type),
			Gradient:    uc.presentation.QBRGradient(id),
			Status:      "Available",
			LastUpdated: now,
			QBRURL:      "/lmx/deliverables/qbr/" + string(id),
			DataQuality: reportType.DataQuality(),
			Product:     cfg.Company,
		})
	}

	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Title != cards[j].Title {
			return cards[i].Title < cards[j].Title
		}
		return cards[i].ID < cards[j].ID
	})
	return cards, nil
}

// loadDocument returns the rendered copy of a report when one exists,
// otherwise its template
func (uc *QBRUseCase) loadDocument(ctx context.Context, id types.ReportID, cfg *model.QBRConfig) (model.ReportDocument, error) {
	data, _, err := uc.repo.Deliverable().GetRendered(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) && !errors.Is(err, model.ErrInvalidKey) {
			return nil, err
		}
		data, _, err = uc.repo.Deliverable().GetTemplate(ctx, cfg.JSONFile)
		if err != nil {
			return nil, err
		}
	}

	var doc model.ReportDocument
	if err := placeholder.Decode(data, &doc); err != nil {
		return nil, goerr.Wrap(ErrTemplateInvalid, "QBR report is not a JSON object",
			goerr.V(ReportIDKey, id), goerr.V("cause", err.Error()))
	}
	return doc, nil
}

// LoadReports returns every registered report keyed by ID. Reports whose
// file is missing are skipped.
func (uc *QBRUseCase) LoadReports(ctx context.Context) (map[types.ReportID]model.ReportDocument, error) {
	idx, err := uc.repo.Deliverable().GetIndex(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return nil, goerr.Wrap(ErrReportIndexMissing, "QBR configuration file not found")
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load QBR index")
	}

	reports := make(map[types.ReportID]model.ReportDocument, len(idx))
	for id, cfg := range idx {
		if cfg == nil {
			continue
		}
		doc, err := uc.loadDocument(ctx, id, cfg)
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrInvalidKey) {
			logging.From(ctx).Warn("QBR report JSON file not found", "report_id", id, "json_file", cfg.JSONFile)
			continue
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load QBR report", goerr.V(ReportIDKey, id))
		}
		reports[id] = doc
	}
	return reports, nil
}

// GetReport returns one report document, rendered copy first
func (uc *QBRUseCase) GetReport(ctx context.Context, id types.ReportID) (model.ReportDocument, error) {
	idx, err := uc.repo.Deliverable().GetIndex(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return nil, goerr.Wrap(ErrReportNotFound, "QBR index is missing", goerr.V(ReportIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load QBR index")
	}

	cfg, ok := idx[id]
	if !ok || cfg == nil {
		return nil, goerr.Wrap(ErrReportNotFound, "report is not registered", goerr.V(ReportIDKey, id))
	}

	doc, err := uc.loadDocument(ctx, id, cfg)
	if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrInvalidKey) {
		return nil, goerr.Wrap(ErrReportNotFound, "report file is missing", goerr.V(ReportIDKey, id))
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// AddReport writes the standard report template for company and registers
// it under id. reportType is "individual" (default) or "aggregate".
func (uc *QBRUseCase) AddReport(ctx context.Context, id types.ReportID, company, reportType string) (*model.QBRConfig, error) {
	id = types.ReportID(strings.TrimSpace(string(id)))
	company = strings.TrimSpace(company)
	if id == "" || company == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "report ID and company are required")
	}
	if !types.IsSafeKey(string(id)) {
		return nil, goerr.Wrap(ErrInvalidInput, "report ID may contain only letters, digits, '.', '_' and '-'", goerr.V(ReportIDKey, id))
	}

	rt, err := types.ParseReportType(reportType)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V("type", reportType))
	}

	idx, err := uc.repo.Deliverable().GetIndex(ctx)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to load QBR index")
	}
	if _, ok := idx[id]; ok {
		return nil, goerr.Wrap(ErrReportExists, "QBR report already exists", goerr.V(ReportIDKey, id))
	}

	report := model.NewQBRTemplate(id, company, rt)
	cfg := model.NewQBRConfig(report)
	data, err := repository.EncodeJSON(report)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Deliverable().CreateTemplate(ctx, cfg.JSONFile, data); err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			return nil, goerr.Wrap(ErrReportExists, "QBR report JSON file already exists",
				goerr.V(ReportIDKey, id), goerr.V("json_file", cfg.JSONFile))
		}
		return nil, goerr.Wrap(err, "failed to write QBR report")
	}

	err = uc.repo.Deliverable().UpdateIndex(ctx, func(idx model.QBRConfigIndex) error {
		if _, ok := idx[id]; ok {
			return goerr.Wrap(ErrReportExists, "QBR report already exists", goerr.V(ReportIDKey, id))
		}
		idx[id] = cfg
		return nil
	})
	if err != nil {
		if delErr := uc.repo.Deliverable().DeleteTemplate(ctx, cfg.JSONFile); delErr != nil {
			logging.From(ctx).Warn("failed to roll back QBR report", "json_file", cfg.JSONFile, "error", delErr)
		}
		return nil, err
	}

	logging.From(ctx).Info("QBR report added", "report_id", id, "company", cfg.Company, "type", rt)
	return cfg, nil
}

// RemoveReport unregisters a report and deletes its template and rendered
// copy when present
func (uc *QBRUseCase) RemoveReport(ctx context.Context, id types.ReportID) (*model.QBRConfig, error) {
	var removed *model.QBRConfig
	err := uc.repo.Deliverable().UpdateIndex(ctx, func(idx model.QBRConfigIndex) error {
		cfg, ok := idx[id]
		if !ok {
			return goerr.Wrap(ErrReportNotFound, "QBR report not found", goerr.V(ReportIDKey, id))
		}
		removed = cfg
		delete(idx, id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger := logging.From(ctx)
	if removed != nil && removed.JSONFile != "" {
		if err := uc.repo.Deliverable().DeleteTemplate(ctx, removed.JSONFile); err != nil {
			if !errors.Is(err, model.ErrNotFound) {
				return nil, goerr.Wrap(err, "failed to delete QBR report file", goerr.V(ReportIDKey, id))
			}
			logger.Warn("QBR report JSON file not found", "report_id", id, "json_file", removed.JSONFile)
		}
	}
	if err := uc.repo.Deliverable().DeleteRendered(ctx, id); err != nil && !errors.Is(err, model.ErrNotFound) && !errors.Is(err, model.ErrInvalidKey) {
		return nil, goerr.Wrap(err, "failed to delete rendered QBR report", goerr.V(ReportIDKey, id))
	}

	logger.Info("QBR report removed", "report_id", id)
	if removed == nil {
		removed = &model.QBRConfig{ID: id}
	}
	return removed, nil
}
