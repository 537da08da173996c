package usecase

import (
	"context"
	"encoding/json"
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
	"github.com/secmon-lab/lmx/pkg/utils/metrics"
)

type AssessmentUseCase struct {
	repo         interfaces.Repository
	presentation *model.Presentation
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewAssessmentUseCase(repo interfaces.Repository, presentation *model.Presentation, m *metrics.Metrics, now func() time.Time) *AssessmentUseCase {
	if presentation == nil {
		presentation = model.DefaultPresentation()
	}
	if now == nil {
		now = time.Now
	}
	return &AssessmentUseCase{
		repo:         repo,
		presentation: presentation,
		metrics:      m,
		now:          now,
	}
}

// ListAssessments builds catalog cards for every registered assessment,
// sorted by title. A missing index yields an empty catalog.
func (uc *AssessmentUseCase) ListAssessments(ctx context.Context) ([]*model.AssessmentCard, error) {
	idx, err := uc.repo.Assessment().GetIndex(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return []*model.AssessmentCard{}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load assessment index")
	}

	logger := logging.From(ctx)
	cards := make([]*model.AssessmentCard, 0, len(idx.AssessmentTypes))
	for id, cfg := range idx.AssessmentTypes {
		if cfg == nil {
			continue
		}

		description := cfg.Description
		lastUpdated := uc.now().Unix()

		data, updatedAt, err := uc.repo.Assessment().GetTemplate(ctx, cfg.JSONFile)
		switch {
		case err == nil:
			lastUpdated = updatedAt.Unix()
			var doc model.AssessmentDocument
			if err := json.Unmarshal(data, &doc); err != nil {
				logger.Warn("could not parse assessment template", "assessment_id", id, "error", err)
			} else if doc.Template.Description != "" {
				description = doc.Template.Description
			}
		case errors.Is(err, model.ErrNotFound):
			logger.Warn("assessment template missing", "assessment_id", id, "json_file", cfg.JSONFile)
		default:
			logger.Warn("could not read assessment template", "assessment_id", id, "error", err)
		}

		cards = append(cards, &model.AssessmentCard{
			ID:               id,
			Title:            uc.presentation.AssessmentTitle(id, cfg.Description),
			Description:      description,
			Icon:             uc.presentation.AssessmentIcon(cfg.Description, cfg.Keywords),
			Gradient:         uc.presentation.AssessmentGradient(id),
			Status:           "Active",
			LastUpdated:      lastUpdated,
			RunAssessmentURL: "/lmx/assessments/run/" + string(id),
			ViewReportURL:    "/lmx/assessments/report/" + string(id),
			DownloadJSONURL:  "/api/assessments/download/" + string(id),
			Aliases:          nonNil(cfg.Aliases),
			Keywords:         nonNil(cfg.Keywords),
			CategoryTitles:   nonNil(cfg.Titles),
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

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (uc *AssessmentUseCase) lookupConfig(ctx context.Context, id types.AssessmentID) (*model.AssessmentConfig, error) {
	idx, err := uc.repo.Assessment().GetIndex(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return nil, goerr.Wrap(ErrAssessmentNotFound, "assessment index is missing", goerr.V(AssessmentIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load assessment index")
	}

	cfg, ok := idx.AssessmentTypes[id]
	if !ok || cfg == nil {
		return nil, goerr.Wrap(ErrAssessmentNotFound, "assessment is not registered", goerr.V(AssessmentIDKey, id))
	}
	return cfg, nil
}

func (uc *AssessmentUseCase) readTemplate(ctx context.Context, id types.AssessmentID) ([]byte, *model.AssessmentConfig, error) {
	cfg, err := uc.lookupConfig(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, _, err := uc.repo.Assessment().GetTemplate(ctx, cfg.JSONFile)
	if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrInvalidKey) {
		return nil, nil, goerr.Wrap(ErrAssessmentNotFound, "assessment template file is missing",
			goerr.V(AssessmentIDKey, id), goerr.V("json_file", cfg.JSONFile))
	}
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to read assessment template", goerr.V(AssessmentIDKey, id))
	}
	return data, cfg, nil
}

// Template returns the parsed questionnaire of an assessment
func (uc *AssessmentUseCase) Template(ctx context.Context, id types.AssessmentID) (*model.AssessmentTemplate, error) {
	data, _, err := uc.readTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	var doc model.AssessmentDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, goerr.Wrap(ErrTemplateInvalid, err.Error(), goerr.V(AssessmentIDKey, id))
	}
	return &doc.Template, nil
}

// GetAssessment returns the template document as stored, after checking
// that it parses
func (uc *AssessmentUseCase) GetAssessment(ctx context.Context, id types.AssessmentID) (json.RawMessage, error) {
	data, _, err := uc.readTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	var doc model.AssessmentDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, goerr.Wrap(ErrTemplateInvalid, err.Error(), goerr.V(AssessmentIDKey, id))
	}
	return json.RawMessage(data), nil
}

// DownloadAssessment returns the attachment file name and raw template bytes
func (uc *AssessmentUseCase) DownloadAssessment(ctx context.Context, id types.AssessmentID) (string, []byte, error) {
	data, _, err := uc.readTemplate(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return model.AssessmentFileName(id), data, nil
}

// AddAssessment registers a new assessment named name with a starter
// template. The ID is the kebab-case form of name.
func (uc *AssessmentUseCase) AddAssessment(ctx context.Context, name string) (types.AssessmentID, *model.AssessmentConfig, error) {
	id := types.Slugify(name)
	if id == "" || !types.IsSafeKey(string(id)) {
		return "", nil, goerr.Wrap(ErrInvalidInput, "assessment name must contain letters or digits", goerr.V("name", name))
	}

	if _, err := uc.lookupConfig(ctx, id); err == nil {
		return "", nil, goerr.Wrap(ErrAssessmentExists, "assessment is already registered", goerr.V(AssessmentIDKey, id))
	} else if !errors.Is(err, ErrAssessmentNotFound) {
		return "", nil, err
	}

	data, err := repository.EncodeJSON(model.NewAssessmentSkeleton(name))
	if err != nil {
		return "", nil, err
	}

	cfg := model.NewAssessmentConfig(id, name, uc.now())
	if err := uc.repo.Assessment().CreateTemplate(ctx, cfg.JSONFile, data); err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			return "", nil, goerr.Wrap(ErrAssessmentExists, "assessment template file already exists",
				goerr.V(AssessmentIDKey, id), goerr.V("json_file", cfg.JSONFile))
		}
		return "", nil, goerr.Wrap(err, "failed to write assessment template")
	}

	err = uc.repo.Assessment().UpdateIndex(ctx, func(idx *model.AssessmentConfigIndex) error {
		if _, ok := idx.AssessmentTypes[id]; ok {
			return goerr.Wrap(ErrAssessmentExists, "assessment is already registered", goerr.V(AssessmentIDKey, id))
		}
		idx.AssessmentTypes[id] = cfg
		return nil
	})
	if err != nil {
		if delErr := uc.repo.Assessment().DeleteTemplate(ctx, cfg.JSONFile); delErr != nil {
			logging.From(ctx).Warn("failed to roll back assessment template", "json_file", cfg.JSONFile, "error", delErr)
		}
		return "", nil, err
	}

	logging.From(ctx).Info("assessment added", "assessment_id", id, "json_file", cfg.JSONFile)
	return id, cfg, nil
}

// RemoveAssessment removes the config entry and the template file.
// nameOrID may be a display name or the kebab-case ID.
func (uc *AssessmentUseCase) RemoveAssessment(ctx context.Context, nameOrID string) (types.AssessmentID, error) {
	id := types.Slugify(nameOrID)
	if id == "" {
		return "", goerr.Wrap(ErrInvalidInput, "assessment name is required")
	}

	cfg, err := uc.lookupConfig(ctx, id)
	if err != nil {
		return "", err
	}

	jsonFile := cfg.JSONFile
	if jsonFile == "" {
		jsonFile = model.AssessmentFileName(id)
	}
	if _, _, err := uc.repo.Assessment().GetTemplate(ctx, jsonFile); err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrInvalidKey) {
			return "", goerr.Wrap(ErrAssessmentNotFound, "assessment template file is missing",
				goerr.V(AssessmentIDKey, id), goerr.V("json_file", jsonFile))
		}
		return "", goerr.Wrap(err, "failed to read assessment template")
	}

	err = uc.repo.Assessment().UpdateIndex(ctx, func(idx *model.AssessmentConfigIndex) error {
		if _, ok := idx.AssessmentTypes[id]; !ok {
			return goerr.Wrap(ErrAssessmentNotFound, "assessment is not registered", goerr.V(AssessmentIDKey, id))
		}
		delete(idx.AssessmentTypes, id)
		return nil
	})
	if err != nil {
		return "", err
	}

	if err := uc.repo.Assessment().DeleteTemplate(ctx, jsonFile); err != nil {
		return "", goerr.Wrap(err, "failed to delete assessment template", goerr.V(AssessmentIDKey, id))
	}

	logging.From(ctx).Info("assessment removed", "assessment_id", id)
	return id, nil
}

// ScoreAssessment scores answers without persisting them
func (uc *AssessmentUseCase) ScoreAssessment(ctx context.Context, id types.AssessmentID, answers model.AnswerSheet) (*model.AssessmentReport, error) {
	tmpl, err := uc.Template(ctx, id)
	if err != nil {
		return nil, err
	}

	report, err := ScoreAnswers(tmpl, id, answers, uc.now())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to score assessment", goerr.V(AssessmentIDKey, id))
	}

	uc.metrics.ObserveAssessment(string(id), string(report.Summary.RiskLevel))
	return report, nil
}

// SubmitAssessment scores answers and stores the result under a new ID
func (uc *AssessmentUseCase) SubmitAssessment(ctx context.Context, id types.AssessmentID, answers model.AnswerSheet) (*model.AssessmentResult, error) {
	report, err := uc.ScoreAssessment(ctx, id, answers)
	if err != nil {
		return nil, err
	}

	result := &model.AssessmentResult{
		ID:           types.NewResultID(),
		AssessmentID: id,
		Answers:      answers,
		Report:       report,
		CreatedAt:    report.AssessmentInfo.AssessmentDate,
	}
	if err := uc.repo.Result().Put(ctx, result); err != nil {
		return nil, goerr.Wrap(err, "failed to store assessment result", goerr.V(AssessmentIDKey, id))
	}

	logging.From(ctx).Info("assessment result stored",
		"assessment_id", id,
		"result_id", result.ID,
		"overall_score", report.Summary.OverallScore,
	)
	return result, nil
}

func (uc *AssessmentUseCase) GetResult(ctx context.Context, id types.AssessmentID, resultID types.ResultID) (*model.AssessmentResult, error) {
	if !resultID.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "result ID must be a UUID", goerr.V(ResultIDKey, resultID))
	}
	if !types.IsSafeKey(string(id)) {
		return nil, goerr.Wrap(ErrAssessmentNotFound, "invalid assessment ID", goerr.V(AssessmentIDKey, id))
	}

	result, err := uc.repo.Result().Get(ctx, id, resultID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, goerr.Wrap(ErrResultNotFound, "result does not exist",
			goerr.V(AssessmentIDKey, id), goerr.V(ResultIDKey, resultID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read assessment result")
	}
	return result, nil
}

// ListResults returns stored results of a registered assessment, newest first
func (uc *AssessmentUseCase) ListResults(ctx context.Context, id types.AssessmentID) ([]*model.AssessmentResult, error) {
	if _, err := uc.lookupConfig(ctx, id); err != nil {
		return nil, err
	}

	results, err := uc.repo.Result().List(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assessment results", goerr.V(AssessmentIDKey, id))
	}
	if results == nil {
		results = []*model.AssessmentResult{}
	}
	return results, nil
}

// ResolveAssessmentID maps a display name, alias or ID to a registered ID
func (uc *AssessmentUseCase) ResolveAssessmentID(ctx context.Context, nameOrID string) (types.AssessmentID, error) {
	idx, err := uc.repo.Assessment().GetIndex(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return "", goerr.Wrap(ErrAssessmentNotFound, "assessment index is missing")
	}
	if err != nil {
		return "", goerr.Wrap(err, "failed to load assessment index")
	}

	if _, ok := idx.AssessmentTypes[types.AssessmentID(nameOrID)]; ok {
		return types.AssessmentID(nameOrID), nil
	}
	slug := types.Slugify(nameOrID)
	if _, ok := idx.AssessmentTypes[slug]; ok {
		return slug, nil
	}
	for id, cfg := range idx.AssessmentTypes {
		if cfg == nil {
			continue
		}
		for _, alias := range cfg.Aliases {
			if strings.EqualFold(alias, nameOrID) {
				return id, nil
			}
		}
	}
	return "", goerr.Wrap(ErrAssessmentNotFound, "no assessment matches", goerr.V("name", nameOrID))
}
