package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/utils/placeholder"
)

const (
	assessmentTemplatePattern = "assessment-*-data.json"
	reportTemplatePattern     = "*.json"
)

// ValidationIssue represents a single inconsistency between a config index
// and the stored template files
type ValidationIssue struct {
	Catalog  string
	ID       string
	JSONFile string
	Message  string
}

// ValidationResult holds the results of catalog validation
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// AddIssue adds a validation issue to the result
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// Validate checks that every indexed assessment and report has a parseable
// template, and reports template files no index entry refers to. It does
// NOT modify any data.
func Validate(ctx context.Context, repo interfaces.Repository) (*ValidationResult, error) {
	result := &ValidationResult{}
	if err := validateAssessments(ctx, repo, result); err != nil {
		return nil, err
	}
	if err := validateReports(ctx, repo, result); err != nil {
		return nil, err
	}
	sort.SliceStable(result.Issues, func(i, j int) bool {
		a, b := result.Issues[i], result.Issues[j]
		if a.Catalog != b.Catalog {
			return a.Catalog < b.Catalog
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.JSONFile < b.JSONFile
	})
	return result, nil
}

// Validate runs the catalog consistency check against the configured repository
func (uc *UseCases) Validate(ctx context.Context) (*ValidationResult, error) {
	return Validate(ctx, uc.repo)
}

func validateAssessments(ctx context.Context, repo interfaces.Repository, result *ValidationResult) error {
	const catalog = "assessment"

	referenced := map[string]struct{}{}
	idx, err := repo.Assessment().GetIndex(ctx)
	switch {
	case errors.Is(err, model.ErrNotFound):
		idx = model.NewAssessmentConfigIndex()
	case err != nil:
		return goerr.Wrap(err, "failed to load assessment index")
	}

	for id, cfg := range idx.AssessmentTypes {
		if cfg == nil || cfg.JSONFile == "" {
			result.AddIssue(ValidationIssue{Catalog: catalog, ID: string(id), Message: "index entry has no json_file"})
			continue
		}
		referenced[path.Base(cfg.JSONFile)] = struct{}{}

		data, _, err := repo.Assessment().GetTemplate(ctx, cfg.JSONFile)
		if err != nil {
			result.AddIssue(ValidationIssue{Catalog: catalog, ID: string(id), JSONFile: cfg.JSONFile, Message: templateReadMessage(err)})
			continue
		}

		var doc model.AssessmentDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			result.AddIssue(ValidationIssue{Catalog: catalog, ID: string(id), JSONFile: cfg.JSONFile, Message: "template does not parse: " + err.Error()})
			continue
		}
		if err := doc.Template.Validate(); err != nil {
			result.AddIssue(ValidationIssue{Catalog: catalog, ID: string(id), JSONFile: cfg.JSONFile, Message: err.Error()})
		}
	}

	names, err := repo.Assessment().ListTemplates(ctx)
	if err != nil {
		return err
	}
	reportOrphans(catalog, assessmentTemplatePattern, names, referenced, result)
	return nil
}

func validateReports(ctx context.Context, repo interfaces.Repository, result *ValidationResult) error {
	const catalog = "qbr"

	referenced := map[string]struct{}{}
	idx, err := repo.Deliverable().GetIndex(ctx)
	switch {
	case errors.Is(err, model.ErrNotFound):
		idx = model.QBRConfigIndex{}
	case err != nil:
		return goerr.Wrap(err, "failed to load QBR index")
	}

	for id, cfg := range idx {
		if cfg == nil || cfg.JSONFile == "" {
			result.AddIssue(ValidationIssue{Catalog: catalog, ID: string(id), Message: "index entry has no json_file"})
			continue
		}
		referenced[path.Base(cfg.JSONFile)] = struct{}{}

		data, _, err := repo.Deliverable().GetTemplate(ctx, cfg.JSONFile)
		if err != nil {
			result.AddIssue(ValidationIssue{Catalog: catalog, ID: string(id), JSONFile: cfg.JSONFile, Message: templateReadMessage(err)})
			continue
		}

		var doc map[string]any
		if err := placeholder.Decode(data, &doc); err != nil {
			result.AddIssue(ValidationIssue{Catalog: catalog, ID: string(id), JSONFile: cfg.JSONFile, Message: "template is not a JSON object"})
		}
	}

	names, err := repo.Deliverable().ListTemplates(ctx)
	if err != nil {
		return err
	}
	reportOrphans(catalog, reportTemplatePattern, names, referenced, result)
	return nil
}

func templateReadMessage(err error) string {
	if errors.Is(err, model.ErrNotFound) {
		return "template file is missing"
	}
	if errors.Is(err, model.ErrInvalidKey) {
		return "json_file is not a safe file name"
	}
	return "failed to read template: " + err.Error()
}

// reportOrphans flags stored templates matching pattern that no index entry
// refers to
func reportOrphans(catalog, pattern string, names []string, referenced map[string]struct{}, result *ValidationResult) {
	for _, name := range names {
		if ok, _ := doublestar.Match(pattern, name); !ok {
			continue
		}
		if _, ok := referenced[name]; ok {
			continue
		}
		result.AddIssue(ValidationIssue{Catalog: catalog, JSONFile: name, Message: "template is not registered in the index"})
	}
}
