package repository

import (
	"context"
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
)

// Storage layout inside the BlobStore
const (
	KeyAssessmentIndex    = "assessments/assessment-configs.json"
	PrefixAssessmentJSON  = "assessments/json/"
	PrefixResults         = "assessments/results/"
	KeyDeliverableIndex   = "deliverables/qbr-configs.json"
	PrefixDeliverableJSON = "deliverables/json/"
	PrefixRendered        = "deliverables/rendered/"
)

// fileKey maps a json_file entry from an index to a key below prefix. Only
// the base name is used, so "data/json/x.json" and "x.json" resolve alike.
func fileKey(prefix, jsonFile string) (string, error) {
	name := path.Base(jsonFile)
	if !types.IsSafeKey(name) {
		return "", goerr.Wrap(model.ErrInvalidKey, "unsafe file name", goerr.V("json_file", jsonFile))
	}
	return prefix + name, nil
}

func resultKey(assessmentID types.AssessmentID, id types.ResultID) (string, error) {
	if !types.IsSafeKey(string(assessmentID)) || !id.IsValid() {
		return "", goerr.Wrap(model.ErrInvalidKey, "invalid result key",
			goerr.V("assessment_id", assessmentID), goerr.V("result_id", id))
	}
	return PrefixResults + string(assessmentID) + "/" + string(id) + ".json", nil
}

func renderedKey(id types.ReportID) (string, error) {
	if !types.IsSafeKey(string(id)) {
		return "", goerr.Wrap(model.ErrInvalidKey, "invalid report id", goerr.V("id", id))
	}
	return PrefixRendered + string(id) + ".json", nil
}

// listNames returns the base names of keys directly below prefix
func listNames(ctx context.Context, store interfaces.BlobStore, prefix string) ([]string, error) {
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list keys", goerr.V("prefix", prefix))
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		name := strings.TrimPrefix(k, prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
