package repository

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
)

type resultRepository struct {
	store interfaces.BlobStore
}

func newResultRepository(store interfaces.BlobStore) *resultRepository {
	return &resultRepository{store: store}
}

func (r *resultRepository) Put(ctx context.Context, result *model.AssessmentResult) error {
	key, err := resultKey(result.AssessmentID, result.ID)
	if err != nil {
		return err
	}

	data, err := EncodeJSON(result)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, key, data); err != nil {
		return goerr.Wrap(err, "failed to put assessment result", goerr.V("id", result.ID))
	}
	return nil
}

func (r *resultRepository) get(ctx context.Context, key string) (*model.AssessmentResult, error) {
	data, _, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get assessment result", goerr.V("key", key))
	}

	var result model.AssessmentResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal assessment result", goerr.V("key", key))
	}
	return &result, nil
}

func (r *resultRepository) Get(ctx context.Context, assessmentID types.AssessmentID, id types.ResultID) (*model.AssessmentResult, error) {
	key, err := resultKey(assessmentID, id)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, key)
}

func (r *resultRepository) List(ctx context.Context, assessmentID types.AssessmentID) ([]*model.AssessmentResult, error) {
	if !types.IsSafeKey(string(assessmentID)) {
		return nil, goerr.Wrap(model.ErrInvalidKey, "invalid assessment id", goerr.V("assessment_id", assessmentID))
	}

	keys, err := r.store.List(ctx, PrefixResults+string(assessmentID)+"/")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assessment results", goerr.V("assessment_id", assessmentID))
	}

	results := make([]*model.AssessmentResult, 0, len(keys))
	for _, key := range keys {
		result, err := r.get(ctx, key)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}
