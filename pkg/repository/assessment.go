package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/domain/model"
)

type assessmentRepository struct {
	store interfaces.BlobStore
	mu    sync.Mutex
}

func newAssessmentRepository(store interfaces.BlobStore) *assessmentRepository {
	return &assessmentRepository{store: store}
}

func (r *assessmentRepository) GetIndex(ctx context.Context) (*model.AssessmentConfigIndex, error) {
	data, _, err := r.store.Get(ctx, KeyAssessmentIndex)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read assessment config index")
	}

	idx := model.NewAssessmentConfigIndex()
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, goerr.Wrap(err, "failed to parse assessment config index")
	}
	if idx.AssessmentTypes == nil {
		idx.AssessmentTypes = model.NewAssessmentConfigIndex().AssessmentTypes
	}
	return idx, nil
}

func (r *assessmentRepository) UpdateIndex(ctx context.Context, fn func(idx *model.AssessmentConfigIndex) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.GetIndex(ctx)
	if errors.Is(err, model.ErrNotFound) {
		idx = model.NewAssessmentConfigIndex()
	} else if err != nil {
		return err
	}

	if err := fn(idx); err != nil {
		return err
	}

	data, err := EncodeJSON(idx)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, KeyAssessmentIndex, data); err != nil {
		return goerr.Wrap(err, "failed to write assessment config index")
	}
	return nil
}

func (r *assessmentRepository) GetTemplate(ctx context.Context, jsonFile string) ([]byte, time.Time, error) {
	key, err := fileKey(PrefixAssessmentJSON, jsonFile)
	if err != nil {
		return nil, time.Time{}, err
	}
	data, updatedAt, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, time.Time{}, goerr.Wrap(err, "failed to read assessment template", goerr.V("json_file", jsonFile))
	}
	return data, updatedAt, nil
}

func (r *assessmentRepository) CreateTemplate(ctx context.Context, jsonFile string, data []byte) error {
	key, err := fileKey(PrefixAssessmentJSON, jsonFile)
	if err != nil {
		return err
	}
	if err := r.store.Create(ctx, key, data); err != nil {
		return goerr.Wrap(err, "failed to create assessment template", goerr.V("json_file", jsonFile))
	}
	return nil
}

func (r *assessmentRepository) DeleteTemplate(ctx context.Context, jsonFile string) error {
	key, err := fileKey(PrefixAssessmentJSON, jsonFile)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, key); err != nil {
		return goerr.Wrap(err, "failed to delete assessment template", goerr.V("json_file", jsonFile))
	}
	return nil
}

func (r *assessmentRepository) ListTemplates(ctx context.Context) ([]string, error) {
	return listNames(ctx, r.store, PrefixAssessmentJSON)
}
