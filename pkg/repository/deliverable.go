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
	"github.com/secmon-lab/lmx/pkg/domain/types"
)

type deliverableRepository struct {
	store interfaces.BlobStore
	mu    sync.Mutex
}

func newDeliverableRepository(store interfaces.BlobStore) *deliverableRepository {
	return &deliverableRepository{store: store}
}

func (r *deliverableRepository) GetIndex(ctx context.Context) (model.QBRConfigIndex, error) {
	data, _, err := r.store.Get(ctx, KeyDeliverableIndex)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read QBR config index")
	}

	idx := model.QBRConfigIndex{}
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, goerr.Wrap(err, "failed to parse QBR config index")
	}
	return idx, nil
}

func (r *deliverableRepository) UpdateIndex(ctx context.Context, fn func(idx model.QBRConfigIndex) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.GetIndex(ctx)
	if errors.Is(err, model.ErrNotFound) {
		idx = model.QBRConfigIndex{}
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
	if err := r.store.Put(ctx, KeyDeliverableIndex, data); err != nil {
		return goerr.Wrap(err, "failed to write QBR config index")
	}
	return nil
}

func (r *deliverableRepository) GetTemplate(ctx context.Context, jsonFile string) ([]byte, time.Time, error) {
	key, err := fileKey(PrefixDeliverableJSON, jsonFile)
	if err != nil {
		return nil, time.Time{}, err
	}
	data, updatedAt, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, time.Time{}, goerr.Wrap(err, "failed to read QBR template", goerr.V("json_file", jsonFile))
	}
	return data, updatedAt, nil
}

func (r *deliverableRepository) CreateTemplate(ctx context.Context, jsonFile string, data []byte) error {
	key, err := fileKey(PrefixDeliverableJSON, jsonFile)
	if err != nil {
		return err
	}
	if err := r.store.Create(ctx, key, data); err != nil {
		return goerr.Wrap(err, "failed to create QBR template", goerr.V("json_file", jsonFile))
	}
	return nil
}

func (r *deliverableRepository) DeleteTemplate(ctx context.Context, jsonFile string) error {
	key, err := fileKey(PrefixDeliverableJSON, jsonFile)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, key); err != nil {
		return goerr.Wrap(err, "failed to delete QBR template", goerr.V("json_file", jsonFile))
	}
	return nil
}

func (r *deliverableRepository) GetRendered(ctx context.Context, id types.ReportID) ([]byte, time.Time, error) {
	key, err := renderedKey(id)
	if err != nil {
		return nil, time.Time{}, err
	}
	data, updatedAt, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, time.Time{}, goerr.Wrap(err, "failed to read rendered report", goerr.V("id", id))
	}
	return data, updatedAt, nil
}

func (r *deliverableRepository) PutRendered(ctx context.Context, id types.ReportID, data []byte) error {
	key, err := renderedKey(id)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, key, data); err != nil {
		return goerr.Wrap(err, "failed to write rendered report", goerr.V("id", id))
	}
	return nil
}

func (r *deliverableRepository) DeleteRendered(ctx context.Context, id types.ReportID) error {
	key, err := renderedKey(id)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, key); err != nil {
		return goerr.Wrap(err, "failed to delete rendered report", goerr.V("id", id))
	}
	return nil
}

func (r *deliverableRepository) ListTemplates(ctx context.Context) ([]string, error) {
	return listNames(ctx, r.store, PrefixDeliverableJSON)
}
