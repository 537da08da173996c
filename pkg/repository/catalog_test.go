package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/secmon-lab/lmx/pkg/repository"
	"github.com/secmon-lab/lmx/pkg/repository/fs"
	"github.com/secmon-lab/lmx/pkg/repository/memory"
)

func runCatalogTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("assessment index is missing until first update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Assessment().GetIndex(ctx)
		gt.B(t, errors.Is(err, model.ErrNotFound)).True()

		err = repo.Assessment().UpdateIndex(ctx, func(idx *model.AssessmentConfigIndex) error {
			idx.AssessmentTypes["coffee"] = model.NewAssessmentConfig("coffee", "Coffee", time.Unix(100, 0))
			return nil
		})
		gt.NoError(t, err).Required()

		idx, err := repo.Assessment().GetIndex(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, idx.AssessmentTypes["coffee"].JSONFile).Equal("assessment-coffee-data.json")
	})

	t.Run("failed update leaves index untouched", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Deliverable().UpdateIndex(ctx, func(idx model.QBRConfigIndex) error {
			idx["a"] = &model.QBRConfig{ID: "a", JSONFile: "a.json"}
			return nil
		})).Required()

		boom := errors.New("boom")
		err := repo.Deliverable().UpdateIndex(ctx, func(idx model.QBRConfigIndex) error {
			delete(idx, "a")
			return boom
		})
		gt.B(t, errors.Is(err, boom)).True()

		idx, err := repo.Deliverable().GetIndex(ctx)
		gt.NoError(t, err).Required()
		gt.Map(t, idx).HasKey("a")
	})

	t.Run("concurrent index updates are serialized", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		ids := []types.ReportID{"r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8"}
		for _, id := range ids {
			wg.Add(1)
			go func(id types.ReportID) {
				defer wg.Done()
				err := repo.Deliverable().UpdateIndex(ctx, func(idx model.QBRConfigIndex) error {
					idx[id] = &model.QBRConfig{ID: id, JSONFile: model.QBRFileName(id)}
					return nil
				})
				gt.NoError(t, err)
			}(id)
		}
		wg.Wait()

		idx, err := repo.Deliverable().GetIndex(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, len(idx)).Equal(len(ids))
	})

	t.Run("templates resolve by base name", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Assessment().CreateTemplate(ctx, "assessment-x-data.json", []byte(`{}`))).Required()

		data, _, err := repo.Assessment().GetTemplate(ctx, "src/data/json/assessment-x-data.json")
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal(`{}`)

		err = repo.Assessment().CreateTemplate(ctx, "assessment-x-data.json", []byte(`{}`))
		gt.B(t, errors.Is(err, model.ErrAlreadyExists)).True()

		gt.NoError(t, repo.Assessment().DeleteTemplate(ctx, "assessment-x-data.json")).Required()
		_, _, err = repo.Assessment().GetTemplate(ctx, "assessment-x-data.json")
		gt.B(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("unsafe file names are rejected", func(t *testing.T) {
		repo := newRepo(t)
		_, _, err := repo.Deliverable().GetTemplate(context.Background(), "..")
		gt.B(t, errors.Is(err, model.ErrInvalidKey)).True()
	})

	t.Run("rendered reports round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, _, err := repo.Deliverable().GetRendered(ctx, "qbr-report-cork")
		gt.B(t, errors.Is(err, model.ErrNotFound)).True()

		gt.NoError(t, repo.Deliverable().PutRendered(ctx, "qbr-report-cork", []byte(`{"r":1}`))).Required()
		data, _, err := repo.Deliverable().GetRendered(ctx, "qbr-report-cork")
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal(`{"r":1}`)

		gt.NoError(t, repo.Deliverable().DeleteRendered(ctx, "qbr-report-cork")).Required()
	})

	t.Run("results are listed newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
		var ids []types.ResultID
		for i := range 3 {
			r := &model.AssessmentResult{
				ID:           types.NewResultID(),
				AssessmentID: "coffee",
				Answers:      model.AnswerSheet{"q": types.ScoringLabelSatisfactory},
				Report:       &model.AssessmentReport{},
				CreatedAt:    base.Add(time.Duration(i) * time.Hour),
			}
			ids = append(ids, r.ID)
			gt.NoError(t, repo.Result().Put(ctx, r)).Required()
		}

		other := &model.AssessmentResult{ID: types.NewResultID(), AssessmentID: "coffee-2", CreatedAt: base}
		gt.NoError(t, repo.Result().Put(ctx, other)).Required()

		results, err := repo.Result().List(ctx, "coffee")
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(3)
		gt.Value(t, results[0].ID).Equal(ids[2])
		gt.Value(t, results[2].ID).Equal(ids[0])

		got, err := repo.Result().Get(ctx, "coffee", ids[1])
		gt.NoError(t, err).Required()
		gt.Value(t, got.Answers["q"]).Equal(types.ScoringLabelSatisfactory)

		_, err = repo.Result().Get(ctx, "coffee", types.NewResultID())
		gt.B(t, errors.Is(err, model.ErrNotFound)).True()

		_, err = repo.Result().Get(ctx, "coffee", "not-a-uuid")
		gt.B(t, errors.Is(err, model.ErrInvalidKey)).True()
	})
}

func TestMemoryCatalog(t *testing.T) {
	runCatalogTest(t, func(t *testing.T) interfaces.Repository {
		return repository.New(memory.New())
	})
}

func TestFSCatalog(t *testing.T) {
	runCatalogTest(t, func(t *testing.T) interfaces.Repository {
		store, err := fs.New(t.TempDir())
		gt.NoError(t, err).Required()
		return repository.New(store)
	})
}

func TestFirestoreCatalog(t *testing.T) {
	runCatalogTest(t, func(t *testing.T) interfaces.Repository {
		return repository.New(newFirestoreBlobStore(t))
	})
}

func TestEncodeJSONKeepsAmpersand(t *testing.T) {
	data, err := repository.EncodeJSON(map[string]string{"title": "Policies & Procedures"})
	gt.NoError(t, err).Required()
	gt.String(t, string(data)).Contains("Policies & Procedures")
}
