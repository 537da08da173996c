package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lmx/pkg/cli/config"
	"github.com/secmon-lab/lmx/pkg/domain/model"
)

func TestRepositoryConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend", func(t *testing.T) {
		repoCfg := config.NewRepositoryForTest(config.BackendMemory, "")
		catalog, err := repoCfg.Configure(ctx)
		gt.NoError(t, err).Required()
		defer catalog.Close()

		gt.Value(t, repoCfg.WatchDir()).Equal("")
		_, err = catalog.Deliverable().GetIndex(ctx)
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("fs backend", func(t *testing.T) {
		dir := t.TempDir()
		repoCfg := config.NewRepositoryForTest(config.BackendFS, dir)
		catalog, err := repoCfg.Configure(ctx)
		gt.NoError(t, err).Required()
		defer catalog.Close()

		gt.Value(t, repoCfg.WatchDir()).Equal(dir)
		gt.NoError(t, catalog.Assessment().CreateTemplate(ctx, "assessment-x-data.json", []byte(`{}`)))
		names, err := catalog.Assessment().ListTemplates(ctx)
		gt.NoError(t, err)
		gt.Value(t, names).Equal([]string{"assessment-x-data.json"})
	})

	t.Run("fs backend requires data dir", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendFS, "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingOption)
	})

	t.Run("gcs backend requires bucket", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendGCS, "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingOption)
	})

	t.Run("firestore backend requires project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendFirestore, "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingOption)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("s3", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidBackend)
	})
}
