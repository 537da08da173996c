package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/repository/firestore"
	"github.com/secmon-lab/lmx/pkg/repository/fs"
	"github.com/secmon-lab/lmx/pkg/repository/gcs"
	"github.com/secmon-lab/lmx/pkg/repository/memory"
)

func runBlobStoreTest(t *testing.T, newStore func(t *testing.T) interfaces.BlobStore) {
	t.Helper()

	t.Run("Put then Get returns content", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		before := time.Now().Add(-time.Minute)
		gt.NoError(t, store.Put(ctx, "assessments/json/a.json", []byte(`{"a":1}`))).Required()

		data, updatedAt, err := store.Get(ctx, "assessments/json/a.json")
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal(`{"a":1}`)
		gt.B(t, updatedAt.After(before)).True()
	})

	t.Run("Put overwrites", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		gt.NoError(t, store.Put(ctx, "k/v.json", []byte("1"))).Required()
		gt.NoError(t, store.Put(ctx, "k/v.json", []byte("2"))).Required()

		data, _, err := store.Get(ctx, "k/v.json")
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal("2")
	})

	t.Run("Get missing key returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)
		_, _, err := store.Get(context.Background(), "missing/key.json")
		gt.Error(t, err)
		gt.B(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("Create refuses existing key", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		gt.NoError(t, store.Create(ctx, "c/new.json", []byte("first"))).Required()
		err := store.Create(ctx, "c/new.json", []byte("second"))
		gt.Error(t, err)
		gt.B(t, errors.Is(err, model.ErrAlreadyExists)).True()

		data, _, err := store.Get(ctx, "c/new.json")
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal("first")
	})

	t.Run("Delete removes key", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		gt.NoError(t, store.Put(ctx, "d/x.json", []byte("x"))).Required()
		gt.NoError(t, store.Delete(ctx, "d/x.json")).Required()

		_, _, err := store.Get(ctx, "d/x.json")
		gt.B(t, errors.Is(err, model.ErrNotFound)).True()

		err = store.Delete(ctx, "d/x.json")
		gt.B(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("List returns keys under prefix in order", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, k := range []string{"l/b/2.json", "l/b/1.json", "l/c/3.json", "l/bb/4.json"} {
			gt.NoError(t, store.Put(ctx, k, []byte("{}"))).Required()
		}

		keys, err := store.List(ctx, "l/b/")
		gt.NoError(t, err).Required()
		gt.Value(t, keys).Equal([]string{"l/b/1.json", "l/b/2.json"})

		all, err := store.List(ctx, "l/")
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(4)

		none, err := store.List(ctx, "nothing/")
		gt.NoError(t, err).Required()
		gt.Array(t, none).Length(0)
	})
}

func TestMemoryBlobStore(t *testing.T) {
	runBlobStoreTest(t, func(t *testing.T) interfaces.BlobStore {
		return memory.New()
	})
}

func TestFSBlobStore(t *testing.T) {
	runBlobStoreTest(t, func(t *testing.T) interfaces.BlobStore {
		store, err := fs.New(t.TempDir())
		gt.NoError(t, err).Required()
		return store
	})
}

func TestFSBlobStoreFileMode(t *testing.T) {
	root := t.TempDir()
	store, err := fs.New(root)
	gt.NoError(t, err).Required()
	ctx := context.Background()

	mode := func(key string) os.FileMode {
		t.Helper()
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(key)))
		gt.NoError(t, err).Required()
		return info.Mode().Perm()
	}

	t.Run("new files are world readable", func(t *testing.T) {
		gt.NoError(t, store.Put(ctx, "deliverables/qbr-configs.json", []byte("{}"))).Required()
		gt.Value(t, mode("deliverables/qbr-configs.json")).Equal(os.FileMode(0o644))

		gt.NoError(t, store.Create(ctx, "deliverables/json/qbr-report-acme.json", []byte("{}"))).Required()
		gt.Value(t, mode("deliverables/json/qbr-report-acme.json")).Equal(os.FileMode(0o644))
	})

	t.Run("rewrites keep the existing mode", func(t *testing.T) {
		p := filepath.Join(root, "assessments", "assessment-configs.json")
		gt.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755)).Required()
		gt.NoError(t, os.WriteFile(p, []byte("{}"), 0o600)).Required()
		gt.NoError(t, os.Chmod(p, 0o640)).Required()

		gt.NoError(t, store.Put(ctx, "assessments/assessment-configs.json", []byte(`{"assessment_types":{}}`))).Required()
		gt.Value(t, mode("assessments/assessment-configs.json")).Equal(os.FileMode(0o640))
	})
}

func TestFSBlobStoreRejectsTraversal(t *testing.T) {
	store, err := fs.New(t.TempDir())
	gt.NoError(t, err).Required()

	ctx := context.Background()
	for _, key := range []string{"../escape.json", "a/../../b.json", "/abs.json", ""} {
		err := store.Put(ctx, key, []byte("x"))
		gt.B(t, errors.Is(err, model.ErrInvalidKey)).True()
	}
}

func newGCSBlobStore(t *testing.T) interfaces.BlobStore {
	t.Helper()

	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test/%d", time.Now().UnixNano())
	store, err := gcs.New(ctx, bucket, gcs.WithPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		keys, err := store.List(ctx, "")
		gt.NoError(t, err)
		for _, k := range keys {
			gt.NoError(t, store.Delete(ctx, k))
		}
		gt.NoError(t, store.Close())
	})
	return store
}

func TestGCSBlobStore(t *testing.T) {
	runBlobStoreTest(t, newGCSBlobStore)
}

func newFirestoreBlobStore(t *testing.T) interfaces.BlobStore {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	store, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, store.Close())
	})
	return store
}

func TestFirestoreBlobStore(t *testing.T) {
	runBlobStoreTest(t, newFirestoreBlobStore)
}
