// Package gcs implements a BlobStore on a Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/utils/safe"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.BlobStore = &Store{}

type Option func(*Store)

// WithPrefix stores every key below prefix inside the bucket
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.Trim(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

func New(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	s := &Store{
		client: client,
		bucket: bucket,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) object(key string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.prefix + key)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	r, err := s.object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, time.Time{}, goerr.Wrap(model.ErrNotFound, "blob not found", goerr.V("key", key))
		}
		return nil, time.Time{}, goerr.Wrap(err, "failed to open object", goerr.V("key", key), goerr.V("bucket", s.bucket))
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, time.Time{}, goerr.Wrap(err, "failed to read object", goerr.V("key", key), goerr.V("bucket", s.bucket))
	}
	return data, r.Attrs.LastModified, nil
}

func (s *Store) write(ctx context.Context, obj *storage.ObjectHandle, data []byte) error {
	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		safe.Close(ctx, w)
		return err
	}
	return w.Close()
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := s.write(ctx, s.object(key), data); err != nil {
		return goerr.Wrap(err, "failed to write object", goerr.V("key", key), goerr.V("bucket", s.bucket))
	}
	return nil
}

// Create uses a DoesNotExist precondition so the check and write are atomic
func (s *Store) Create(ctx context.Context, key string, data []byte) error {
	obj := s.object(key).If(storage.Conditions{DoesNotExist: true})
	if err := s.write(ctx, obj, data); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return goerr.Wrap(model.ErrAlreadyExists, "blob already exists", goerr.V("key", key))
		}
		return goerr.Wrap(err, "failed to create object", goerr.V("key", key), goerr.V("bucket", s.bucket))
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return goerr.Wrap(model.ErrNotFound, "blob not found", goerr.V("key", key))
		}
		return goerr.Wrap(err, "failed to delete object", goerr.V("key", key), goerr.V("bucket", s.bucket))
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix + prefix})

	var keys []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list objects", goerr.V("prefix", prefix), goerr.V("bucket", s.bucket))
		}
		keys = append(keys, strings.TrimPrefix(attrs.Name, s.prefix))
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
