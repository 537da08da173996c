// Package firestore implements a BlobStore on a Firestore collection. Each
// key is one document whose ID is the path-escaped key.
package firestore

import (
	"context"
	"net/url"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type blobDocument struct {
	Key       string    `firestore:"key"`
	Data      string    `firestore:"data"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.BlobStore = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

// New connects to databaseID of projectID. An empty databaseID selects the
// default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = "(default)"
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Firestore) blobsCollection() string {
	if f.collectionPrefix != "" {
		return f.collectionPrefix + "_blobs"
	}
	return "blobs"
}

func (f *Firestore) doc(key string) *firestore.DocumentRef {
	return f.client.Collection(f.blobsCollection()).Doc(url.PathEscape(key))
}

func (f *Firestore) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	snap, err := f.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, time.Time{}, goerr.Wrap(model.ErrNotFound, "blob not found", goerr.V("key", key))
		}
		return nil, time.Time{}, goerr.Wrap(err, "failed to get blob", goerr.V("key", key))
	}

	var doc blobDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, time.Time{}, goerr.Wrap(err, "failed to unmarshal blob", goerr.V("key", key))
	}
	return []byte(doc.Data), doc.UpdatedAt, nil
}

func (f *Firestore) Put(ctx context.Context, key string, data []byte) error {
	doc := &blobDocument{Key: key, Data: string(data), UpdatedAt: time.Now().UTC()}
	if _, err := f.doc(key).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put blob", goerr.V("key", key))
	}
	return nil
}

func (f *Firestore) Create(ctx context.Context, key string, data []byte) error {
	doc := &blobDocument{Key: key, Data: string(data), UpdatedAt: time.Now().UTC()}
	if _, err := f.doc(key).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(model.ErrAlreadyExists, "blob already exists", goerr.V("key", key))
		}
		return goerr.Wrap(err, "failed to create blob", goerr.V("key", key))
	}
	return nil
}

func (f *Firestore) Delete(ctx context.Context, key string) error {
	if _, err := f.doc(key).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "blob not found", goerr.V("key", key))
		}
		return goerr.Wrap(err, "failed to delete blob", goerr.V("key", key))
	}
	return nil
}

// List runs a range query on the key field, which needs only the automatic
// single-field index
func (f *Firestore) List(ctx context.Context, prefix string) ([]string, error) {
	q := f.client.Collection(f.blobsCollection()).
		Where("key", ">=", prefix).
		Where("key", "<", prefix+"\uf8ff").
		OrderBy("key", firestore.Asc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var keys []string
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate blobs", goerr.V("prefix", prefix))
		}

		var doc blobDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal blob", goerr.V("id", snap.Ref.ID))
		}
		keys = append(keys, doc.Key)
	}
	return keys, nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
