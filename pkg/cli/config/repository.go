package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/repository"
	"github.com/secmon-lab/lmx/pkg/repository/firestore"
	"github.com/secmon-lab/lmx/pkg/repository/fs"
	"github.com/secmon-lab/lmx/pkg/repository/gcs"
	"github.com/secmon-lab/lmx/pkg/repository/memory"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	BackendFS        = "fs"
	BackendMemory    = "memory"
	BackendGCS       = "gcs"
	BackendFirestore = "firestore"
)

// Repository holds CLI flags for the catalog storage backend
type Repository struct {
	backend          string
	dataDir          string
	gcsBucket        string
	gcsPrefix        string
	projectID        string
	databaseID       string
	collectionPrefix string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (fs, memory, gcs or firestore)",
			Category:    "Storage",
			Value:       BackendFS,
			Sources:     cli.EnvVars("LMX_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Root directory of the catalog (fs backend)",
			Category:    "Storage",
			Value:       "./data",
			Sources:     cli.EnvVars("LMX_DATA_DIR"),
			Destination: &r.dataDir,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "GCS bucket name (required when using gcs backend)",
			Category:    "Storage",
			Sources:     cli.EnvVars("LMX_GCS_BUCKET"),
			Destination: &r.gcsBucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix inside the GCS bucket",
			Category:    "Storage",
			Sources:     cli.EnvVars("LMX_GCS_PREFIX"),
			Destination: &r.gcsPrefix,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Storage",
			Sources:     cli.EnvVars("LMX_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Storage",
			Sources:     cli.EnvVars("LMX_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix of the Firestore collection holding the catalog",
			Category:    "Storage",
			Sources:     cli.EnvVars("LMX_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("data_dir", r.dataDir),
		slog.String("gcs_bucket", r.gcsBucket),
		slog.String("firestore_project_id", r.projectID),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// WatchDir returns the local data directory when the catalog lives on the
// local filesystem, and "" otherwise
func (r *Repository) WatchDir() string {
	if r.backend != BackendFS {
		return ""
	}
	return r.dataDir
}

func (r *Repository) newStore(ctx context.Context) (interfaces.BlobStore, error) {
	switch r.backend {
	case BackendFS:
		if r.dataDir == "" {
			return nil, goerr.Wrap(ErrMissingOption, "data-dir is required when using fs backend", goerr.V(FlagKey, "data-dir"))
		}
		store, err := fs.New(r.dataDir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize fs repository")
		}
		logging.Default().Info("Using local filesystem repository", "data_dir", r.dataDir)
		return store, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	case BackendGCS:
		if r.gcsBucket == "" {
			return nil, goerr.Wrap(ErrMissingOption, "gcs-bucket is required when using gcs backend", goerr.V(FlagKey, "gcs-bucket"))
		}
		store, err := gcs.New(ctx, r.gcsBucket, gcs.WithPrefix(r.gcsPrefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize gcs repository")
		}
		logging.Default().Info("Using GCS repository", "bucket", r.gcsBucket, "prefix", r.gcsPrefix)
		return store, nil

	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingOption, "firestore-project-id is required when using firestore backend", goerr.V(FlagKey, "firestore-project-id"))
		}
		store, err := firestore.New(ctx, r.projectID, r.databaseID, firestore.WithCollectionPrefix(r.collectionPrefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return store, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid repository backend", goerr.V("backend", r.backend))
	}
}

// Configure initializes and returns the catalog on the configured backend.
// The caller is responsible for calling Close() on the returned catalog.
func (r *Repository) Configure(ctx context.Context) (*repository.Catalog, error) {
	store, err := r.newStore(ctx)
	if err != nil {
		return nil, err
	}
	return repository.New(store), nil
}
