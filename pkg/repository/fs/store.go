// Package fs implements a BlobStore on a local directory tree.
package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/utils/safe"
)

const (
	tempPrefix = ".lmx-tmp-"

	// filePerm is the mode of newly created data files
	filePerm iofs.FileMode = 0o644
)

// Store keeps each key as a file below root
type Store struct {
	root string
}

var _ interfaces.BlobStore = &Store{}

// New creates root when it does not exist
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve data directory", goerr.V("root", root))
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("root", abs))
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute data directory
func (s *Store) Root() string {
	return s.root
}

func (s *Store) filePath(key string) (string, error) {
	cleaned := path.Clean("/" + key)
	if cleaned == "/" || cleaned != "/"+key {
		return "", goerr.Wrap(model.ErrInvalidKey, "key is not a clean relative path", goerr.V("key", key))
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	p, err := s.filePath(key)
	if err != nil {
		return nil, time.Time{}, err
	}

	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, time.Time{}, goerr.Wrap(model.ErrNotFound, "blob not found", goerr.V("key", key))
		}
		return nil, time.Time{}, goerr.Wrap(err, "failed to stat blob", goerr.V("key", key))
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, time.Time{}, goerr.Wrap(err, "failed to read blob", goerr.V("key", key))
	}
	return data, info.ModTime(), nil
}

// writeTemp writes data to a hidden file next to p with mode perm and
// returns its name
func writeTemp(ctx context.Context, p string, data []byte, perm iofs.FileMode) (string, error) {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create directory", goerr.V("dir", dir))
	}

	f, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return "", goerr.Wrap(err, "failed to create temp file", goerr.V("dir", dir))
	}
	if _, err := f.Write(data); err != nil {
		safe.Close(ctx, f)
		safe.Remove(ctx, f.Name())
		return "", goerr.Wrap(err, "failed to write temp file", goerr.V("path", f.Name()))
	}
	// CreateTemp always uses 0600
	if err := f.Chmod(perm); err != nil {
		safe.Close(ctx, f)
		safe.Remove(ctx, f.Name())
		return "", goerr.Wrap(err, "failed to set temp file mode", goerr.V("path", f.Name()))
	}
	if err := f.Close(); err != nil {
		safe.Remove(ctx, f.Name())
		return "", goerr.Wrap(err, "failed to close temp file", goerr.V("path", f.Name()))
	}
	return f.Name(), nil
}

// Put replaces the file atomically with a rename. An existing file keeps its
// permission bits.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	p, err := s.filePath(key)
	if err != nil {
		return err
	}

	perm := filePerm
	if info, err := os.Stat(p); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := writeTemp(ctx, p, data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		safe.Remove(ctx, tmp)
		return goerr.Wrap(err, "failed to replace blob", goerr.V("key", key))
	}
	return nil
}

// Create publishes the file with a hard link, which fails when the target exists
func (s *Store) Create(ctx context.Context, key string, data []byte) error {
	p, err := s.filePath(key)
	if err != nil {
		return err
	}

	tmp, err := writeTemp(ctx, p, data, filePerm)
	if err != nil {
		return err
	}
	defer safe.Remove(ctx, tmp)

	if err := os.Link(tmp, p); err != nil {
		if errors.Is(err, iofs.ErrExist) {
			return goerr.Wrap(model.ErrAlreadyExists, "blob already exists", goerr.V("key", key))
		}
		return goerr.Wrap(err, "failed to create blob", goerr.V("key", key))
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	p, err := s.filePath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return goerr.Wrap(model.ErrNotFound, "blob not found", goerr.V("key", key))
		}
		return goerr.Wrap(err, "failed to delete blob", goerr.V("key", key))
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	pattern := "**"
	if i := strings.LastIndex(prefix, "/"); i > 0 {
		pattern = prefix[:i] + "/**"
	}

	matches, err := doublestar.Glob(os.DirFS(s.root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list blobs", goerr.V("prefix", prefix))
	}

	var keys []string
	for _, m := range matches {
		if !strings.HasPrefix(m, prefix) || strings.HasPrefix(path.Base(m), tempPrefix) {
			continue
		}
		keys = append(keys, m)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Close() error {
	return nil
}
