package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/domain/model"
)

type entry struct {
	data      []byte
	updatedAt time.Time
}

// Store is an in-memory BlobStore
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	now     func() time.Time
}

var _ interfaces.BlobStore = &Store{}

type Option func(*Store)

// WithClock replaces the clock used for modification times
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, time.Time{}, goerr.Wrap(model.ErrNotFound, "blob not found", goerr.V("key", key))
	}
	return copyBytes(e.data), e.updatedAt, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &entry{data: copyBytes(data), updatedAt: s.now()}
	return nil
}

func (s *Store) Create(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		return goerr.Wrap(model.ErrAlreadyExists, "blob already exists", goerr.V("key", key))
	}
	s.entries[key] = &entry{data: copyBytes(data), updatedAt: s.now()}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return goerr.Wrap(model.ErrNotFound, "blob not found", goerr.V("key", key))
	}
	delete(s.entries, key)
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Close() error {
	return nil
}
