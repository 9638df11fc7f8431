package paths

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/meghashyamc/wordindex/db/kvdb"
	"github.com/meghashyamc/wordindex/logger"
	"github.com/meghashyamc/wordindex/services/index"
)

var (
	ErrPathExists   = errors.New("path is already watched")
	ErrPathNotFound = errors.New("path is not watched")
)

// Store is the key-value storage holding watched paths.
type Store interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
	GetAllKeys(bucket string) ([]string, error)
}

// Indexer runs one index pass over a root.
type Indexer interface {
	Index(ctx context.Context, root string) (*index.Summary, error)
}

type Service struct {
	logger  logger.Logger
	store   Store
	indexer Indexer
}

// Result is the outcome of reindexing one watched path.
type Result struct {
	Path    string         `json:"path"`
	Summary *index.Summary `json:"summary,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func New(logger logger.Logger, store Store, indexer Indexer) *Service {
	return &Service{
		logger:  logger,
		store:   store,
		indexer: indexer,
	}
}

// Save adds path to the watched paths. The path is stored in absolute, cleaned form.
func (s *Service) Save(path string) (string, error) {
	canonical, err := canonicalPath(path)
	if err != nil {
		return "", err
	}

	_, err = s.store.Get(kvdb.PathsBucket, canonical)
	switch {
	case err == nil:
		return "", fmt.Errorf("%w: %s", ErrPathExists, canonical)
	case !errors.Is(err, kvdb.ErrNotFound):
		s.logger.Error("could not look up watched path", "path", canonical, "err", err.Error())
		return "", err
	}

	if err := s.store.Set(kvdb.PathsBucket, canonical, time.Now().UTC().Format(time.RFC3339)); err != nil {
		s.logger.Error("could not save watched path", "path", canonical, "err", err.Error())
		return "", err
	}
	s.logger.Info("watching path", "path", canonical)

	return canonical, nil
}

// List returns the watched paths in lexical order.
func (s *Service) List() ([]string, error) {
	keys, err := s.store.GetAllKeys(kvdb.PathsBucket)
	if err != nil {
		s.logger.Error("could not list watched paths", "err", err.Error())
		return nil, err
	}
	sort.Strings(keys)

	return keys, nil
}

func (s *Service) Remove(path string) error {
	canonical, err := canonicalPath(path)
	if err != nil {
		return err
	}

	if _, err := s.store.Get(kvdb.PathsBucket, canonical); err != nil {
		if errors.Is(err, kvdb.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrPathNotFound, canonical)
		}
		return err
	}

	if err := s.store.Delete(kvdb.PathsBucket, canonical); err != nil {
		s.logger.Error("could not remove watched path", "path", canonical, "err", err.Error())
		return err
	}
	s.logger.Info("stopped watching path", "path", canonical)

	return nil
}

// ReindexAll indexes every watched path in turn. A path that fails is recorded in its
// Result and does not stop the others.
func (s *Service) ReindexAll(ctx context.Context) ([]Result, error) {
	watched, err := s.List()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(watched))
	for _, path := range watched {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		summary, err := s.indexer.Index(ctx, path)
		result := Result{Path: path, Summary: summary}
		if err != nil {
			s.logger.Error("could not reindex watched path", "path", path, "err", err.Error())
			result.Error = err.Error()
		}
		results = append(results, result)
	}

	return results, nil
}

func canonicalPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	canonical, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("could not resolve %s: %w", path, err)
	}

	return canonical, nil
}
