package searchdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/gofrs/flock"
	"github.com/meghashyamc/wordindex/logger"
)

const (
	DefaultCommitEvery = 100
	defaultLimit       = 20
	idsPageSize        = 1000
)

type Options struct {
	// Path is the index directory. Empty means an in-memory index.
	Path           string
	MaxTokenLength int
	CommitEvery    int
}

// BleveDB owns one bleve index. Any number of searches may run concurrently with the
// single writer handed out by NewWriter.
type BleveDB struct {
	indexPath    string
	logger       logger.Logger
	index        bleve.Index
	lock         *flock.Flock
	commitEvery  int
	writerActive atomic.Bool

	mu     sync.RWMutex
	closed bool
}

// Open opens the index at opts.Path, creating it if it does not exist yet.
func Open(logger logger.Logger, opts Options) (*BleveDB, error) {
	indexMapping, err := createIndexMapping(opts.MaxTokenLength)
	if err != nil {
		logger.Error("could not create index mapping", "err", err.Error())
		return nil, &Error{Kind: ErrOpenIndex, Op: "open", Path: opts.Path, Err: err}
	}

	commitEvery := opts.CommitEvery
	if commitEvery <= 0 {
		commitEvery = DefaultCommitEvery
	}

	db := &BleveDB{indexPath: opts.Path, logger: logger, commitEvery: commitEvery}

	if opts.Path == "" {
		db.index, err = bleve.NewMemOnly(indexMapping)
		if err != nil {
			logger.Error("could not create in-memory index", "err", err.Error())
			return nil, &Error{Kind: ErrOpenIndex, Op: "open", Err: err}
		}
		return db, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		logger.Error("could not create index parent directory", "path", opts.Path, "err", err.Error())
		return nil, &Error{Kind: ErrOpenIndex, Op: "open", Path: opts.Path, Err: err}
	}

	// bleve's own storage lock blocks forever when another process holds it,
	// so take a non-blocking lock next to the index first.
	db.lock = flock.New(opts.Path + ".lock")
	locked, err := db.lock.TryLock()
	if err != nil {
		logger.Error("could not lock index", "path", opts.Path, "err", err.Error())
		return nil, &Error{Kind: ErrOpenIndex, Op: "lock", Path: opts.Path, Err: err}
	}
	if !locked {
		logger.Warn("index is locked by another process", "path", opts.Path)
		return nil, &Error{Kind: ErrIndexLocked, Op: "lock", Path: opts.Path}
	}

	index, err := bleve.Open(opts.Path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		logger.Info("creating new index", "path", opts.Path)
		index, err = bleve.New(opts.Path, indexMapping)
	}
	if err != nil {
		logger.Error("could not open index", "path", opts.Path, "err", err.Error())
		db.lock.Unlock()
		return nil, &Error{Kind: ErrOpenIndex, Op: "open", Path: opts.Path, Err: err}
	}
	db.index = index

	return db, nil
}

// IsCurrent reports whether the index holds a document with this id and timestamp,
// i.e. whether the file is unchanged since it was last indexed.
func (b *BleveDB) IsCurrent(ctx context.Context, id string, timestamp int64) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return false, &Error{Kind: ErrIndexClosed, Op: "staleness check"}
	}

	searchRequest := bleve.NewSearchRequestOptions(stalenessQuery(id, timestamp), 1, 0, false)
	searchResult, err := b.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		b.logger.Error("staleness check failed", "id", id, "err", err.Error())
		return false, &Error{Kind: ErrSearch, Op: "staleness check", Err: err}
	}

	return searchResult.Total > 0, nil
}

// Search runs q against a single index snapshot, so the page and the total always agree.
func (b *BleveDB) Search(ctx context.Context, q Query) (*Response, error) {
	start := time.Now()

	searchQuery, sortOrder, err := buildSearchQuery(q)
	if err != nil {
		b.logger.Warn("could not parse query", "keyword", q.Keyword, "classes", q.Classes, "err", err.Error())
		return nil, &Error{Kind: ErrQueryParse, Op: "search", Err: err}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	offset := max(0, q.Offset)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, offset, false)
	searchRequest.Fields = []string{indexFieldName, indexFieldContent, indexFieldPath}
	searchRequest.SortBy(sortOrder)

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, &Error{Kind: ErrIndexClosed, Op: "search"}
	}

	searchResult, err := b.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		b.logger.Error("search failed", "err", err.Error())
		return nil, &Error{Kind: ErrSearch, Op: "search", Err: err}
	}

	results := make([]Result, len(searchResult.Hits))
	for i, hit := range searchResult.Hits {
		result := Result{}
		if name, ok := hit.Fields[indexFieldName].(string); ok {
			result.Name = name
		}
		if content, ok := hit.Fields[indexFieldContent].(string); ok {
			result.Content = content
		}
		if path, ok := hit.Fields[indexFieldPath].(string); ok {
			result.Path = path
		}
		results[i] = result
	}

	return &Response{
		Results:    results,
		Total:      searchResult.Total,
		SearchTime: time.Since(start).String(),
	}, nil
}

// DocumentsUnder returns the id and path of every document whose path is root or
// lies below it.
func (b *BleveDB) DocumentsUnder(ctx context.Context, root string) ([]Located, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, &Error{Kind: ErrIndexClosed, Op: "list ids", Path: root}
	}

	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	exactQuery := bleve.NewTermQuery(root)
	exactQuery.SetField(indexFieldPath)
	prefixQuery := bleve.NewPrefixQuery(prefix)
	prefixQuery.SetField(indexFieldPath)
	underRoot := bleve.NewDisjunctionQuery(exactQuery, prefixQuery)

	var docs []Located
	for offset := 0; ; offset += idsPageSize {
		searchRequest := bleve.NewSearchRequestOptions(underRoot, idsPageSize, offset, false)
		searchRequest.Fields = []string{indexFieldPath}
		searchRequest.SortBy([]string{"_id"})

		searchResult, err := b.index.SearchInContext(ctx, searchRequest)
		if err != nil {
			b.logger.Error("could not list documents under root", "path", root, "err", err.Error())
			return nil, &Error{Kind: ErrSearch, Op: "list ids", Path: root, Err: err}
		}
		for _, hit := range searchResult.Hits {
			path, _ := hit.Fields[indexFieldPath].(string)
			docs = append(docs, Located{ID: hit.ID, Path: path})
		}
		if len(searchResult.Hits) < idsPageSize {
			return docs, nil
		}
	}
}

func (b *BleveDB) DocCount() (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0, &Error{Kind: ErrIndexClosed, Op: "count"}
	}

	return b.index.DocCount()
}

func (b *BleveDB) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var closeErr error
	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			closeErr = fmt.Errorf("could not close search index: %w", err)
		}
	}
	if b.lock != nil {
		if err := b.lock.Unlock(); err != nil {
			b.logger.Error("could not release index lock", "path", b.indexPath, "err", err.Error())
			closeErr = errors.Join(closeErr, err)
		}
	}

	return closeErr
}

// commit applies a batch. Readers opened after it returns see every write in it.
func (b *BleveDB) commit(batch *bleve.Batch) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return &Error{Kind: ErrIndexClosed, Op: "commit"}
	}

	if err := b.index.Batch(batch); err != nil {
		b.logger.Error("could not commit batch", "size", batch.Size(), "err", err.Error())
		return &Error{Kind: ErrCommit, Op: "commit", Err: err}
	}

	return nil
}
