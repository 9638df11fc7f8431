package index

import (
	"context"
	"errors"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/wordindex/db/searchdb"
	"github.com/meghashyamc/wordindex/logger"
	"github.com/meghashyamc/wordindex/services/crawl"
	"github.com/meghashyamc/wordindex/services/extract"
)

const maxIndexBuildingTime = 2 * time.Hour

var (
	ErrIndexingInProgress = errors.New("indexing already in progress")
	ErrRequestNotFound    = errors.New("index request not found")
	ErrServiceStopped     = errors.New("index service stopped")
)

// Extractor produces the text of a document. Errors only concern that document.
type Extractor interface {
	Extract(ctx context.Context, path string, kind extract.Kind) (string, error)
}

// StatusStore persists index run status documents.
type StatusStore interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
}

// Summary counts what one index run did.
type Summary struct {
	Root     string `json:"root"`
	Scanned  int    `json:"scanned"`
	Rejected int    `json:"rejected"`
	Current  int    `json:"current"`
	Indexed  int    `json:"indexed"`
	Failed   int    `json:"failed"`
	Removed  int    `json:"removed"`
}

type Service struct {
	logger      logger.Logger
	indexer     searchdb.Indexer
	extractor   Extractor
	statusStore StatusStore

	// runMu serialises index runs. The engine has a single writer, so a second
	// run would otherwise fail instead of waiting.
	runMu sync.Mutex

	walk func(root string) iter.Seq2[crawl.Entry, error]

	buildIndexC chan indexRequest
	building    atomic.Bool

	// stopMu guards stopped. Build holds it while queueing so that no request is
	// accepted after the worker has exited.
	stopMu  sync.Mutex
	stopped bool
}

type indexRequest struct {
	rootPath  string
	requestID string
}

// New creates the service and starts the background worker that handles Build
// requests until ctx is done.
func New(ctx context.Context, logger logger.Logger, indexer searchdb.Indexer, extractor Extractor, statusStore StatusStore) *Service {
	indexService := &Service{
		logger:      logger,
		indexer:     indexer,
		extractor:   extractor,
		statusStore: statusStore,
		walk:        crawl.Walk,
		buildIndexC: make(chan indexRequest, 1),
	}

	go indexService.build(ctx)
	return indexService
}

// Index brings the index up to date with everything under root. Unchanged documents
// are skipped without being read, and documents under root that no longer exist are
// removed. Per-file failures are logged and counted; a crawl error ends the run and
// is returned together with the partial summary. Work done before the error is kept.
// A root that is a symbolic link is indexed under its target's path.
func (s *Service) Index(ctx context.Context, root string) (summary *Summary, err error) {
	absRoot, err := crawl.Root(root)
	if err != nil {
		s.logger.Error("could not resolve index root", "path", root, "err", err.Error())
		return nil, err
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	writer, err := s.indexer.NewWriter()
	if err != nil {
		s.logger.Error("could not open index writer", "path", absRoot, "err", err.Error())
		return nil, err
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil {
			s.logger.Error("could not commit index run", "path", absRoot, "err", closeErr.Error())
			err = errors.Join(err, closeErr)
		}
	}()

	s.logger.Info("indexing started", "path", absRoot)
	start := time.Now()
	summary = &Summary{Root: absRoot}
	seen := make(map[string]struct{})

	for entry, walkErr := range s.walk(absRoot) {
		if walkErr != nil {
			s.logger.Error("crawl failed", "path", absRoot, "err", walkErr.Error())
			return summary, walkErr
		}
		if ctx.Err() != nil {
			s.logger.Warn("indexing cancelled", "path", absRoot, "reason", ctx.Err())
			return summary, ctx.Err()
		}
		summary.Scanned++

		candidate, buildErr := buildDocument(entry)
		if buildErr != nil {
			var rejectErr *RejectError
			if errors.As(buildErr, &rejectErr) {
				if !entry.IsDir {
					s.logger.Debug("skipping file", "path", entry.Path, "reason", rejectErr.Reason)
				}
				summary.Rejected++
				continue
			}
			s.logger.Error("could not build document", "path", entry.Path, "err", buildErr.Error())
			summary.Failed++
			continue
		}

		doc := candidate.Document
		seen[doc.ID] = struct{}{}

		result, upsertErr := writer.Upsert(ctx, doc, func(ctx context.Context) (string, error) {
			return s.extractor.Extract(ctx, doc.Path, candidate.Kind)
		})
		if upsertErr != nil {
			s.logger.Error("could not index document", "path", doc.Path, "err", upsertErr.Error())
			summary.Failed++
			continue
		}

		switch result {
		case searchdb.UpsertCurrent:
			summary.Current++
		case searchdb.UpsertReplaced:
			summary.Indexed++
		}
	}

	removed, err := s.removeUnseen(ctx, writer, absRoot, seen)
	summary.Removed = removed
	if err != nil {
		return summary, err
	}

	s.logger.Info("indexing finished", "path", absRoot, "duration", time.Since(start).String(),
		"scanned", summary.Scanned, "indexed", summary.Indexed, "current", summary.Current,
		"failed", summary.Failed, "removed", summary.Removed)

	return summary, nil
}

// removeUnseen deletes documents under root that the crawl did not come across.
// Documents the crawl cannot reach, such as those below a hidden directory, are kept.
func (s *Service) removeUnseen(ctx context.Context, writer *searchdb.Writer, root string, seen map[string]struct{}) (int, error) {
	located, err := s.indexer.DocumentsUnder(ctx, root)
	if err != nil {
		s.logger.Error("could not list indexed documents", "path", root, "err", err.Error())
		return 0, err
	}

	removed := 0
	for _, doc := range located {
		if _, ok := seen[doc.ID]; ok {
			continue
		}
		if !crawl.Reachable(root, doc.Path) {
			continue
		}
		if err := writer.Delete(doc.ID); err != nil {
			s.logger.Error("could not remove deleted document", "id", doc.ID, "path", doc.Path, "err", err.Error())
			return removed, err
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("removed deleted documents from index", "path", root, "count", removed)
	}

	return removed, nil
}

// Build queues an index run of root and returns its request id. Only one queued or
// running request is accepted at a time.
func (s *Service) Build(root string) (string, error) {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()
	if s.stopped {
		s.logger.Warn("request to index after the index service stopped", "path", root)
		return "", ErrServiceStopped
	}

	if !s.building.CompareAndSwap(false, true) {
		s.logger.Warn("request to index while indexing is already in progress", "path", root)
		return "", ErrIndexingInProgress
	}

	requestID := uuid.New().String()
	s.setRequestStatus(&RunStatus{
		ID:        requestID,
		Root:      root,
		State:     StatePending,
		UpdatedAt: time.Now().UTC(),
	})

	// Never blocks: the channel has room for the single request allowed in flight.
	s.buildIndexC <- indexRequest{rootPath: root, requestID: requestID}

	return requestID, nil
}

func (s *Service) build(ctx context.Context) {
	for {
		select {
		case req := <-s.buildIndexC:
			s.runRequest(ctx, req)
		case <-ctx.Done():
			s.stop(ctx.Err())
			return
		}
	}
}

// stop refuses further requests and fails the one still queued, if any.
func (s *Service) stop(reason error) {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()
	s.stopped = true

	select {
	case req := <-s.buildIndexC:
		s.building.Store(false)
		s.setRequestStatus(&RunStatus{
			ID:        req.requestID,
			Root:      req.rootPath,
			State:     StateFailed,
			Error:     ErrServiceStopped.Error(),
			UpdatedAt: time.Now().UTC(),
		})
	default:
	}

	s.logger.Info("index service stopped", "reason", reason)
}

func (s *Service) runRequest(ctx context.Context, req indexRequest) {
	indexTimeoutCtx, cancel := context.WithTimeout(ctx, maxIndexBuildingTime)
	defer cancel()

	status := &RunStatus{ID: req.requestID, Root: req.rootPath, State: StateRunning, UpdatedAt: time.Now().UTC()}
	s.setRequestStatus(status)

	summary, err := s.Index(indexTimeoutCtx, req.rootPath)
	// Accept new requests before publishing the outcome, so a caller that sees the
	// final state can queue the next run right away.
	s.building.Store(false)

	status.Summary = summary
	status.UpdatedAt = time.Now().UTC()
	if err != nil {
		s.logger.Error("failed to create index", "request_id", req.requestID, "err", err.Error())
		status.State = StateFailed
		status.Error = err.Error()
	} else {
		status.State = StateCompleted
	}
	s.setRequestStatus(status)
}
