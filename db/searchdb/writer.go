package searchdb

import (
	"context"

	"github.com/blevesearch/bleve/v2"
)

type UpsertResult int

const (
	// UpsertCurrent means the indexed copy already matched; nothing was written.
	UpsertCurrent UpsertResult = iota
	// UpsertReplaced means the document was (re)written into the pending batch.
	UpsertReplaced
)

// Replace is the write intent for one document: drop whatever is indexed under ID and
// add Doc in its place. Both halves land in the same batch, so readers see either the
// old copy or the new one.
type Replace struct {
	ID  string
	Doc Document
}

// ContentFunc produces the document text. Upsert only calls it for stale documents.
type ContentFunc func(ctx context.Context) (string, error)

// Writer buffers writes and commits them every commitEvery operations. A Writer is not
// safe for concurrent use; callers serialise their upserts.
type Writer struct {
	db          *BleveDB
	batch       *bleve.Batch
	pending     int
	commitEvery int
	closed      bool
}

// NewWriter hands out the index writer. Only one writer can be open at a time; keep it
// for the whole run and Close it at the end.
func (b *BleveDB) NewWriter() (*Writer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, &Error{Kind: ErrIndexClosed, Op: "create writer"}
	}

	if !b.writerActive.CompareAndSwap(false, true) {
		b.logger.Warn("index writer requested while another one is active")
		return nil, &Error{Kind: ErrWriterBusy, Op: "create writer"}
	}

	return &Writer{
		db:          b,
		batch:       b.index.NewBatch(),
		commitEvery: b.commitEvery,
	}, nil
}

// Upsert writes doc unless the index already holds the same (id, timestamp) pair.
// An error from content is returned as is and leaves the indexed copy untouched.
func (w *Writer) Upsert(ctx context.Context, doc Document, content ContentFunc) (UpsertResult, error) {
	if w.closed {
		return UpsertCurrent, &Error{Kind: ErrWriterDone, Op: "upsert", Path: doc.Path}
	}

	current, err := w.db.IsCurrent(ctx, doc.ID, doc.Timestamp)
	if err != nil {
		// A failed check must not hide a changed file, so fall through and rewrite.
		w.db.logger.Warn("staleness check failed, reindexing document", "path", doc.Path, "err", err.Error())
	}
	if current {
		return UpsertCurrent, nil
	}

	text, err := content(ctx)
	if err != nil {
		return UpsertCurrent, err
	}
	doc.Content = text

	if err := w.Apply(Replace{ID: doc.ID, Doc: doc}); err != nil {
		return UpsertCurrent, err
	}

	return UpsertReplaced, nil
}

// Apply queues a Replace. The intent is staged in its own batch and merged only once it
// is complete, so a document that fails to analyse never leaves a lone delete behind.
func (w *Writer) Apply(replace Replace) error {
	if w.closed {
		return &Error{Kind: ErrWriterDone, Op: "apply", Path: replace.Doc.Path}
	}

	intent := w.db.index.NewBatch()
	intent.Delete(replace.ID)
	if err := intent.Index(replace.ID, replace.Doc); err != nil {
		w.db.logger.Error("could not add document to batch", "path", replace.Doc.Path, "err", err.Error())
		return &Error{Kind: ErrAddDocument, Op: "apply", Path: replace.Doc.Path, Err: err}
	}
	w.batch.Merge(intent)

	return w.queued()
}

// Delete queues the removal of a document id.
func (w *Writer) Delete(id string) error {
	if w.closed {
		return &Error{Kind: ErrWriterDone, Op: "delete"}
	}

	w.batch.Delete(id)
	return w.queued()
}

// Pending is the number of queued operations not yet committed.
func (w *Writer) Pending() int {
	return w.pending
}

// Commit makes every queued operation visible to new searches.
func (w *Writer) Commit() error {
	if w.closed {
		return &Error{Kind: ErrWriterDone, Op: "commit"}
	}
	if w.pending == 0 {
		return nil
	}

	if err := w.db.commit(w.batch); err != nil {
		return err
	}
	w.db.logger.Debug("committed index batch", "operations", w.pending)
	w.batch.Reset()
	w.pending = 0

	return nil
}

// Close commits the tail of the run and releases the writer slot.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	err := w.Commit()
	w.closed = true
	w.db.writerActive.Store(false)

	return err
}

func (w *Writer) queued() error {
	w.pending++
	if w.pending >= w.commitEvery {
		return w.Commit()
	}

	return nil
}
