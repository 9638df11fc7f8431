package searchdb

import (
	"errors"
	"fmt"
)

var (
	ErrOpenIndex   = errors.New("could not open or create index")
	ErrIndexLocked = errors.New("index is locked by another process")
	ErrIndexClosed = errors.New("index is closed")
	ErrWriterBusy  = errors.New("another index writer is active")
	ErrWriterDone  = errors.New("index writer is closed")
	ErrAddDocument = errors.New("could not add document")
	ErrCommit      = errors.New("could not commit index writes")
	ErrQueryParse  = errors.New("could not parse query")
	ErrSearch      = errors.New("search failed")
)

// Error is returned by every engine operation. Kind is one of the package sentinels
// and is what errors.Is matches against.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}
