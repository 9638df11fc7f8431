package searchdb

import "context"

// DB is the read side of the index used by the search service.
type DB interface {
	Search(ctx context.Context, q Query) (*Response, error)
	DocCount() (uint64, error)
	Close() error
}

// Indexer is the write side used by index runs. Only one writer may be open at a time.
type Indexer interface {
	NewWriter() (*Writer, error)
	DocumentsUnder(ctx context.Context, root string) ([]Located, error)
}

var (
	_ DB      = (*BleveDB)(nil)
	_ Indexer = (*BleveDB)(nil)
)
