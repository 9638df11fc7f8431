package kvdb

const (
	// PathsBucket holds watched root paths (key: canonical path, value: time it was added).
	PathsBucket = "paths"
	// RequestsBucket holds index run status documents keyed by request id.
	RequestsBucket = "requests"
)

var buckets = []string{PathsBucket, RequestsBucket}

type DB interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
	GetAllKeys(bucket string) ([]string, error)
	Close() error
}
