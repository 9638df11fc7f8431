package index

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/meghashyamc/wordindex/db/searchdb"
	"github.com/meghashyamc/wordindex/services/crawl"
	"github.com/meghashyamc/wordindex/services/extract"
)

// Office suites leave these next to documents that are open for editing.
var lockFilePrefixes = []string{"~$", ".~lock."}

// RejectError means an entry is not a document. It is not a failure.
type RejectError struct {
	Path   string
	Reason string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s not indexed: %s", e.Path, e.Reason)
}

// BuildError means an entry looked like a document but its metadata could not be read.
type BuildError struct {
	Path string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("could not build document for %s: %s", e.Path, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Candidate is a document ready to be indexed, without its content.
type Candidate struct {
	Document searchdb.Document
	Kind     extract.Kind
}

// DocumentID derives the stable id of a path.
func DocumentID(path string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(path)))
	return hex.EncodeToString(sum[:])
}

// buildDocument classifies an entry and fills in everything except the content.
func buildDocument(entry crawl.Entry) (*Candidate, error) {
	if entry.IsDir {
		return nil, &RejectError{Path: entry.Path, Reason: "directory"}
	}
	if !entry.Mode.IsRegular() {
		return nil, &RejectError{Path: entry.Path, Reason: "not a regular file"}
	}
	for _, prefix := range lockFilePrefixes {
		if strings.HasPrefix(entry.Name, prefix) {
			return nil, &RejectError{Path: entry.Path, Reason: "lock file"}
		}
	}
	if strings.HasPrefix(entry.Name, ".") {
		return nil, &RejectError{Path: entry.Path, Reason: "hidden file"}
	}

	kind := extract.KindOf(entry.Name)
	if kind == extract.KindUnsupported {
		return nil, &RejectError{Path: entry.Path, Reason: "unsupported file type"}
	}

	info, err := entryInfo(entry)
	if err != nil {
		return nil, &BuildError{Path: entry.Path, Err: err}
	}
	if info.ModTime().IsZero() {
		return nil, &BuildError{Path: entry.Path, Err: fmt.Errorf("no modification time")}
	}

	return &Candidate{
		Document: searchdb.Document{
			ID:        DocumentID(entry.Path),
			Name:      entry.Name,
			Path:      entry.Path,
			Timestamp: info.ModTime().Unix(),
		},
		Kind: kind,
	}, nil
}

func entryInfo(entry crawl.Entry) (fs.FileInfo, error) {
	if entry.Info == nil {
		return nil, fmt.Errorf("no file info")
	}

	return entry.Info()
}
