package crawl

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

var errStopped = errors.New("crawl stopped by caller")

// Entry is one filesystem entry found under the crawl root.
type Entry struct {
	// Path is absolute and cleaned.
	Path  string
	Name  string
	IsDir bool
	Mode  fs.FileMode
	// Info stats the entry lazily. Directory entries already carry their type,
	// so most entries never need it.
	Info func() (fs.FileInfo, error)
}

// Error ends a crawl. Entries already yielded stay valid.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("could not walk %s: %s", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Root returns the absolute path a crawl of root walks. A root that is itself a
// symbolic link is resolved to its target. A root that cannot be stat'ed is returned
// unresolved and the walk reports the error.
func Root(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &Error{Path: root, Err: err}
	}

	info, err := os.Lstat(absRoot)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return absRoot, nil
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", &Error{Path: absRoot, Err: err}
	}
	return resolved, nil
}

// Walk lazily yields every entry under root, root included. Directories whose name
// starts with '.' are skipped along with everything below them, except when the
// directory is root itself. A root that is a file yields just that file.
//
// A symbolic link given as root is followed once, see Root. Links below the root
// are yielded as entries and never followed. The first traversal error is yielded
// as a *Error and ends the sequence.
func Walk(root string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		absRoot, err := Root(root)
		if err != nil {
			yield(Entry{}, err)
			return
		}

		err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() && path != absRoot && isHidden(d.Name()) {
				return filepath.SkipDir
			}

			entry := Entry{
				Path:  path,
				Name:  d.Name(),
				IsDir: d.IsDir(),
				Mode:  d.Type(),
				Info:  d.Info,
			}
			if !yield(entry, nil) {
				return errStopped
			}

			return nil
		})
		if err == nil || errors.Is(err, errStopped) {
			return
		}

		var pathErr *fs.PathError
		path := absRoot
		if errors.As(err, &pathErr) {
			path = pathErr.Path
		}
		yield(Entry{}, &Error{Path: path, Err: err})
	}
}

// Stat returns the entry for a single path without walking it.
func Stat(path string) (Entry, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, &Error{Path: path, Err: err}
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return Entry{}, &Error{Path: absPath, Err: err}
	}

	return Entry{
		Path:  absPath,
		Name:  info.Name(),
		IsDir: info.IsDir(),
		Mode:  info.Mode().Type(),
		Info:  func() (fs.FileInfo, error) { return info, nil },
	}, nil
}

// Reachable reports whether a crawl of root could yield path: path is root or lies
// below it without passing through a hidden file or directory.
func Reachable(root string, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	if rel == "." {
		return true
	}

	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if isHidden(part) {
			return false
		}
	}
	return true
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
