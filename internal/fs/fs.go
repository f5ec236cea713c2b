// Package fs provides read-only filesystem backends for a notebook root:
// a directory on local disk or a directory tree stored at a git ref.
package fs

import "time"

// FileInfo holds file metadata.
type FileInfo struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// DirEntry represents a single directory entry.
// IsRegular is false for directories, links that point at directories,
// broken links, and anything else that cannot be read as a file.
type DirEntry struct {
	Name      string
	IsDir     bool
	IsRegular bool
}

// FileSystem abstracts read access to a notebook root so callers can work
// with either the local filesystem or a git object database. All paths are
// relative to the root; "" and "." name the root itself.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (FileInfo, error)
	ReadDir(path string) ([]DirEntry, error)

	// Path returns the human-readable location of path, used in API payloads.
	Path(path string) string
	// Exists reports whether the root itself is reachable.
	Exists() bool
}
