// Package notebook lists and resolves Jupyter notebooks under a single root folder.
package notebook

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	mfs "github.com/CageChen/nbhub/internal/fs"
)

// Extension is the file extension, compared case-insensitively, that marks a notebook.
const Extension = ".ipynb"

// Placeholder values returned by List when the root holds no notebooks.
const (
	PlaceholderFilename = "No notebooks found"
	PlaceholderError    = "no " + Extension + " files in directory"
)

// Summary is the listing projection of one notebook file.
type Summary struct {
	Filename     string   `json:"filename"`
	Size         int64    `json:"size"`
	Path         string   `json:"path"`
	LastModified *float64 `json:"last_modified,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// FileInfo is the file summary injected into parsed notebooks as "_file_info".
type FileInfo struct {
	Filename     string  `json:"filename"`
	Size         int64   `json:"size"`
	Path         string  `json:"path"`
	LastModified float64 `json:"last_modified"`
}

// Store serves notebooks out of one root. It holds no mutable state and is
// safe for concurrent use.
type Store struct {
	fs mfs.FileSystem
}

// NewStore creates a Store reading from fsys.
func NewStore(fsys mfs.FileSystem) *Store {
	return &Store{fs: fsys}
}

// Root returns the display location of the notebook root.
func (s *Store) Root() string {
	return s.fs.Path("")
}

// Exists reports whether the notebook root is reachable.
func (s *Store) Exists() bool {
	return s.fs.Exists()
}

// IsNotebook reports whether name carries the notebook extension.
func IsNotebook(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Extension)
}

// List returns one Summary per notebook directly inside the root, sorted by
// filename. A file that cannot be stat'ed is still listed, with Size 0 and
// Error set. When there are no notebooks a single placeholder is returned.
func (s *Store) List() ([]Summary, error) {
	names, err := s.notebookNames()
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return []Summary{{
			Filename: PlaceholderFilename,
			Size:     0,
			Path:     s.Root(),
			Error:    PlaceholderError,
		}}, nil
	}

	summaries := make([]Summary, 0, len(names))
	for _, name := range names {
		summary := Summary{
			Filename: name,
			Path:     s.fs.Path(name),
		}
		info, err := s.fs.Stat(name)
		if err != nil {
			summary.Error = fmt.Sprintf("cannot stat: %v", err)
		} else {
			summary.Size = info.Size
			ts := unixSeconds(info.ModTime)
			summary.LastModified = &ts
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// notebookNames returns the names of regular notebook files in the root in byte order.
func (s *Store) notebookNames() ([]string, error) {
	entries, err := s.fs.ReadDir("")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsRegular && IsNotebook(e.Name) {
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// unixSeconds converts t to fractional Unix seconds.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
