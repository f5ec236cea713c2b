package notebook

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	mfs "github.com/CageChen/nbhub/internal/fs"
)

// FileInfoKey is the key under which Parsed injects the file summary.
// A key of the same name in the source document is overwritten.
const FileInfoKey = "_file_info"

// Match is the outcome of resolving a requested name.
type Match struct {
	// Name is the effective filename, which differs from the request after a substring match.
	Name string
	// Fuzzy is true when the exact name did not exist and a substring match was used.
	Fuzzy bool
	Info  mfs.FileInfo
}

// Content is a parsed notebook: every top-level key of the source document
// kept verbatim, plus the "cells" and "metadata" defaults and "_file_info".
type Content map[string]json.RawMessage

// CellCount returns the number of entries in "cells", or 0 if it is not an array.
func (c Content) CellCount() int {
	var cells []json.RawMessage
	if err := json.Unmarshal(c["cells"], &cells); err != nil {
		return 0
	}
	return len(cells)
}

// Resolve maps a requested name to exactly one file under the root.
//
// An existing regular file with exactly that name wins. Otherwise the
// notebooks whose filenames contain name, case-insensitively, are
// considered in filename order and the first is used. Names that are not
// lexically local to the root are rejected with ErrInvalidName before any
// filesystem access.
func (s *Store) Resolve(name string) (Match, error) {
	if !filepath.IsLocal(name) {
		return Match{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if info, err := s.fs.Stat(name); err == nil && !info.IsDir {
		return Match{Name: name, Info: info}, nil
	}

	names, err := s.notebookNames()
	if err != nil {
		return Match{}, fmt.Errorf("%w: %q in %s", ErrNotFound, name, s.Root())
	}
	needle := strings.ToLower(name)
	for _, candidate := range names {
		if !strings.Contains(strings.ToLower(candidate), needle) {
			continue
		}
		info, err := s.fs.Stat(candidate)
		if err != nil {
			return Match{}, fmt.Errorf("%w: %v", ErrRead, err)
		}
		return Match{Name: candidate, Fuzzy: true, Info: info}, nil
	}

	return Match{}, fmt.Errorf("%w: %q in %s", ErrNotFound, name, s.Root())
}

// read resolves name and returns the file contents.
func (s *Store) read(name string) ([]byte, Match, error) {
	m, err := s.Resolve(name)
	if err != nil {
		return nil, Match{}, err
	}
	data, err := s.fs.ReadFile(m.Name)
	if err != nil {
		return nil, m, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if !utf8.Valid(data) {
		return nil, m, fmt.Errorf("%w: file is not valid UTF-8", ErrInvalidFormat)
	}
	return data, m, nil
}

// Parsed resolves name and returns its content with "cells" defaulted to an
// empty array, "metadata" defaulted to an empty object, and "_file_info" set.
func (s *Store) Parsed(name string) (Content, Match, error) {
	data, m, err := s.read(name)
	if err != nil {
		return nil, m, err
	}

	var content Content
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, m, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if content == nil {
		return nil, m, fmt.Errorf("%w: top-level value is not an object", ErrInvalidFormat)
	}

	if _, ok := content["cells"]; !ok {
		content["cells"] = json.RawMessage(`[]`)
	}
	if _, ok := content["metadata"]; !ok {
		content["metadata"] = json.RawMessage(`{}`)
	}

	fileInfo, err := json.Marshal(FileInfo{
		Filename:     m.Name,
		Size:         m.Info.Size,
		Path:         s.fs.Path(m.Name),
		LastModified: unixSeconds(m.Info.ModTime),
	})
	if err != nil {
		return nil, m, err
	}
	content[FileInfoKey] = fileInfo

	return content, m, nil
}

// Raw resolves name and returns the file bytes unchanged once they are
// known to be valid JSON.
func (s *Store) Raw(name string) ([]byte, Match, error) {
	data, m, err := s.read(name)
	if err != nil {
		return nil, m, err
	}
	if !json.Valid(data) {
		return nil, m, fmt.Errorf("%w: %s", ErrInvalidFormat, m.Name)
	}
	return data, m, nil
}
