package fs

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// GitFS implements FileSystem by reading notebooks from a git ref (branch, tag, or commit).
// dir may be any directory inside a work tree; paths are resolved relative to it,
// so a notebook folder nested in a larger repository works as a root.
type GitFS struct {
	dir string
	ref string
}

// NewGitFS creates a GitFS that reads files under dir as they exist at ref.
func NewGitFS(dir, ref string) *GitFS {
	return &GitFS{dir: dir, ref: ref}
}

func (g *GitFS) git(args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", g.dir}, args...)...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

// object returns the <ref>:./<path> object name git resolves relative to dir.
func (g *GitFS) object(path string) string {
	return g.ref + ":./" + filepath.ToSlash(path)
}

// Path returns the location of path annotated with the ref it is read from.
func (g *GitFS) Path(path string) string {
	p := g.dir
	if path != "" && path != "." {
		p = filepath.Join(g.dir, path)
	}
	return p + "@" + g.ref
}

// Exists reports whether dir is inside a repository in which ref resolves to a commit.
func (g *GitFS) Exists() bool {
	_, err := g.git("rev-parse", "--verify", "--quiet", g.ref+"^{commit}")
	return err == nil
}

// ReadFile reads the contents of the file at the given path from the git ref.
func (g *GitFS) ReadFile(path string) ([]byte, error) {
	if path == "" || path == "." {
		return nil, fmt.Errorf("cannot read directory as file")
	}
	cmd := exec.Command("git", "-C", g.dir, "cat-file", "blob", g.object(path))
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			lower := strings.ToLower(stderr)
			if strings.Contains(lower, "not a valid object name") ||
				strings.Contains(lower, "does not exist") ||
				strings.Contains(lower, "exists on disk, but not in") {
				return nil, os.ErrNotExist
			}
			return nil, fmt.Errorf("git cat-file: %s", stderr)
		}
		return nil, err
	}
	return out, nil
}

// treeEntry is one record of `git ls-tree -l -z` output.
type treeEntry struct {
	mode    string
	objType string
	size    string
	path    string
}

// regular reports whether the entry is a plain file. 120000 blobs are
// symlinks and commits are submodules.
func (e treeEntry) regular() bool {
	return e.objType == "blob" && e.mode != "120000"
}

// lsTree runs ls-tree with NUL-terminated records so paths come back
// unquoted, whatever bytes they contain.
func (g *GitFS) lsTree(args ...string) ([]treeEntry, error) {
	out, err := g.git(append([]string{"ls-tree", "-l", "-z", g.ref}, args...)...)
	if err != nil {
		return nil, err
	}

	var entries []treeEntry
	for _, rec := range strings.Split(out, "\x00") {
		// "<mode> <type> <hash> <size>\t<path>"; size is "-" for trees.
		tab := strings.IndexByte(rec, '\t')
		if tab < 0 {
			continue
		}
		fields := strings.Fields(rec[:tab])
		if len(fields) < 4 {
			continue
		}
		entries = append(entries, treeEntry{
			mode:    fields[0],
			objType: fields[1],
			size:    fields[3],
			path:    rec[tab+1:],
		})
	}
	return entries, nil
}

// Stat returns metadata for the file or directory at the given path in the git ref.
// Symlinks and submodules are reported as not existing, matching ReadDir,
// which never classifies them as regular files.
func (g *GitFS) Stat(path string) (FileInfo, error) {
	if path == "" || path == "." {
		if !g.Exists() {
			return FileInfo{}, os.ErrNotExist
		}
		return FileInfo{
			Name:    filepath.Base(g.dir),
			IsDir:   true,
			ModTime: g.modTime(""),
		}, nil
	}

	entries, err := g.lsTree("./" + filepath.ToSlash(path))
	if err != nil || len(entries) != 1 {
		return FileInfo{}, os.ErrNotExist
	}
	e := entries[0]
	if e.objType != "tree" && !e.regular() {
		return FileInfo{}, os.ErrNotExist
	}

	info := FileInfo{
		Name:    baseName(e.path),
		IsDir:   e.objType == "tree",
		ModTime: g.modTime(path),
	}
	if !info.IsDir {
		info.Size, _ = strconv.ParseInt(e.size, 10, 64)
	}
	return info, nil
}

// ReadDir lists the immediate children of the directory at the given path in the git ref.
func (g *GitFS) ReadDir(path string) ([]DirEntry, error) {
	var args []string
	if path != "" && path != "." {
		args = append(args, "./"+filepath.ToSlash(path)+"/")
	}
	tree, err := g.lsTree(args...)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", g.Path(path), err)
	}

	entries := make([]DirEntry, 0, len(tree))
	for _, e := range tree {
		entries = append(entries, DirEntry{
			Name:      baseName(e.path),
			IsDir:     e.objType == "tree",
			IsRegular: e.regular(),
		})
	}
	return entries, nil
}

func (g *GitFS) modTime(path string) time.Time {
	args := []string{"log", "-1", "--format=%ct", g.ref, "--"}
	if path == "" || path == "." {
		args = append(args, ".")
	} else {
		args = append(args, filepath.ToSlash(path))
	}
	out, err := g.git(args...)
	if err != nil {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

func baseName(path string) string {
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
