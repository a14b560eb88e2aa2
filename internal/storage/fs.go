package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/starford/sowilo/internal/checksum"
	"github.com/starford/sowilo/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root    string // absolute path to the note tree
	exclude []glob.Glob
}

// NewFS creates an FS provider rooted at the given directory, which must
// already exist. Exclude patterns are matched against slash-separated paths
// relative to the root; matching files and directories are skipped during
// listings.
func NewFS(root string, exclude []string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}

	globs := make([]glob.Glob, 0, len(exclude))
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("storage: compile exclude %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return &FS{root: abs, exclude: globs}, nil
}

// Root returns the absolute path the provider is rooted at.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the tree root and rejects any
// result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes tree root: %s", rel)
	}
	return abs, nil
}

// Excluded reports whether the slash-relative path matches any exclude
// pattern.
func (f *FS) Excluded(rel string) bool {
	for _, g := range f.exclude {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// walkCandidates walks dir and calls visit with the root-relative path of
// every note candidate. Unreadable directories and entries whose type
// cannot be determined contribute nothing; the walk itself never fails on
// them.
func (f *FS) walkCandidates(dir string, visit func(rel string, d fs.DirEntry)) error {
	base, err := f.safePath(dir)
	if err != nil {
		return err
	}
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // unreadable subtree: no candidates under here
		}
		rel, relErr := filepath.Rel(f.root, p)
		if relErr != nil {
			return nil
		}
		slashRel := filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && f.Excluded(slashRel) {
				return filepath.SkipDir
			}
			return nil
		}
		// Symlinks are never followed; only regular files can be notes.
		if !d.Type().IsRegular() {
			return nil
		}
		if f.Excluded(slashRel) || !models.IsNoteFile(d.Name()) {
			return nil
		}
		visit(rel, d)
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage: walk: %w", err)
	}
	return nil
}

// List walks dir (relative to root) and returns metadata for every note
// candidate, sorted by path. Files that disappear or cannot be read
// mid-walk are omitted rather than failing the listing.
func (f *FS) List(dir string) ([]models.NoteMeta, error) {
	var out []models.NoteMeta
	err := f.walkCandidates(dir, func(rel string, d fs.DirEntry) {
		info, err := d.Info()
		if err != nil {
			return
		}
		sum, err := checksum.File(filepath.Join(f.root, rel))
		if err != nil {
			return
		}
		out = append(out, models.NoteMeta{
			Path:      rel,
			Checksum:  sum,
			UpdatedAt: info.ModTime(),
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Paths returns the sorted, deduplicated relative paths of every note
// candidate under dir. Nothing is read, so files that exist but cannot be
// opened are still listed; their read failures surface later, at
// extraction time.
func (f *FS) Paths(dir string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	err := f.walkCandidates(dir, func(rel string, _ fs.DirEntry) {
		if _, dup := seen[rel]; dup {
			return
		}
		seen[rel] = struct{}{}
		out = append(out, rel)
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// Read returns the raw bytes of a note file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sowilo-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a file from the tree.
func (f *FS) Delete(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Move renames a file within the tree.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.safePath(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.safePath(newPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absNew)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: move: %w", err)
	}
	return nil
}
