// Package storage defines the note-tree file-system abstraction.
package storage

import "github.com/starford/sowilo/internal/models"

// Provider is the interface for note-tree file operations. All paths are
// relative to the tree root.
type Provider interface {
	// List returns metadata for every note candidate under dir, sorted by
	// path. Files that cannot be read are omitted.
	List(dir string) ([]models.NoteMeta, error)
	// Paths returns the sorted, deduplicated relative paths of every note
	// candidate under dir without reading any file contents.
	Paths(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
