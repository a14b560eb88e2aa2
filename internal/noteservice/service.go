// Package noteservice coordinates storage and index operations behind the
// API and MCP surfaces.
package noteservice

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/sowilo/internal/apperr"
	"github.com/starford/sowilo/internal/checksum"
	"github.com/starford/sowilo/internal/index"
	"github.com/starford/sowilo/internal/models"
	"github.com/starford/sowilo/internal/parser"
	"github.com/starford/sowilo/internal/storage"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Checksum  string    `json:"checksum"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    *index.DB
}

// NewService creates a new note service.
func NewService(store storage.Provider, db *index.DB) *Service {
	return &Service{store: store, db: db}
}

// GetNote reads a note from storage and extracts its header.
func (s *Service) GetNote(_ context.Context, path string) (*NoteDetail, error) {
	if err := requireNotePath(path); err != nil {
		return nil, err
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return buildNoteDetail(path, data)
}

// CreateNote writes a new note and indexes it.
func (s *Service) CreateNote(_ context.Context, path string, content []byte) (*NoteDetail, error) {
	if err := requireNotePath(path); err != nil {
		return nil, err
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return buildNoteDetail(path, content)
}

// UpdateNote writes updated content with optimistic concurrency: when
// ifMatch is non-empty it must equal the current content checksum.
func (s *Service) UpdateNote(_ context.Context, path string, content []byte, ifMatch string) (*NoteDetail, error) {
	if err := requireNotePath(path); err != nil {
		return nil, err
	}
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return buildNoteDetail(path, content)
}

// DeleteNote removes a note from storage and index.
func (s *Service) DeleteNote(_ context.Context, path string) error {
	if err := requireNotePath(path); err != nil {
		return err
	}
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteHeader(path)
}

// RenameNote moves a note to a new path and reindexes it under the new one.
func (s *Service) RenameNote(_ context.Context, oldPath, newPath string) (*NoteDetail, error) {
	if err := requireNotePath(oldPath); err != nil {
		return nil, err
	}
	if err := requireNotePath(newPath); err != nil {
		return nil, err
	}
	if _, err := s.store.Read(newPath); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Move(oldPath, newPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if err := s.db.DeleteHeader(oldPath); err != nil {
		return nil, err
	}
	data, err := s.store.Read(newPath)
	if err != nil {
		return nil, err
	}
	if err := s.IndexFile(newPath, data); err != nil {
		return nil, err
	}
	return buildNoteDetail(newPath, data)
}

// ListNotes returns paginated notes whose tag sets contain every required
// tag. Required tags are normalised (lowercased, deduplicated) first.
func (s *Service) ListNotes(_ context.Context, limit, offset int, required []string, sort string) ([]NoteListItem, int, error) {
	rows, total, err := s.db.ListHeaders(limit, offset, models.NormalizeTags(required), sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]NoteListItem, len(rows))
	for i, r := range rows {
		items[i] = NoteListItem{
			Path:      r.Path,
			Title:     r.Title,
			Checksum:  r.Checksum,
			Tags:      nonNilSlice(r.Tags),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Tags returns every known tag with its note count.
func (s *Service) Tags(_ context.Context) ([]models.TagCount, error) {
	return s.db.TagSummary()
}

// NotesWithTag returns the sorted paths of every note carrying tag.
// Matching is case-insensitive; a blank tag matches nothing.
func (s *Service) NotesWithTag(_ context.Context, tag string) ([]string, error) {
	norm := models.NormalizeTags([]string{tag})
	if len(norm) == 0 {
		return []string{}, nil
	}
	paths, err := s.db.PathsWithTag(norm[0])
	if err != nil {
		return nil, err
	}
	return nonNilSlice(paths), nil
}

// Search delegates header search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// IndexFile extracts the header from data and upserts it into the index.
func (s *Service) IndexFile(path string, data []byte) error {
	h, err := parser.ParseHeader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return s.db.UpsertHeader(index.HeaderRow{
		Path:      path,
		Title:     h.Title,
		Checksum:  checksum.Sum(data),
		Tags:      nonNilSlice(h.Tags),
		UpdatedAt: time.Now().UTC(),
	})
}

// requireNotePath rejects paths outside the note namespace; only files
// matching the note name convention are served.
func requireNotePath(path string) error {
	if !models.IsNoteFile(filepath.Base(path)) {
		return apperr.ErrNotANote
	}
	return nil
}

// buildNoteDetail constructs a NoteDetail from raw data without re-reading
// the file.
func buildNoteDetail(path string, data []byte) (*NoteDetail, error) {
	h, err := parser.ParseHeader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &NoteDetail{
		Path:      path,
		Title:     h.Title,
		Content:   string(data),
		Checksum:  checksum.Sum(data),
		Tags:      nonNilSlice(h.Tags),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
