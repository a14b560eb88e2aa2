package api

import (
	"github.com/starford/sowilo/internal/models"
	"github.com/starford/sowilo/internal/noteservice"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path    string `json:"path" example:"topics/idea.note.txt" validate:"required"`
	Content string `json:"content" example:"My Title\n[work urgent]\nBody" validate:"required"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content" example:"Updated Title\n[work]\nBody" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path" example:"topics/idea.note.txt" validate:"required"`
	Title   string `json:"title" example:"My Title" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// TagCount is a tag with the number of notes carrying it.
type TagCount = models.TagCount

// TagListResponse wraps the tag summary.
type TagListResponse struct {
	Tags []TagCount `json:"tags" validate:"required"`
}

// TagNotesResponse wraps the paths carrying one tag.
type TagNotesResponse struct {
	Tag   string   `json:"tag" example:"work" validate:"required"`
	Paths []string `json:"paths" validate:"required"`
}
