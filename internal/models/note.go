// Package models defines the domain types for Sowilo.
package models

import (
	"strings"
	"time"
)

// NoteMeta is a lightweight record of a discovered note file, as returned
// by storage listings and consumed by index synchronisation.
type NoteMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagCount pairs a tag with the number of notes carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// IsNoteFile reports whether a base name identifies a note candidate.
// The name is lowercased and split on "."; the file qualifies when the
// literal segment "note" appears, so "foo.note.md", "note.txt" and
// "x.y.note" qualify while "notebook.txt" does not.
func IsNoteFile(name string) bool {
	for _, seg := range strings.Split(strings.ToLower(name), ".") {
		if seg == "note" {
			return true
		}
	}
	return false
}

// NormalizeTags lowercases and trims tags, dropping empties and duplicates.
// Input order is preserved for the survivors.
func NormalizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, tag := range raw {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
