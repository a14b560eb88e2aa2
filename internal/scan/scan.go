// Package scan runs the note-scanning pipeline: candidate discovery, header
// extraction, required-tag filtering, and report rendering.
package scan

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/starford/sowilo/internal/models"
	"github.com/starford/sowilo/internal/parser"
	"github.com/starford/sowilo/internal/storage"
)

// Options configures a single scan run.
type Options struct {
	// Root is the directory to walk.
	Root string
	// RequiredTags must all appear in a note's tag set for it to qualify.
	// Matching is case-insensitive; an empty set qualifies every note.
	RequiredTags []string
	// Exclude holds glob patterns (slash-separated, relative to Root) for
	// files and directories to skip.
	Exclude []string
	// Jobs is the number of concurrent extractions. Values below 1 mean
	// sequential extraction.
	Jobs int
}

// Entry is the outcome of extracting one candidate file. Exactly one of a
// usable Header or a non-nil Err is populated.
type Entry struct {
	Path      string
	Header    parser.Header
	Err       error
	Qualified bool
}

// Run discovers note candidates under opts.Root and extracts each header.
// The returned entries are ordered by path. Per-file read failures are
// recorded on the entry, never returned as the run error; only setup
// problems (unusable root, bad exclude pattern) or context cancellation
// fail the run itself.
func Run(ctx context.Context, opts Options) ([]Entry, error) {
	store, err := storage.NewFS(opts.Root, opts.Exclude)
	if err != nil {
		return nil, err
	}
	rels, err := store.Paths("")
	if err != nil {
		return nil, err
	}

	required := models.NormalizeTags(opts.RequiredTags)
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	// Extraction is independent per file; entries keep the sorted walk
	// order because each goroutine writes only its own slot.
	entries := make([]Entry, len(rels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, rel := range rels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(opts.Root, rel)
			h, err := parser.ExtractFile(path)
			entries[i] = Entry{
				Path:      path,
				Header:    h,
				Err:       err,
				Qualified: err == nil && h.HasAll(required),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
