package index

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/starford/sowilo/internal/checksum"
	"github.com/starford/sowilo/internal/parser"
	"github.com/starford/sowilo/internal/storage"
)

// Sync walks the note tree and brings the index up to date:
//   - new and changed files are re-extracted and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteHeader(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile extracts the header from data and upserts it under path.
func indexFile(db *DB, path string, data []byte) error {
	h, err := parser.ParseHeader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return db.UpsertHeader(HeaderRow{
		Path:      path,
		Title:     h.Title,
		Checksum:  checksum.Sum(data),
		Tags:      h.Tags,
		UpdatedAt: time.Now().UTC(),
	})
}
