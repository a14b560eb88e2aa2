package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/sowilo/internal/models"
)

// HeaderRow represents a row in the notes table: one extracted header plus
// the change-detection checksum.
type HeaderRow struct {
	Path      string
	Title     string
	Checksum  string
	Tags      []string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// UpsertHeader inserts or replaces a header row, its FTS entry, and its
// note_tags relation within a transaction.
func (db *DB) UpsertHeader(row HeaderRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := row.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	_, err = tx.Exec(`
		INSERT INTO notes (path, title, checksum, tags, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			updated_at = excluded.updated_at
	`, row.Path, row.Title, row.Checksum, string(tagsJSON), row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert header: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Path, row.Title, tags); err != nil {
		return err
	}

	// Replace the tag relation: delete old rows then bulk insert.
	_, _ = tx.Exec(`DELETE FROM note_tags WHERE path = ?`, row.Path)
	if len(tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO note_tags (path, tag) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tag := range tags {
			if _, err := stmt.Exec(row.Path, tag); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteHeader removes a header row, its FTS entry, and its tags.
func (db *DB) DeleteHeader(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM note_tags WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM notes WHERE path = ?`, path)

	return tx.Commit()
}

// GetHeader returns the stored header for a path, or nil when not indexed.
func (db *DB) GetHeader(path string) (*HeaderRow, error) {
	var (
		row      HeaderRow
		tagsJSON string
	)
	err := db.conn.QueryRow(
		`SELECT path, title, checksum, tags, updated_at FROM notes WHERE path = ?`, path,
	).Scan(&row.Path, &row.Title, &row.Checksum, &tagsJSON, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get header: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &row.Tags); err != nil {
		return nil, fmt.Errorf("index: decode tags for %s: %w", path, err)
	}
	return &row, nil
}

// GetChecksum returns the stored checksum for a path, or empty string if
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// ListHeaders returns a page of headers plus the total match count. When
// required is non-empty only notes whose tag set contains every required
// tag are returned. sortKey is one of "path" (default), "title", "updated".
func (db *DB) ListHeaders(limit, offset int, required []string, sortKey string) ([]HeaderRow, int, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var (
		where string
		args  []any
	)
	if len(required) > 0 {
		// Subset filter: a path qualifies when it carries every required
		// tag, i.e. its matched distinct-tag count equals len(required).
		ph := strings.TrimSuffix(strings.Repeat("?,", len(required)), ",")
		where = ` WHERE path IN (
			SELECT path FROM note_tags
			WHERE tag IN (` + ph + `)
			GROUP BY path
			HAVING COUNT(DISTINCT tag) = ?)`
		for _, tag := range required {
			args = append(args, tag)
		}
		args = append(args, len(required))
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM notes`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count headers: %w", err)
	}

	query := `SELECT path, title, checksum, tags, updated_at FROM notes` +
		where + ` ORDER BY ` + orderBy(sortKey) + ` LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list headers: %w", err)
	}
	defer rows.Close()

	var out []HeaderRow
	for rows.Next() {
		var (
			row      HeaderRow
			tagsJSON string
		)
		if err := rows.Scan(&row.Path, &row.Title, &row.Checksum, &tagsJSON, &row.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal([]byte(tagsJSON), &row.Tags); err != nil {
			return nil, 0, fmt.Errorf("index: decode tags for %s: %w", row.Path, err)
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// orderBy maps a sort key onto a whitelisted ORDER BY clause; unknown keys
// fall back to path order.
func orderBy(key string) string {
	switch key {
	case "title":
		return "title COLLATE NOCASE ASC, path ASC"
	case "updated":
		return "updated_at DESC, path ASC"
	default:
		return "path ASC"
	}
}

// TagSummary returns every known tag with its note count, most used first.
func (db *DB) TagSummary() ([]models.TagCount, error) {
	rows, err := db.conn.Query(`
		SELECT tag, COUNT(*) AS n
		FROM note_tags
		GROUP BY tag
		ORDER BY n DESC, tag ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: tag summary: %w", err)
	}
	defer rows.Close()

	var out []models.TagCount
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// PathsWithTag returns the sorted paths of every note carrying tag.
func (db *DB) PathsWithTag(tag string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT path FROM note_tags WHERE tag = ? ORDER BY path`, tag)
	if err != nil {
		return nil, fmt.Errorf("index: paths with tag: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AllPaths returns every indexed note path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
