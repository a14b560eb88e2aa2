package index

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "sowilo-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustUpsert(t *testing.T, db *DB, path, title, cs string, tags ...string) {
	t.Helper()
	err := db.UpsertHeader(HeaderRow{
		Path:      path,
		Title:     title,
		Checksum:  cs,
		Tags:      tags,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("UpsertHeader(%s): %v", path, err)
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM note_tags`).Scan(&count); err != nil {
		t.Fatalf("note_tags table missing: %v", err)
	}
}

func TestUpsertAndGetHeader(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "a.note.txt", "My Title", "abc123", "urgent", "work")

	row, err := db.GetHeader("a.note.txt")
	if err != nil {
		t.Fatalf("GetHeader: %v", err)
	}
	if row == nil {
		t.Fatal("GetHeader returned nil for indexed path")
	}
	if row.Title != "My Title" || row.Checksum != "abc123" {
		t.Errorf("row = %+v", row)
	}
	if !reflect.DeepEqual(row.Tags, []string{"urgent", "work"}) {
		t.Errorf("tags = %v, want [urgent work]", row.Tags)
	}
}

func TestGetHeader_NotFound(t *testing.T) {
	db := testDB(t)
	row, err := db.GetHeader("nope.note")
	if err != nil {
		t.Fatalf("GetHeader: %v", err)
	}
	if row != nil {
		t.Errorf("row = %+v, want nil", row)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.note")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestDeleteHeader(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "del.note", "Gone", "x", "work")

	if err := db.DeleteHeader("del.note"); err != nil {
		t.Fatalf("DeleteHeader: %v", err)
	}
	cs, _ := db.GetChecksum("del.note")
	if cs != "" {
		t.Errorf("deleted note still has checksum %q", cs)
	}
	paths, _ := db.PathsWithTag("work")
	if len(paths) != 0 {
		t.Errorf("expected no tagged paths after delete, got %v", paths)
	}
}

func TestUpsertReplacesTags(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "up.note", "Old", "1", "alpha")
	mustUpsert(t, db, "up.note", "New", "2", "beta")

	cs, _ := db.GetChecksum("up.note")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	paths, _ := db.PathsWithTag("alpha")
	if len(paths) != 0 {
		t.Error("old tag should be removed on upsert")
	}
	paths, _ = db.PathsWithTag("beta")
	if !reflect.DeepEqual(paths, []string{"up.note"}) {
		t.Errorf("PathsWithTag(beta) = %v", paths)
	}
}

func TestListHeaders_SubsetFilter(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "a.note", "A", "1", "work", "urgent")
	mustUpsert(t, db, "b.note", "B", "2", "work")
	mustUpsert(t, db, "c.note", "C", "3", "home")
	mustUpsert(t, db, "d.note", "D", "4")

	rows, total, err := db.ListHeaders(0, 0, []string{"work"}, "")
	if err != nil {
		t.Fatalf("ListHeaders: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("total = %d, len = %d, want 2/2", total, len(rows))
	}
	if rows[0].Path != "a.note" || rows[1].Path != "b.note" {
		t.Errorf("paths = [%s %s]", rows[0].Path, rows[1].Path)
	}

	rows, total, err = db.ListHeaders(0, 0, []string{"work", "urgent"}, "")
	if err != nil {
		t.Fatalf("ListHeaders: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Path != "a.note" {
		t.Errorf("subset filter: total=%d rows=%+v", total, rows)
	}

	_, total, err = db.ListHeaders(0, 0, []string{"missing"}, "")
	if err != nil {
		t.Fatalf("ListHeaders: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}

func TestListHeaders_EmptyRequiredReturnsAll(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "a.note", "A", "1", "x")
	mustUpsert(t, db, "b.note", "B", "2")

	_, total, err := db.ListHeaders(0, 0, nil, "")
	if err != nil {
		t.Fatalf("ListHeaders: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
}

func TestListHeaders_Pagination(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "a.note", "A", "1")
	mustUpsert(t, db, "b.note", "B", "2")
	mustUpsert(t, db, "c.note", "C", "3")

	rows, total, err := db.ListHeaders(2, 1, nil, "path")
	if err != nil {
		t.Fatalf("ListHeaders: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(rows) != 2 || rows[0].Path != "b.note" || rows[1].Path != "c.note" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestListHeaders_SortByTitle(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "1.note", "zebra", "1")
	mustUpsert(t, db, "2.note", "Apple", "2")

	rows, _, err := db.ListHeaders(0, 0, nil, "title")
	if err != nil {
		t.Fatalf("ListHeaders: %v", err)
	}
	if rows[0].Title != "Apple" || rows[1].Title != "zebra" {
		t.Errorf("title order = [%s %s]", rows[0].Title, rows[1].Title)
	}
}

func TestTagSummary(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "a.note", "A", "1", "work", "urgent")
	mustUpsert(t, db, "b.note", "B", "2", "work")

	counts, err := db.TagSummary()
	if err != nil {
		t.Fatalf("TagSummary: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("len = %d, want 2", len(counts))
	}
	if counts[0].Tag != "work" || counts[0].Count != 2 {
		t.Errorf("first = %+v, want work/2", counts[0])
	}
	if counts[1].Tag != "urgent" || counts[1].Count != 1 {
		t.Errorf("second = %+v, want urgent/1", counts[1])
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "a.note", "A", "cs-a")
	mustUpsert(t, db, "b.note", "B", "cs-b")

	m, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	want := map[string]string{"a.note": "cs-a", "b.note": "cs-b"}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("AllChecksums = %v, want %v", m, want)
	}
}

func TestSearch_TitleAndTags(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "s.note", "Quarterly Review", "1", "finance")

	results, err := db.Search("Quarterly", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.note" {
		t.Errorf("title search = %+v, want 1 hit for s.note", results)
	}

	results, err = db.Search("finance", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.note" {
		t.Errorf("tag search = %+v, want 1 hit for s.note", results)
	}
}
