//go:build sqlite_fts5

package index

import (
	"testing"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM headers_fts`).Scan(&count); err != nil {
		t.Fatalf("headers_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "fts.note", "Powerful Header Search", "f1", "search")

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != "fts.note" {
		t.Errorf("path = %q", results[0].Path)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "gone.note", "Vanishing Entry", "g")
	_ = db.DeleteHeader("gone.note")

	results, _ := db.Search("vanishing", 10)
	for _, r := range results {
		if r.Path == "gone.note" {
			t.Error("deleted note still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "evo.note", "Original Draft", "1")
	mustUpsert(t, db, "evo.note", "Replacement Copy", "2")

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Title != "Replacement Copy" {
		t.Errorf("FTS not updated: %+v", results)
	}
}

func TestFTS5_TagSearch(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "tagged.note", "Untitled", "t", "quarterly", "finance")

	results, err := db.Search("quarterly", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "tagged.note" {
		t.Errorf("tag search = %+v", results)
	}
}
