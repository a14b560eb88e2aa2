package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func tempTree(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir, nil)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempTree(t)
	content := []byte("My Title\n[work]\n")
	if err := s.Write("a.note.txt", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a.note.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempTree(t)
	if err := s.Write("a/b/c.note", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.note")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("del.note.md", []byte("bye"))
	if err := s.Delete("del.note.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.note.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestMove(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("old.note.md", []byte("data"))
	if err := s.Move("old.note.md", "sub/new.note.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("sub/new.note.md")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("old.note.md"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestPaths_SelectsByNameConvention(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("a.note.txt", []byte("a"))
	_ = s.Write("note.txt", []byte("b"))
	_ = s.Write("x.y.note", []byte("c"))
	_ = s.Write("sub/d.NOTE.md", []byte("d"))
	_ = s.Write("notebook.txt", []byte("not a note"))
	_ = s.Write("readme.md", []byte("not a note either"))

	got, err := s.Paths("")
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	want := []string{"a.note.txt", "note.txt", filepath.Join("sub", "d.NOTE.md"), "x.y.note"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Paths = %v, want %v", got, want)
	}
}

func TestPaths_Sorted(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("z.note", []byte("z"))
	_ = s.Write("a.note", []byte("a"))
	_ = s.Write("m.note", []byte("m"))

	got, err := s.Paths("")
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	want := []string{"a.note", "m.note", "z.note"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Paths = %v, want %v", got, want)
	}
}

func TestPaths_SkipsSymlinks(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("real.note", []byte("r"))
	if err := os.Symlink(
		filepath.Join(s.root, "real.note"),
		filepath.Join(s.root, "alias.note"),
	); err != nil {
		t.Skipf("symlink: %v", err)
	}

	got, err := s.Paths("")
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"real.note"}) {
		t.Errorf("Paths = %v, want [real.note]", got)
	}
}

func TestExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFS(dir, []string{"drafts/**", "*.bak.note"})
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	_ = s.Write("keep.note", []byte("k"))
	_ = s.Write("old.bak.note", []byte("o"))
	_ = s.Write("drafts/wip.note", []byte("w"))
	_ = s.Write("final/done.note", []byte("d"))

	got, err := s.Paths("")
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	want := []string{filepath.Join("final", "done.note"), "keep.note"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Paths = %v, want %v", got, want)
	}
}

func TestNewFS_BadExcludePattern(t *testing.T) {
	_, err := NewFS(t.TempDir(), []string{"[unterminated"})
	if err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestList_MetadataAndOrder(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("b.note", []byte("second"))
	_ = s.Write("a.note", []byte("first"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Path != "a.note" || items[1].Path != "b.note" {
		t.Errorf("order = [%s %s]", items[0].Path, items[1].Path)
	}
	if items[0].Checksum == "" || items[0].Checksum == items[1].Checksum {
		t.Error("checksums should be present and distinct")
	}
}

func TestPaths_UnreadableSubdirSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	s := tempTree(t)
	_ = s.Write("ok.note", []byte("ok"))
	_ = s.Write("locked/hidden.note", []byte("h"))
	if err := os.Chmod(filepath.Join(s.root, "locked"), 0o000); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(s.root, "locked"), 0o755) })

	got, err := s.Paths("")
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"ok.note"}) {
		t.Errorf("Paths = %v, want [ok.note]", got)
	}
}

func TestPaths_ListsUnreadableFiles(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	s := tempTree(t)
	_ = s.Write("b.note.txt", []byte("secret"))
	if err := os.Chmod(filepath.Join(s.root, "b.note.txt"), 0o000); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(s.root, "b.note.txt"), 0o644) })

	// Selection is by name only: the file stays listed so its read failure
	// can be reported at extraction time.
	got, err := s.Paths("")
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"b.note.txt"}) {
		t.Errorf("Paths = %v, want [b.note.txt]", got)
	}

	// List, by contrast, needs the content checksum and drops it.
	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("List = %v, want empty", items)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempTree(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.note",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	// The rename is atomic on POSIX, so a concurrent reader sees either the
	// old or the new content, never a mix.
	s := tempTree(t)
	original := []byte("original content")
	_ = s.Write("atomic.note", original)

	updated := []byte("updated content")
	if err := s.Write("atomic.note", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.note")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(s.root, ".sowilo-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/sowilo-does-not-exist-"+t.Name(), nil)
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "sowilo-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name(), nil)
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
