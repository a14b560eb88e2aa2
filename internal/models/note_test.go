package models

import (
	"reflect"
	"testing"
)

func TestIsNoteFile(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"foo.note.md", true},
		{"note.txt", true},
		{"x.y.note", true},
		{"note", true},
		{"NOTE.TXT", true},
		{"Foo.Note.md", true},
		{".note", true},
		{"notebook.txt", false},
		{"mynote.txt", false},
		{"notes.txt", false},
		{"foonote.md", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsNoteFile(c.name); got != c.want {
			t.Errorf("IsNoteFile(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"Work", "  urgent ", "work", "", "WORK"})
	want := []string{"work", "urgent"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags = %v, want %v", got, want)
	}
}

func TestNormalizeTags_Empty(t *testing.T) {
	if got := NormalizeTags(nil); got != nil {
		t.Errorf("NormalizeTags(nil) = %v, want nil", got)
	}
	if got := NormalizeTags([]string{"", "  "}); got != nil {
		t.Errorf("NormalizeTags(blank) = %v, want nil", got)
	}
}
