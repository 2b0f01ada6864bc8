package store

import (
	"os"
	"path/filepath"
	"testing"

	"newsweave/types"
)

func TestSlug(t *testing.T) {
	tests := []struct{ name, want string }{
		{"MIT AI News", "mit_ai_news"},
		{"Techmeme", "techmeme"},
		{"  Spaced   Out  ", "spaced_out"},
	}
	for _, tt := range tests {
		if got := Slug(tt.name); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestForSource(t *testing.T) {
	s := ForSource("data", "MIT AI News")
	want := filepath.Join("data", "mit_ai_news_news.json")
	if s.Path() != want {
		t.Errorf("path = %q, want %q", s.Path(), want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing.json"))
	if got := s.Load(); got != nil {
		t.Errorf("Load of missing file = %v, want nil", got)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := New(path).Load(); got != nil {
		t.Errorf("Load of corrupt file = %v, want nil", got)
	}
}

func TestAppendAndPersist(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "sub", "articles.json"))

	first := []types.Article{
		{ID: "a1", Title: "First", Link: "https://example.com/1"},
		{ID: "a2", Title: "Second", Link: "https://example.com/2"},
	}
	if err := s.AppendAndPersist(first); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	second := []types.Article{{ID: "a3", Title: "Third", Link: "https://example.com/3"}}
	if err := s.AppendAndPersist(second); err != nil {
		t.Fatalf("second persist failed: %v", err)
	}

	got := s.Load()
	if len(got) != 3 {
		t.Fatalf("loaded %d articles, want 3", len(got))
	}
	// Existing records keep their order; new ones append.
	for i, wantID := range []string{"a1", "a2", "a3"} {
		if got[i].ID != wantID {
			t.Errorf("article[%d].ID = %q, want %q", i, got[i].ID, wantID)
		}
	}

	ids := s.KnownIDs()
	if len(ids) != 3 || !ids["a1"] || !ids["a2"] || !ids["a3"] {
		t.Errorf("KnownIDs = %v", ids)
	}
}

func TestPersistNilWritesEmptyArray(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "empty.json"))
	if err := s.Persist(nil); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("file content = %q, want []", data)
	}
}
