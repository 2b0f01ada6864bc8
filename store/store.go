// Package store persists per-source article lists as indented JSON arrays.
// The files are append-only in effect: each persist rewrites the whole file
// with existing records first, in their original order, followed by new ones.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"newsweave/types"
)

// Slug converts a source name to its file-name form
// ("MIT AI News" -> "mit_ai_news").
func Slug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "_"))
}

// ForSource returns the per-source store under dataDir, e.g.
// data/techmeme_news.json.
func ForSource(dataDir, source string) *Store {
	return New(filepath.Join(dataDir, Slug(source)+"_news.json"))
}

// Store is a flat-file article store for one source. It is not safe for
// concurrent writers; the pipeline runs as a single periodic job.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load reads all articles from the store. A missing or corrupt file is
// treated as "no existing data", never an error.
func (s *Store) Load() []types.Article {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var articles []types.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil
	}
	return articles
}

// KnownIDs returns the set of article IDs currently in the store.
func (s *Store) KnownIDs() map[string]bool {
	articles := s.Load()
	ids := make(map[string]bool, len(articles))
	for _, a := range articles {
		if a.ID != "" {
			ids[a.ID] = true
		}
	}
	return ids
}

// AppendAndPersist writes existing + new articles back to disk. Existing
// records are never reordered or removed. Callers are expected to have
// filtered newItems against KnownIDs already.
func (s *Store) AppendAndPersist(newItems []types.Article) error {
	merged := append(s.Load(), newItems...)
	return s.Persist(merged)
}

// Persist overwrites the store with the given list.
func (s *Store) Persist(articles []types.Article) error {
	if articles == nil {
		articles = []types.Article{}
	}
	data, err := json.MarshalIndent(articles, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	return nil
}
