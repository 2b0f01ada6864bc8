package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestArticleID(t *testing.T) {
	id := ArticleID("https://example.com/a", "Title A")

	if len(id) != 16 {
		t.Errorf("ID length = %d, want 16", len(id))
	}
	if id != strings.ToLower(id) {
		t.Errorf("ID %q is not lowercase hex", id)
	}
	if again := ArticleID("https://example.com/a", "Title A"); again != id {
		t.Errorf("ID not deterministic: %q vs %q", id, again)
	}
	if other := ArticleID("https://example.com/b", "Title A"); other == id {
		t.Error("different links must produce different IDs")
	}
	if other := ArticleID("https://example.com/a", "Title B"); other == id {
		t.Error("different titles must produce different IDs")
	}
}

func TestArticleJSONFieldNames(t *testing.T) {
	a := Article{
		ID:    "abc",
		Title: "hello",
		Link:  "https://example.com",
		Week:  "2025-W31",
	}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, field := range []string{`"id"`, `"title"`, `"link"`, `"week"`, `"source"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("marshaled article missing %s: %s", field, data)
		}
	}
	if strings.Contains(string(data), `"summary"`) {
		t.Errorf("empty summary should be omitted: %s", data)
	}
}
