package rssfeeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"newsweave/store"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <item>
      <title>Model release</title>
      <link>https://example.com/model-release</link>
      <description>&lt;p&gt;A new &lt;b&gt;model&lt;/b&gt; shipped.&lt;/p&gt;</description>
      <pubDate>Fri, 01 Aug 2025 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Chip shortage</title>
      <link>https://example.com/chip-shortage</link>
      <description>GPUs remain scarce.</description>
      <pubDate>Thu, 31 Jul 2025 08:30:00 GMT</pubDate>
    </item>
    <item>
      <title>Undated entry</title>
      <link>https://example.com/undated</link>
      <description>No pubDate on this one.</description>
    </item>
  </channel>
</rss>`

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testFetcher(t *testing.T, url string) *Fetcher {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "test_news.json"))
	f := NewFetcher("Test Feed", url, st)
	f.now = func() time.Time { return time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestFetchNew(t *testing.T) {
	srv := feedServer(t, testFeed)
	f := testFetcher(t, srv.URL)

	result, added := f.FetchNew(context.Background(), 10)
	if len(added) != 3 {
		t.Fatalf("added %d articles, want 3", len(added))
	}

	// Latest article by date is reported.
	if result.Title != "Model release" {
		t.Errorf("result.Title = %q, want Model release", result.Title)
	}
	if result.Source != "Test Feed" {
		t.Errorf("result.Source = %q", result.Source)
	}

	byTitle := make(map[string]int)
	for i, a := range added {
		byTitle[a.Title] = i
	}

	first := added[byTitle["Model release"]]
	if first.Week != "2025-W31" {
		t.Errorf("week tag = %q, want 2025-W31", first.Week)
	}
	if first.Content != "A new model shipped." {
		t.Errorf("content = %q, markup not stripped", first.Content)
	}
	if first.ID == "" || first.Link != "https://example.com/model-release" {
		t.Errorf("article not normalized: %+v", first)
	}

	// The undated entry falls back to the current week of the injected clock.
	undated := added[byTitle["Undated entry"]]
	if undated.Week != "2025-W31" {
		t.Errorf("undated week = %q, want fallback 2025-W31", undated.Week)
	}
}

func TestFetchNewIsIdempotent(t *testing.T) {
	srv := feedServer(t, testFeed)
	f := testFetcher(t, srv.URL)

	_, added := f.FetchNew(context.Background(), 10)
	if len(added) != 3 {
		t.Fatalf("first fetch added %d, want 3", len(added))
	}

	result, again := f.FetchNew(context.Background(), 10)
	if len(again) != 0 {
		t.Fatalf("second fetch added %d, want 0", len(again))
	}
	// Still reports the latest stored article.
	if result.Title != "Model release" {
		t.Errorf("result.Title = %q after re-fetch", result.Title)
	}

	if got := len(f.Store.Load()); got != 3 {
		t.Errorf("store has %d articles after re-fetch, want 3", got)
	}
}

func TestFetchRespectsMaxArticles(t *testing.T) {
	srv := feedServer(t, testFeed)
	f := testFetcher(t, srv.URL)

	_, added := f.FetchNew(context.Background(), 1)
	if len(added) != 1 {
		t.Fatalf("added %d articles, want 1", len(added))
	}
}

func TestFetchNonPositiveMaxArticles(t *testing.T) {
	srv := feedServer(t, testFeed)

	for _, max := range []int{-1, 0} {
		f := testFetcher(t, srv.URL)
		result, added := f.FetchNew(context.Background(), max)
		if len(added) != 0 {
			t.Errorf("max=%d added %d articles, want 0", max, len(added))
		}
		if result.NewsText != "No news articles found" {
			t.Errorf("max=%d result = %q", max, result.NewsText)
		}
	}
}

func TestFetchBrokenSource(t *testing.T) {
	srv := feedServer(t, "this is not xml")
	f := testFetcher(t, srv.URL)

	result := f.Fetch(context.Background(), 10)
	if result.Source != "Test Feed" {
		t.Errorf("result.Source = %q", result.Source)
	}
	if result.Title != "" {
		t.Errorf("error result should have no title, got %q", result.Title)
	}
	if result.NewsText == "" {
		t.Error("error result should carry a message")
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct{ in, want string }{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"plain text", "plain text"},
		{"  padded  ", "padded"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
