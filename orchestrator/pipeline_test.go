package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"newsweave/aggregate"
	"newsweave/config"
)

const pipelineFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Pipeline Feed</title>
    <link>https://example.com</link>
    <item>
      <title>Big launch</title>
      <link>https://example.com/launch</link>
      <description>Something launched.</description>
      <pubDate>Fri, 01 Aug 2025 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func TestRunOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(pipelineFeed))
	}))
	defer srv.Close()

	cfg := &config.Config{
		DataDir:              t.TempDir(),
		Sources:              []config.Source{{Name: "Pipeline Feed", URL: srv.URL}},
		MaxArticlesPerSource: 10,
	}

	p := New(cfg, nil, nil, nil)
	p.now = func() time.Time { return time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC) }

	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	bundle, err := aggregate.LoadBundle(cfg.DataDir, "2025-W31")
	if err != nil {
		t.Fatalf("combined bundle missing: %v", err)
	}
	if bundle.ArticleCount != 1 || bundle.Articles[0].Title != "Big launch" {
		t.Errorf("bundle = %+v", bundle)
	}
	if bundle.Articles[0].Summary == "" {
		t.Error("summary placeholder missing")
	}

	if _, err := os.Stat(aggregate.SourceWeekPath(cfg.DataDir, "Pipeline Feed", "2025-W31")); err != nil {
		t.Errorf("per-source artifact missing: %v", err)
	}

	// Re-running is idempotent on article count.
	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("second RunOnce failed: %v", err)
	}
	bundle, err = aggregate.LoadBundle(cfg.DataDir, "2025-W31")
	if err != nil {
		t.Fatal(err)
	}
	if bundle.ArticleCount != 1 {
		t.Errorf("article count after re-run = %d, want 1", bundle.ArticleCount)
	}
}

func TestRunOnceNoArticles(t *testing.T) {
	cfg := &config.Config{
		DataDir:              t.TempDir(),
		Sources:              []config.Source{},
		MaxArticlesPerSource: 10,
	}
	p := New(cfg, nil, nil, nil)
	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce with no sources failed: %v", err)
	}
}
