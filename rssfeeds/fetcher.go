package rssfeeds

import (
	"context"
	"fmt"
	"log"
	"time"

	"newsweave/store"
	"newsweave/types"
	"newsweave/week"

	"github.com/mmcdole/gofeed"
)

// Fetcher pulls one configured RSS/Atom feed, deduplicates entries against
// the per-source store by content-hash ID, and persists new articles.
type Fetcher struct {
	Source string
	URL    string
	Store  *store.Store
	// ExtractFull enables readability-based full-content extraction for new
	// articles before they are persisted.
	ExtractFull bool

	parser *gofeed.Parser
	now    func() time.Time
}

func NewFetcher(source, url string, st *store.Store) *Fetcher {
	return &Fetcher{
		Source: source,
		URL:    url,
		Store:  st,
		parser: gofeed.NewParser(),
		now:    time.Now,
	}
}

// Fetch runs one fetch cycle and returns a result describing the latest
// article. Any failure is converted into an error placeholder result; a
// single broken source never aborts the broader pipeline.
func (f *Fetcher) Fetch(ctx context.Context, maxArticles int) types.FetchResult {
	result, _ := f.FetchNew(ctx, maxArticles)
	return result
}

// FetchNew is Fetch plus the list of articles added in this cycle, for
// callers that publish ingestion events downstream.
func (f *Fetcher) FetchNew(ctx context.Context, maxArticles int) (types.FetchResult, []types.Article) {
	feed, err := f.parser.ParseURLWithContext(f.URL, ctx)
	if err != nil {
		log.Printf("[%s] feed fetch failed: %v", f.Source, err)
		return f.errorResult(fmt.Errorf("error fetching news: %w", err)), nil
	}
	if len(feed.Items) == 0 {
		return types.FetchResult{NewsText: "No news articles found", Source: f.Source}, nil
	}

	existing := f.Store.Load()
	known := make(map[string]bool, len(existing))
	for _, a := range existing {
		known[a.ID] = true
	}

	// Clamp so a misconfigured limit can never slice out of range.
	count := min(len(feed.Items), max(maxArticles, 0))
	var added []types.Article
	for _, item := range feed.Items[:count] {
		id := types.ArticleID(item.Link, item.Title)
		if known[id] {
			log.Printf("[%s] skipping existing article: %s", f.Source, item.Title)
			continue
		}
		known[id] = true
		added = append(added, f.buildArticle(id, item))
	}

	if f.ExtractFull && len(added) > 0 {
		ExtractAllContent(added)
	}

	if len(added) > 0 {
		if err := f.Store.AppendAndPersist(added); err != nil {
			log.Printf("[%s] persist failed: %v", f.Source, err)
			return f.errorResult(fmt.Errorf("error saving articles: %w", err)), nil
		}
		log.Printf("[%s] added %d new article(s)", f.Source, len(added))
	}

	// Report the latest new article if any were added, otherwise the latest
	// already-stored one.
	if latest, ok := latestByDate(added); ok {
		return f.resultFor(latest), added
	}
	if latest, ok := latestByDate(existing); ok {
		return f.resultFor(latest), nil
	}
	return types.FetchResult{NewsText: "No news articles found", Source: f.Source}, nil
}

// buildArticle normalizes a feed item: richest available text body with
// markup stripped, and a week tag from the entry's own publish date (current
// week only when the date cannot be parsed).
func (f *Fetcher) buildArticle(id string, item *gofeed.Item) types.Article {
	body := item.Content
	if body == "" {
		body = item.Description
	}

	dateStr := item.Published
	if dateStr == "" {
		dateStr = item.Updated
	}

	weekTag := week.Tag(f.now())
	if parsed, ok := week.Parse(dateStr); ok {
		weekTag = week.Tag(parsed)
	}

	return types.Article{
		ID:          id,
		Date:        dateStr,
		Title:       item.Title,
		Link:        item.Link,
		Description: item.Description,
		Content:     StripHTML(body),
		Week:        weekTag,
		Source:      f.Source,
		ProcessedAt: f.now(),
	}
}

func (f *Fetcher) resultFor(a types.Article) types.FetchResult {
	return types.FetchResult{
		NewsText: a.Content,
		Title:    a.Title,
		Link:     a.Link,
		Date:     a.Date,
		Source:   a.Source,
	}
}

func (f *Fetcher) errorResult(err error) types.FetchResult {
	return types.FetchResult{NewsText: err.Error(), Source: f.Source}
}

// latestByDate picks the article with the greatest parsed date; articles
// with unparsable dates sort as the minimum date.
func latestByDate(articles []types.Article) (types.Article, bool) {
	if len(articles) == 0 {
		return types.Article{}, false
	}
	best := 0
	bestDate, _ := week.Parse(articles[0].Date)
	for i := 1; i < len(articles); i++ {
		d, _ := week.Parse(articles[i].Date)
		if d.After(bestDate) {
			best, bestDate = i, d
		}
	}
	return articles[best], true
}
