package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Article is a single feed entry after normalization. The same record shape
// is used in per-source stores and weekly bundles; Summary is filled in by
// the aggregator after the fact.
type Article struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content"`
	Week        string    `json:"week"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// WeeklyBundle is the combined artifact for one ISO week across all sources.
// Articles are sorted by parsed date descending; every article carries the
// bundle's week tag and a non-empty summary.
type WeeklyBundle struct {
	Week         string    `json:"week"`
	StartOfWeek  time.Time `json:"start_of_week"`
	EndOfWeek    time.Time `json:"end_of_week"`
	ArticleCount int       `json:"article_count"`
	Sources      []string  `json:"sources"`
	Articles     []Article `json:"articles"`
}

// FetchResult describes the outcome of a single source fetch. On success it
// carries the latest article; on failure NewsText holds an explanation so a
// broken source never aborts the rest of the pipeline.
type FetchResult struct {
	NewsText string `json:"news_text"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Date     string `json:"date"`
	Source   string `json:"source"`
}

// ArticleID derives the dedup key for a feed entry: a short, stable hash of
// link and title concatenated with no separator. Identical (link, title)
// pairs always produce identical IDs. This is content addressing, not a
// security token.
func ArticleID(link, title string) string {
	hash := sha256.Sum256([]byte(link + title))
	return hex.EncodeToString(hash[:])[:16]
}
