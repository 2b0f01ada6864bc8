package vectorindex

import (
	"fmt"
	"log"

	"newsweave/types"
)

// VectorClient is the slice of Chroma functionality the indexer needs.
type VectorClient interface {
	AddDocuments(docs []Document) error
	QuerySimilar(queryText string, nResults int) (*QueryResults, error)
	ListMetadatas() ([]map[string]interface{}, error)
	Count() (int, error)
	Close() error
}

// Indexer writes weekly bundle articles into the vector store and answers
// search queries. Every persisted bundle article is guaranteed non-null
// title, link, and summary, so documents are always well-formed.
type Indexer struct {
	vector VectorClient
	seen   *SeenLinks // nil disables the fast path
}

func NewIndexer(vector VectorClient, seen *SeenLinks) *Indexer {
	return &Indexer{vector: vector, seen: seen}
}

func (ix *Indexer) Close() error {
	if ix.seen != nil {
		_ = ix.seen.Close()
	}
	return ix.vector.Close()
}

// IndexBundle adds every not-yet-indexed article of a bundle to the
// collection. Returns the number of newly indexed articles.
func (ix *Indexer) IndexBundle(bundle *types.WeeklyBundle) (int, error) {
	if bundle == nil || len(bundle.Articles) == 0 {
		return 0, nil
	}

	existing := ix.existingLinks()

	var docs []Document
	for _, a := range bundle.Articles {
		if ix.isIndexed(existing, a.Link) {
			log.Printf("[index] already indexed: %s", a.Title)
			continue
		}
		docs = append(docs, Document{
			ID:      a.ID,
			Content: documentContent(a),
			Metadata: map[string]interface{}{
				"link":   a.Link,
				"week":   bundle.Week,
				"title":  a.Title,
				"source": a.Source,
			},
		})
	}
	if len(docs) == 0 {
		return 0, nil
	}

	if err := ix.vector.AddDocuments(docs); err != nil {
		return 0, fmt.Errorf("failed to index bundle %s: %w", bundle.Week, err)
	}
	ix.markIndexed(docs)
	return len(docs), nil
}

// IndexArticle adds a single article, used by the Kafka index worker.
func (ix *Indexer) IndexArticle(a types.Article) (bool, error) {
	if ix.isIndexed(ix.existingLinks(), a.Link) {
		return false, nil
	}
	doc := Document{
		ID:      a.ID,
		Content: documentContent(a),
		Metadata: map[string]interface{}{
			"link":   a.Link,
			"week":   a.Week,
			"title":  a.Title,
			"source": a.Source,
		},
	}
	if err := ix.vector.AddDocuments([]Document{doc}); err != nil {
		return false, err
	}
	ix.markIndexed([]Document{doc})
	return true, nil
}

// SearchResult is one search hit with its distance mapped to a confidence.
type SearchResult struct {
	Title      string  `json:"title"`
	Link       string  `json:"link"`
	Week       string  `json:"week"`
	Source     string  `json:"source"`
	Content    string  `json:"content"`
	Confidence float32 `json:"confidence"`
}

// Search runs a similarity query and flattens the Chroma response.
func (ix *Indexer) Search(query string, nResults int) ([]SearchResult, error) {
	if nResults <= 0 {
		nResults = 5
	}
	res, err := ix.vector.QuerySimilar(query, nResults)
	if err != nil {
		return nil, err
	}
	if len(res.IDs) == 0 || len(res.IDs[0]) == 0 {
		return []SearchResult{}, nil
	}

	n := len(res.IDs[0])
	results := make([]SearchResult, 0, n)
	for i := 0; i < n; i++ {
		r := SearchResult{}
		if len(res.Metadatas) > 0 && i < len(res.Metadatas[0]) {
			meta := res.Metadatas[0][i]
			r.Title = metaString(meta, "title")
			r.Link = metaString(meta, "link")
			r.Week = metaString(meta, "week")
			r.Source = metaString(meta, "source")
		}
		if len(res.Documents) > 0 && i < len(res.Documents[0]) {
			r.Content = res.Documents[0][i]
		}
		if len(res.Distances) > 0 && i < len(res.Distances[0]) {
			r.Confidence = DistanceToConfidence(res.Distances[0][i])
		}
		results = append(results, r)
	}
	return results, nil
}

// DistanceToConfidence maps a Chroma distance to a 0..1 score, higher being
// a closer match.
func DistanceToConfidence(distance float32) float32 {
	if distance < 0 {
		distance = 0
	}
	return 1 / (1 + distance)
}

// documentContent is the indexed text, keyed on the fields the UI searches.
func documentContent(a types.Article) string {
	return fmt.Sprintf("title: %s | summary: %s | link: %s | source: %s",
		a.Title, a.Summary, a.Link, a.Source)
}

// existingLinks loads the already-indexed link set from Chroma metadata, the
// fallback dedup path when Redis is not configured. Returns nil on failure;
// the bloom check still applies per article.
func (ix *Indexer) existingLinks() map[string]bool {
	if ix.seen != nil {
		return nil
	}
	metas, err := ix.vector.ListMetadatas()
	if err != nil {
		log.Printf("[index] metadata scan failed (first run?): %v", err)
		return map[string]bool{}
	}
	links := make(map[string]bool, len(metas))
	for _, meta := range metas {
		if link := metaString(meta, "link"); link != "" {
			links[link] = true
		}
	}
	return links
}

func (ix *Indexer) isIndexed(existing map[string]bool, link string) bool {
	if existing != nil {
		return existing[link]
	}
	if ix.seen == nil {
		return false
	}
	found, err := ix.seen.Exists(link)
	if err != nil {
		log.Printf("[index] seen-link check failed: %v", err)
		return false
	}
	return found
}

func (ix *Indexer) markIndexed(docs []Document) {
	if ix.seen == nil {
		return
	}
	for _, doc := range docs {
		if link := metaString(doc.Metadata, "link"); link != "" {
			if err := ix.seen.Add(link); err != nil {
				log.Printf("[index] seen-link add failed: %v", err)
			}
		}
	}
}

func metaString(meta map[string]interface{}, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
