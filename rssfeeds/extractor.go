package rssfeeds

import (
	"fmt"
	"log"
	"sync"
	"time"

	"newsweave/types"

	readability "github.com/go-shiori/go-readability"
)

const (
	workerCount      = 5
	extractorTimeout = 30 * time.Second
)

// ExtractAllContent fetches the linked pages for the given articles and
// replaces their Content with the extracted full text where that succeeds.
// Failures leave the feed-derived content in place.
func ExtractAllContent(articles []types.Article) {
	var wg sync.WaitGroup
	articleChan := make(chan *types.Article, len(articles))

	for i := 0; i < workerCount; i++ {
		go func(workerID int) {
			for article := range articleChan {
				if err := extractContent(article); err != nil {
					log.Printf("[worker %d] extraction failed for %s: %v", workerID, article.Link, err)
				}
				wg.Done()
			}
		}(i)
	}

	for i := range articles {
		wg.Add(1)
		articleChan <- &articles[i]
	}

	wg.Wait()
	close(articleChan)
}

func extractContent(article *types.Article) error {
	if article.Link == "" {
		return fmt.Errorf("article link is empty")
	}

	extracted, err := readability.FromURL(article.Link, extractorTimeout)
	if err != nil {
		return fmt.Errorf("readability extraction failed: %w", err)
	}

	if extracted.TextContent != "" {
		article.Content = extracted.TextContent
	}
	if article.Description == "" {
		article.Description = extracted.Excerpt
	}
	return nil
}
