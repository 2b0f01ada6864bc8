package rssfeeds

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML extracts the plain text of an HTML fragment. Feed descriptions
// and content bodies regularly arrive as markup; stores only keep text.
func StripHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
