package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxSummaryLength = 500

// CleanSummary strips markup from a feed-supplied summary, collapses
// whitespace and caps the length.
func CleanSummary(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return truncate(html)
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")
	return truncate(text)
}

func truncate(s string) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= maxSummaryLength {
		return string(runes)
	}
	return string(runes[:maxSummaryLength])
}
