package feed

import (
	"bytes"
	"fmt"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses raw feed data into normalized entries, in feed order.
func (p *Parser) Run(data []byte) ([]Entry, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entries = append(entries, p.normalizeItem(item))
	}

	return entries, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Entry {
	entry := Entry{
		Title:   item.Title,
		Link:    item.Link,
		Summary: item.Description,
	}

	if item.PublishedParsed != nil {
		entry.Published = item.PublishedParsed
	} else if item.Published != "" {
		// gofeed gave up on the date format; try the lenient parser before
		// falling back to ingestion time
		if parsed, err := dateparse.ParseAny(item.Published); err == nil {
			entry.Published = &parsed
		}
	}

	entry.Author = p.extractAuthor(item)

	return entry
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil && item.Authors[0].Name != "" {
		return item.Authors[0].Name
	}
	if item.Author != nil {
		return item.Author.Name
	}
	return ""
}
