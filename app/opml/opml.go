// Package opml parses OPML outline documents into feed import candidates.
package opml

import (
	"cmp"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/openagg/article-aggregator/app/catalog"
)

type document struct {
	XMLName xml.Name `xml:"opml"`
	Body    body     `xml:"body"`
}

type body struct {
	Outlines []outline `xml:"outline"`
}

type outline struct {
	Type     string    `xml:"type,attr"`
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr"`
	XMLURL   string    `xml:"xmlUrl,attr"`
	Outlines []outline `xml:"outline"`
}

// Parse reads an OPML document and returns one candidate per feed-type
// outline. Grouping outlines are descended into; non-feed outlines are
// dropped. Feed outlines without a URL still become candidates so import
// counts them in its totals before skipping them.
func Parse(r io.Reader) ([]catalog.Candidate, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse OPML document: %w", err)
	}

	var candidates []catalog.Candidate
	collect(doc.Body.Outlines, &candidates)
	return candidates, nil
}

// ParseFile parses the OPML file at path. A missing or unreadable file is
// a hard failure surfaced to the caller.
func ParseFile(path string) ([]catalog.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OPML file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

func collect(outlines []outline, candidates *[]catalog.Candidate) {
	for _, o := range outlines {
		if o.Type == "rss" {
			*candidates = append(*candidates, catalog.Candidate{
				Name:    cmp.Or(o.Text, o.Title),
				FeedURL: o.XMLURL,
			})
		}
		collect(o.Outlines, candidates)
	}
}
