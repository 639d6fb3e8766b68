package feed

import (
	"time"
)

// Entry is the normalized intermediate record produced at the parse
// boundary. Every field is optional; defaults are applied in one place,
// when the fetcher turns an Entry into an Article:
//
//	Title     -> "Untitled"
//	Author    -> the source name
//	Published -> ingestion time
//
// Entries without a Link are skipped entirely.
type Entry struct {
	Title     string
	Link      string
	Author    string
	Summary   string
	Published *time.Time
}

// FetchStats aggregates one FetchAll run
type FetchStats struct {
	SourcesFetched int `json:"sources_fetched"`
	NewArticles    int `json:"new_articles"`
	Errors         int `json:"errors"`
}

// ExtractStats aggregates one ExtractBatch run
type ExtractStats struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}
