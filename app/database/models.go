package database

import (
	"time"
)

// Article extraction states. Articles are inserted as pending and move to
// fetched or failed exactly once; requeue is the only way back to pending.
const (
	StatePending = "pending"
	StateFetched = "fetched"
	StateFailed  = "failed"
)

// Source represents a registered feed in the database
type Source struct {
	ID            int64
	Name          string
	Title         string
	FeedURL       string // unique, the registration key
	Category      string
	Language      string
	Enabled       bool
	LastFetchedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Article represents one ingested feed entry in the database
type Article struct {
	ID          string // "ART_" + 12 hex chars of sha256(url)
	SourceID    int64  // weak reference, survives source deletion
	Title       string
	Author      string
	URL         string // unique, the deduplication key
	Summary     string
	Content     string
	PublishedAt time.Time
	Category    string
	Language    string
	State       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
