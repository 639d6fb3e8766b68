package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openagg/article-aggregator/app/database"
)

// Catalog is the registry of feed sources: manual registration, bulk
// import, enable/disable and deletion.
type Catalog struct {
	sources database.SourceRepository
}

func NewCatalog(sources database.SourceRepository) *Catalog {
	return &Catalog{sources: sources}
}

// Candidate is one import entry, typically parsed from an OPML outline.
type Candidate struct {
	Name    string
	FeedURL string
}

type ImportStats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Existing int `json:"existing"`
}

// AddSource registers a single feed. Empty category/language are derived
// from the name by the classifier. Returns database.ErrDuplicateSource if
// the feed URL is already registered.
func (c *Catalog) AddSource(name, feedURL, category, language string) (*database.Source, error) {
	source := c.buildSource(name, feedURL, category, language)

	if err := c.sources.InsertSource(source); err != nil {
		return nil, err
	}

	slog.Info("Source registered", "source", source.Name, "url", source.FeedURL, "category", source.Category)
	return source, nil
}

// ImportSources registers every candidate with a non-empty feed URL,
// skipping URLs that are already present. Importing the same input twice
// yields new=0 the second time.
func (c *Catalog) ImportSources(candidates []Candidate) (ImportStats, error) {
	stats := ImportStats{}

	for _, candidate := range candidates {
		stats.Total++

		if candidate.FeedURL == "" {
			continue
		}

		source := c.buildSource(candidate.Name, candidate.FeedURL, "", "")
		err := c.sources.InsertSource(source)
		if errors.Is(err, database.ErrDuplicateSource) {
			stats.Existing++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("failed to import source %q: %w", candidate.Name, err)
		}

		stats.New++
		slog.Debug("Source imported", "source", source.Name, "url", source.FeedURL)
	}

	slog.Info("Source import completed", "total", stats.Total, "new", stats.New, "existing", stats.Existing)
	return stats, nil
}

func (c *Catalog) ListSources(enabledOnly bool) ([]database.Source, error) {
	return c.sources.ListSources(enabledOnly)
}

// SetEnabled toggles a source. Unknown IDs surface
// database.ErrSourceNotFound so callers can tell absence from success.
func (c *Catalog) SetEnabled(id int64, enabled bool) error {
	return c.sources.SetSourceEnabled(id, enabled)
}

// DeleteSource removes the registry entry only; previously ingested
// articles keep their dangling source reference.
func (c *Catalog) DeleteSource(id int64) error {
	return c.sources.DeleteSource(id)
}

func (c *Catalog) buildSource(name, feedURL, category, language string) *database.Source {
	return &database.Source{
		Name:     name,
		Title:    name,
		FeedURL:  feedURL,
		Category: cmp.Or(category, Categorize(name)),
		Language: cmp.Or(language, DetectLanguage(name)),
		Enabled:  true,
	}
}
