package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/openagg/article-aggregator/app/database"
)

// mockSourceRepo implements database.SourceRepository backed by a slice,
// enforcing feed URL uniqueness the way the real repository does.
type mockSourceRepo struct {
	sources []database.Source
	nextID  int64
}

func (m *mockSourceRepo) InsertSource(source *database.Source) error {
	for _, existing := range m.sources {
		if existing.FeedURL == source.FeedURL {
			return database.ErrDuplicateSource
		}
	}
	m.nextID++
	source.ID = m.nextID
	m.sources = append(m.sources, *source)
	return nil
}

func (m *mockSourceRepo) GetSource(id int64) (*database.Source, error) {
	for _, source := range m.sources {
		if source.ID == id {
			return &source, nil
		}
	}
	return nil, nil
}

func (m *mockSourceRepo) GetSourceByFeedURL(feedURL string) (*database.Source, error) {
	for _, source := range m.sources {
		if source.FeedURL == feedURL {
			return &source, nil
		}
	}
	return nil, nil
}

func (m *mockSourceRepo) ListSources(enabledOnly bool) ([]database.Source, error) {
	var result []database.Source
	for _, source := range m.sources {
		if enabledOnly && !source.Enabled {
			continue
		}
		result = append(result, source)
	}
	return result, nil
}

func (m *mockSourceRepo) SetSourceEnabled(id int64, enabled bool) error {
	for i := range m.sources {
		if m.sources[i].ID == id {
			m.sources[i].Enabled = enabled
			return nil
		}
	}
	return database.ErrSourceNotFound
}

func (m *mockSourceRepo) DeleteSource(id int64) error {
	for i := range m.sources {
		if m.sources[i].ID == id {
			m.sources = append(m.sources[:i], m.sources[i+1:]...)
			return nil
		}
	}
	return database.ErrSourceNotFound
}

func (m *mockSourceRepo) UpdateLastFetched(id int64, fetchedAt time.Time) error {
	for i := range m.sources {
		if m.sources[i].ID == id {
			m.sources[i].LastFetchedAt = &fetchedAt
			return nil
		}
	}
	return database.ErrSourceNotFound
}

func (m *mockSourceRepo) GetSourceCount() (int, error) {
	return len(m.sources), nil
}

func TestAddSource_DerivesCategoryAndLanguage(t *testing.T) {
	c := NewCatalog(&mockSourceRepo{})

	source, err := c.AddSource("OpenAI Engineering Blog", "https://x.test/feed", "", "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if source.Category != CategoryAI {
		t.Errorf("Expected derived category %s, got %s", CategoryAI, source.Category)
	}
	if source.Language != LanguageEnglish {
		t.Errorf("Expected derived language %s, got %s", LanguageEnglish, source.Language)
	}
	if !source.Enabled {
		t.Error("Expected new source to be enabled")
	}
	if source.Title != "OpenAI Engineering Blog" {
		t.Errorf("Expected title to default to name, got %q", source.Title)
	}
}

func TestAddSource_ExplicitOverridesWin(t *testing.T) {
	c := NewCatalog(&mockSourceRepo{})

	source, err := c.AddSource("OpenAI Engineering Blog", "https://x.test/feed", CategoryProduct, LanguageChinese)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if source.Category != CategoryProduct {
		t.Errorf("Expected explicit category to be kept, got %s", source.Category)
	}
	if source.Language != LanguageChinese {
		t.Errorf("Expected explicit language to be kept, got %s", source.Language)
	}
}

func TestAddSource_Duplicate(t *testing.T) {
	c := NewCatalog(&mockSourceRepo{})

	if _, err := c.AddSource("X", "https://x.test/feed", "", ""); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	_, err := c.AddSource("X again", "https://x.test/feed", "", "")
	if !errors.Is(err, database.ErrDuplicateSource) {
		t.Errorf("Expected ErrDuplicateSource, got: %v", err)
	}
}

func TestImportSources_Idempotent(t *testing.T) {
	c := NewCatalog(&mockSourceRepo{})

	candidates := []Candidate{{Name: "X", FeedURL: "https://x.test/feed"}}

	first, err := c.ImportSources(candidates)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if first.Total != 1 || first.New != 1 || first.Existing != 0 {
		t.Errorf("Expected {1,1,0} on first import, got %+v", first)
	}

	second, err := c.ImportSources(candidates)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if second.Total != 1 || second.New != 0 || second.Existing != 1 {
		t.Errorf("Expected {1,0,1} on second import, got %+v", second)
	}
}

func TestImportSources_SkipsEmptyFeedURL(t *testing.T) {
	repo := &mockSourceRepo{}
	c := NewCatalog(repo)

	stats, err := c.ImportSources([]Candidate{
		{Name: "No URL"},
		{Name: "Valid", FeedURL: "https://valid.test/feed"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if stats.Total != 2 {
		t.Errorf("Expected total 2, got %d", stats.Total)
	}
	if stats.New != 1 {
		t.Errorf("Expected 1 new source, got %d", stats.New)
	}
	if len(repo.sources) != 1 {
		t.Errorf("Expected 1 stored source, got %d", len(repo.sources))
	}
}

func TestSetEnabled_UnknownID(t *testing.T) {
	c := NewCatalog(&mockSourceRepo{})

	err := c.SetEnabled(42, true)
	if !errors.Is(err, database.ErrSourceNotFound) {
		t.Errorf("Expected ErrSourceNotFound, got: %v", err)
	}
}
