package feed

import (
	"time"

	"github.com/openagg/article-aggregator/app/database"
)

// mockSourceRepo implements database.SourceRepository for fetcher tests
type mockSourceRepo struct {
	sources     []database.Source
	lastFetched map[int64]time.Time
}

func (m *mockSourceRepo) InsertSource(source *database.Source) error {
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
	return database.ErrSourceNotFound
}

func (m *mockSourceRepo) UpdateLastFetched(id int64, fetchedAt time.Time) error {
	if m.lastFetched == nil {
		m.lastFetched = make(map[int64]time.Time)
	}
	m.lastFetched[id] = fetchedAt
	return nil
}

func (m *mockSourceRepo) GetSourceCount() (int, error) {
	return len(m.sources), nil
}

// mockArticleRepo implements database.ArticleRepository backed by a slice,
// enforcing URL uniqueness the way the real repository does.
type mockArticleRepo struct {
	articles []database.Article
}

func (m *mockArticleRepo) InsertArticle(article *database.Article) (bool, error) {
	for _, existing := range m.articles {
		if existing.URL == article.URL {
			return false, nil
		}
	}
	m.articles = append(m.articles, *article)
	return true, nil
}

func (m *mockArticleRepo) GetArticle(id string) (*database.Article, error) {
	for _, article := range m.articles {
		if article.ID == id {
			return &article, nil
		}
	}
	return nil, nil
}

func (m *mockArticleRepo) GetArticleByURL(url string) (*database.Article, error) {
	for _, article := range m.articles {
		if article.URL == url {
			return &article, nil
		}
	}
	return nil, nil
}

func (m *mockArticleRepo) ListArticles(opts database.ArticleListOptions) ([]database.Article, error) {
	return m.articles, nil
}

func (m *mockArticleRepo) ListArticlesByState(state string, limit int) ([]database.Article, error) {
	var result []database.Article
	for _, article := range m.articles {
		if article.State != state {
			continue
		}
		result = append(result, article)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *mockArticleRepo) UpdateArticleContent(id string, content string, state string) error {
	for i := range m.articles {
		if m.articles[i].ID == id {
			m.articles[i].Content = content
			m.articles[i].State = state
			return nil
		}
	}
	return database.ErrArticleNotFound
}

func (m *mockArticleRepo) RequeueArticle(id string) error {
	for i := range m.articles {
		if m.articles[i].ID == id {
			m.articles[i].State = database.StatePending
			return nil
		}
	}
	return database.ErrArticleNotFound
}

func (m *mockArticleRepo) DeleteArticle(id string) error {
	return database.ErrArticleNotFound
}

func (m *mockArticleRepo) GetArticleCount() (int, error) {
	return len(m.articles), nil
}

func (m *mockArticleRepo) GetArticleStateCounts() (map[string]int, error) {
	counts := make(map[string]int)
	for _, article := range m.articles {
		counts[article.State]++
	}
	return counts, nil
}

func (m *mockArticleRepo) countByState(state string) int {
	count := 0
	for _, article := range m.articles {
		if article.State == state {
			count++
		}
	}
	return count
}
