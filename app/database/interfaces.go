package database

import (
	"time"
)

type SourceRepository interface {
	InsertSource(source *Source) error
	GetSource(id int64) (*Source, error)
	GetSourceByFeedURL(feedURL string) (*Source, error)
	ListSources(enabledOnly bool) ([]Source, error)
	SetSourceEnabled(id int64, enabled bool) error
	DeleteSource(id int64) error
	UpdateLastFetched(id int64, fetchedAt time.Time) error
	GetSourceCount() (int, error)
}

type ArticleListOptions struct {
	State    string
	Category string
	Offset   int
	Limit    int
}

type ArticleRepository interface {
	InsertArticle(article *Article) (bool, error)
	GetArticle(id string) (*Article, error)
	GetArticleByURL(url string) (*Article, error)
	ListArticles(opts ArticleListOptions) ([]Article, error)
	ListArticlesByState(state string, limit int) ([]Article, error)
	UpdateArticleContent(id string, content string, state string) error
	RequeueArticle(id string) error
	DeleteArticle(id string) error
	GetArticleCount() (int, error)
	GetArticleStateCounts() (map[string]int, error)
}
