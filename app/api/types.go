package api

import (
	"time"

	"github.com/openagg/article-aggregator/app/catalog"
	"github.com/openagg/article-aggregator/app/database"
	"github.com/openagg/article-aggregator/app/tasks"
)

type Handler struct {
	catalog     *catalog.Catalog
	sourceRepo  database.SourceRepository
	articleRepo database.ArticleRepository
	scheduler   tasks.TaskSchedulerInterface
}

type AddSourceRequest struct {
	Name     string `json:"name" binding:"required"`
	URL      string `json:"url" binding:"required"`
	Category string `json:"category"`
	Language string `json:"language"`
}

type ImportOPMLRequest struct {
	Path string `json:"path" binding:"required"`
}

type SourceResponse struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Category      string     `json:"category"`
	Language      string     `json:"language"`
	Enabled       bool       `json:"enabled"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newSourceResponse(source database.Source) SourceResponse {
	return SourceResponse{
		ID:            source.ID,
		Name:          source.Name,
		Title:         source.Title,
		URL:           source.FeedURL,
		Category:      source.Category,
		Language:      source.Language,
		Enabled:       source.Enabled,
		LastFetchedAt: source.LastFetchedAt,
		CreatedAt:     source.CreatedAt,
	}
}

type ArticleResponse struct {
	ID          string    `json:"id"`
	SourceID    int64     `json:"source_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	URL         string    `json:"url"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Category    string    `json:"category"`
	Language    string    `json:"language"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
}

func newArticleResponse(article database.Article, includeContent bool) ArticleResponse {
	resp := ArticleResponse{
		ID:          article.ID,
		SourceID:    article.SourceID,
		Title:       article.Title,
		Author:      article.Author,
		URL:         article.URL,
		Summary:     article.Summary,
		PublishedAt: article.PublishedAt,
		Category:    article.Category,
		Language:    article.Language,
		State:       article.State,
		CreatedAt:   article.CreatedAt,
	}
	if includeContent {
		resp.Content = article.Content
	}
	return resp
}
