package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openagg/article-aggregator/app/catalog"
	"github.com/openagg/article-aggregator/app/database"
	"github.com/openagg/article-aggregator/app/opml"
	"github.com/openagg/article-aggregator/app/tasks"
)

func NewHandler(cat *catalog.Catalog, sourceRepo database.SourceRepository,
	articleRepo database.ArticleRepository, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		catalog:     cat,
		sourceRepo:  sourceRepo,
		articleRepo: articleRepo,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		health["sources"] = sourceCount
	}
	if articleCount, err := h.articleRepo.GetArticleCount(); err == nil {
		health["articles"] = articleCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	sourceCount, err := h.sourceRepo.GetSourceCount()
	if err != nil {
		slog.Error("Database error", "operation", "source_count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	articleCount, err := h.articleRepo.GetArticleCount()
	if err != nil {
		slog.Error("Database error", "operation", "article_count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	stateCounts, err := h.articleRepo.GetArticleStateCounts()
	if err != nil {
		slog.Error("Database error", "operation", "state_counts", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sources":           sourceCount,
		"articles":          articleCount,
		"articles_by_state": stateCounts,
	})
}

func (h *Handler) AddSource(c *gin.Context) {
	var req AddSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source, err := h.catalog.AddSource(req.Name, req.URL, req.Category, req.Language)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateSource) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "source with this feed URL already exists"})
			return
		}
		slog.Error("Failed to add source", "name", req.Name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, newSourceResponse(*source))
}

func (h *Handler) ListSources(c *gin.Context) {
	enabledOnly := c.Query("enabled_only") == "true"

	sources, err := h.catalog.ListSources(enabledOnly)
	if err != nil {
		slog.Error("Failed to list sources", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	responses := make([]SourceResponse, 0, len(sources))
	for _, source := range sources {
		responses = append(responses, newSourceResponse(source))
	}

	c.JSON(http.StatusOK, gin.H{"sources": responses, "count": len(responses)})
}

func (h *Handler) ImportOPML(c *gin.Context) {
	var req ImportOPMLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidates, err := opml.ParseFile(req.Path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.catalog.ImportSources(candidates)
	if err != nil {
		slog.Error("OPML import failed", "path", req.Path, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) EnableSource(c *gin.Context) {
	h.setSourceEnabled(c, true)
}

func (h *Handler) DisableSource(c *gin.Context) {
	h.setSourceEnabled(c, false)
}

func (h *Handler) setSourceEnabled(c *gin.Context, enabled bool) {
	id, ok := parseSourceID(c)
	if !ok {
		return
	}

	if err := h.catalog.SetEnabled(id, enabled); err != nil {
		if errors.Is(err, database.ErrSourceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
			return
		}
		slog.Error("Failed to update source", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "enabled": enabled})
}

func (h *Handler) DeleteSource(c *gin.Context) {
	id, ok := parseSourceID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeleteSource(id); err != nil {
		if errors.Is(err, database.ErrSourceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
			return
		}
		slog.Error("Failed to delete source", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) TriggerFetch(c *gin.Context) {
	if err := h.scheduler.TriggerFetch(positiveQueryInt(c, "max_per_source")); err != nil {
		slog.Error("Failed to enqueue fetch task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "fetch task enqueued"})
}

func (h *Handler) TriggerExtract(c *gin.Context) {
	if err := h.scheduler.TriggerExtract(positiveQueryInt(c, "limit")); err != nil {
		slog.Error("Failed to enqueue extract task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "extract task enqueued"})
}

func (h *Handler) ListArticles(c *gin.Context) {
	opts := database.ArticleListOptions{
		State:    c.Query("state"),
		Category: c.Query("category"),
		Limit:    50,
	}

	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		opts.Offset = offset
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}

	articles, err := h.articleRepo.ListArticles(opts)
	if err != nil {
		slog.Error("Failed to list articles", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	responses := make([]ArticleResponse, 0, len(articles))
	for _, article := range articles {
		responses = append(responses, newArticleResponse(article, false))
	}

	c.JSON(http.StatusOK, gin.H{"articles": responses, "count": len(responses)})
}

func (h *Handler) GetArticle(c *gin.Context) {
	article, ok := h.findArticle(c, c.Param("id"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, newArticleResponse(*article, true))
}

func (h *Handler) DeleteArticle(c *gin.Context) {
	if err := h.articleRepo.DeleteArticle(c.Param("id")); err != nil {
		if errors.Is(err, database.ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		slog.Error("Failed to delete article", "id", c.Param("id"), "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) RequeueArticle(c *gin.Context) {
	id := c.Param("id")

	if err := h.articleRepo.RequeueArticle(id); err != nil {
		if errors.Is(err, database.ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		slog.Error("Failed to requeue article", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "state": database.StatePending})
}

// GetMarkdown returns an article's content as a bare {content} payload for
// downstream text-processing consumers.
func (h *Handler) GetMarkdown(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id query parameter is required"})
		return
	}

	article, ok := h.findArticle(c, id)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": article.Content})
}

func (h *Handler) findArticle(c *gin.Context, id string) (*database.Article, bool) {
	article, err := h.articleRepo.GetArticle(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return nil, false
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return nil, false
	}
	return article, true
}

// positiveQueryInt returns the named query parameter as a positive int,
// or 0 when absent or invalid so callers fall back to their defaults.
func positiveQueryInt(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func parseSourceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source id"})
		return 0, false
	}
	return id, true
}
