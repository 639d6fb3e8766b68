package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"

	"github.com/openagg/article-aggregator/app/database"
)

// Extractor upgrades pending articles from feed summary to full extracted
// body content. Per article it either succeeds (state fetched, content is
// the extracted Markdown body) or fails (state failed, content degrades to
// the stored summary). There is no third outcome: a processed article
// always has readable content.
type Extractor struct {
	articles   database.ArticleRepository
	httpClient *http.Client
	converter  *md.Converter
	gate       *Gate
	userAgent  string
	timeout    time.Duration
}

func NewExtractor(articles database.ArticleRepository, httpClient *http.Client,
	gate *Gate, userAgent string, timeout time.Duration) *Extractor {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.Table())

	return &Extractor{
		articles:   articles,
		httpClient: httpClient,
		converter:  converter,
		gate:       gate,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// ExtractOne fetches the article page, extracts the readable body and
// stores it as Markdown. Returns whether extraction succeeded; failures
// are terminal until an explicit requeue.
func (e *Extractor) ExtractOne(ctx context.Context, article database.Article) bool {
	content, err := e.extract(ctx, article.URL)
	if err != nil {
		slog.Error("Content extraction failed", "article_id", article.ID, "url", article.URL, "error", err)

		if updateErr := e.articles.UpdateArticleContent(article.ID, article.Summary, database.StateFailed); updateErr != nil {
			slog.Error("Failed to record extraction failure", "article_id", article.ID, "error", updateErr)
		}
		return false
	}

	if err := e.articles.UpdateArticleContent(article.ID, content, database.StateFetched); err != nil {
		slog.Error("Failed to store extracted content", "article_id", article.ID, "error", err)
		return false
	}

	slog.Info("Content extracted", "article_id", article.ID, "content_length", len(content))
	return true
}

// ExtractBatch processes up to limit pending articles sequentially, in
// creation order, with the gate bounding the request rate against
// extracted sites. Articles beyond the limit stay pending untouched.
func (e *Extractor) ExtractBatch(ctx context.Context, limit int) (ExtractStats, error) {
	pending, err := e.articles.ListArticlesByState(database.StatePending, limit)
	if err != nil {
		return ExtractStats{}, fmt.Errorf("failed to list pending articles: %w", err)
	}

	stats := ExtractStats{Total: len(pending)}

	for _, article := range pending {
		if err := e.gate.Wait(ctx); err != nil {
			return stats, err
		}

		if e.ExtractOne(ctx, article) {
			stats.Success++
		} else {
			stats.Failed++
		}
	}

	return stats, nil
}

func (e *Extractor) extract(ctx context.Context, pageURL string) (string, error) {
	data, err := e.fetchPage(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}

	parsedURL, _ := url.Parse(pageURL)
	page, err := readability.FromReader(bytes.NewReader(data), parsedURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}
	if page.Content == "" {
		return "", fmt.Errorf("no content extracted from page")
	}

	markdown, err := e.converter.ConvertString(page.Content)
	if err != nil {
		return "", fmt.Errorf("failed to convert content to markdown: %w", err)
	}
	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("empty markdown after conversion")
	}

	return markdown, nil
}

func (e *Extractor) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
