package feed

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/openagg/article-aggregator/app/database"
)

// Fetcher polls enabled sources, deduplicates entries by canonical URL and
// inserts new articles in pending state.
type Fetcher struct {
	sources    database.SourceRepository
	articles   database.ArticleRepository
	httpClient *http.Client
	parser     *Parser
	gate       *Gate
	userAgent  string
	timeout    time.Duration
}

func NewFetcher(sources database.SourceRepository, articles database.ArticleRepository,
	httpClient *http.Client, parser *Parser, gate *Gate, userAgent string,
	timeout time.Duration) *Fetcher {
	return &Fetcher{
		sources:    sources,
		articles:   articles,
		httpClient: httpClient,
		parser:     parser,
		gate:       gate,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// FetchAll polls every enabled source in listing order. One source's
// failure never aborts the batch: it is counted, logged and the loop moves
// on. The gate bounds the outbound request rate across sources.
func (f *Fetcher) FetchAll(ctx context.Context, maxPerSource int) (FetchStats, error) {
	sources, err := f.sources.ListSources(true)
	if err != nil {
		return FetchStats{}, fmt.Errorf("failed to list enabled sources: %w", err)
	}

	stats := FetchStats{}

	for _, source := range sources {
		if err := f.gate.Wait(ctx); err != nil {
			return stats, err
		}

		newCount, err := f.fetchSource(ctx, source, maxPerSource)
		if err != nil {
			stats.Errors++
			slog.Error("Failed to fetch source", "source", source.Name, "url", source.FeedURL, "error", err)
			continue
		}

		stats.SourcesFetched++
		stats.NewArticles += newCount

		if err := f.sources.UpdateLastFetched(source.ID, time.Now().UTC()); err != nil {
			slog.Error("Failed to update last fetched time", "source", source.Name, "error", err)
		}

		slog.Info("Source fetched", "source", source.Name, "new", newCount)
	}

	return stats, nil
}

func (f *Fetcher) fetchSource(ctx context.Context, source database.Source, maxArticles int) (int, error) {
	data, err := f.fetchFeed(ctx, source.FeedURL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch feed: %w", err)
	}

	entries, err := f.parser.Run(data)
	if err != nil {
		return 0, fmt.Errorf("failed to parse feed: %w", err)
	}

	// Feed order preserved, capped
	if maxArticles > 0 && len(entries) > maxArticles {
		entries = entries[:maxArticles]
	}

	newCount := 0
	duplicateCount := 0

	for _, entry := range entries {
		if entry.Link == "" {
			continue
		}

		inserted, err := f.articles.InsertArticle(f.buildArticle(source, entry))
		if err != nil {
			// Per-entry bulkhead: a malformed entry never aborts its siblings
			slog.Error("Failed to process entry", "source", source.Name, "link", entry.Link, "error", err)
			continue
		}

		if inserted {
			newCount++
		} else {
			duplicateCount++
		}
	}

	if duplicateCount > 0 {
		slog.Debug("Duplicate entries skipped", "source", source.Name, "new", newCount, "duplicates", duplicateCount)
	}

	return newCount, nil
}

func (f *Fetcher) buildArticle(source database.Source, entry Entry) *database.Article {
	publishedAt := time.Now().UTC()
	if entry.Published != nil {
		publishedAt = entry.Published.UTC()
	}

	return &database.Article{
		ID:          NewArticleID(entry.Link),
		SourceID:    source.ID,
		Title:       cmp.Or(entry.Title, "Untitled"),
		Author:      cmp.Or(entry.Author, source.Name),
		URL:         entry.Link,
		Summary:     CleanSummary(entry.Summary),
		PublishedAt: publishedAt,
		Category:    source.Category,
		Language:    source.Language,
		State:       database.StatePending,
	}
}

func (f *Fetcher) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
