package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/openagg/article-aggregator/app/database"
	"github.com/openagg/article-aggregator/app/feed"
)

type FetchArticlesTask struct {
	Task
	db           *database.DB
	httpClient   *http.Client
	maxPerSource int
	sourceDelay  time.Duration
	userAgent    string
	timeout      time.Duration
}

func NewFetchArticlesTask(db *database.DB, httpClient *http.Client, maxPerSource int,
	sourceDelay time.Duration, userAgent string, timeout time.Duration) *FetchArticlesTask {
	return &FetchArticlesTask{
		Task:         NewTask(TaskTypeFetchArticles),
		db:           db,
		httpClient:   httpClient,
		maxPerSource: maxPerSource,
		sourceDelay:  sourceDelay,
		userAgent:    userAgent,
		timeout:      timeout,
	}
}

func (t *FetchArticlesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Repositories and gate are built per invocation, so each cycle starts
	// with a clean rate window
	fetcher := feed.NewFetcher(
		database.NewSourceRepository(t.db),
		database.NewArticleRepository(t.db),
		t.httpClient,
		feed.NewParser(),
		feed.NewGate(t.sourceDelay),
		t.userAgent,
		t.timeout,
	)

	stats, err := fetcher.FetchAll(ctx, t.maxPerSource)
	if err != nil {
		return fmt.Errorf("failed to fetch articles: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"sources", stats.SourcesFetched,
		"new", stats.NewArticles,
		"errors", stats.Errors)

	return nil
}
