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

type ExtractContentTask struct {
	Task
	db           *database.DB
	httpClient   *http.Client
	extractLimit int
	extractDelay time.Duration
	userAgent    string
	timeout      time.Duration
}

func NewExtractContentTask(db *database.DB, httpClient *http.Client, extractLimit int,
	extractDelay time.Duration, userAgent string, timeout time.Duration) *ExtractContentTask {
	return &ExtractContentTask{
		Task:         NewTask(TaskTypeExtractContent),
		db:           db,
		httpClient:   httpClient,
		extractLimit: extractLimit,
		extractDelay: extractDelay,
		userAgent:    userAgent,
		timeout:      timeout,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	extractor := feed.NewExtractor(
		database.NewArticleRepository(t.db),
		t.httpClient,
		feed.NewGate(t.extractDelay),
		t.userAgent,
		t.timeout,
	)

	stats, err := extractor.ExtractBatch(ctx, t.extractLimit)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	if stats.Total == 0 {
		slog.Debug("No articles pending extraction")
		return nil
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"total", stats.Total,
		"success", stats.Success,
		"failed", stats.Failed)

	return nil
}
