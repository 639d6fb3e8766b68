package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/openagg/article-aggregator/app/api"
	"github.com/openagg/article-aggregator/app/catalog"
	"github.com/openagg/article-aggregator/app/cfg"
	"github.com/openagg/article-aggregator/app/database"
	"github.com/openagg/article-aggregator/app/tasks"
)

func main() {
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Article Aggregator", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	sourceRepo := database.NewSourceRepository(db)
	articleRepo := database.NewArticleRepository(db)
	sourceCatalog := catalog.NewCatalog(sourceRepo)

	if err := seedSources(sourceCatalog, appCfg.SourcesFile); err != nil {
		slog.Warn("Failed to seed sources", "file", appCfg.SourcesFile, "error", err)
	}

	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.HTTPTimeout) * time.Second,
	}

	scheduler := tasks.NewScheduler(db, httpClient, tasks.Options{
		FetchInterval:   time.Duration(appCfg.FetchInterval) * time.Minute,
		ExtractInterval: time.Duration(appCfg.ExtractInterval) * time.Minute,
		MaxPerSource:    appCfg.MaxPerSource,
		ExtractLimit:    appCfg.ExtractLimit,
		WorkerCount:     appCfg.WorkerCount,
		SourceDelay:     time.Duration(appCfg.SourceDelay) * time.Second,
		ExtractDelay:    time.Duration(appCfg.ExtractDelay) * time.Second,
		HTTPTimeout:     time.Duration(appCfg.HTTPTimeout) * time.Second,
		UserAgent:       appCfg.UserAgent,
	})
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount,
		"fetch_interval_minutes", appCfg.FetchInterval, "extract_interval_minutes", appCfg.ExtractInterval)

	handler := api.NewHandler(sourceCatalog, sourceRepo, articleRepo, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

type seedSource struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
	Language string `yaml:"language"`
}

// seedSources registers the sources listed in the YAML seed file. Sources
// already present (matched by feed URL) are left untouched, so the file can
// stay in place across restarts.
func seedSources(sourceCatalog *catalog.Catalog, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("No seed file found, skipping", "file", path)
			return nil
		}
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seeds []seedSource
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	added := 0
	for _, seed := range seeds {
		if seed.URL == "" {
			continue
		}

		_, err := sourceCatalog.AddSource(seed.Name, seed.URL, seed.Category, seed.Language)
		if err != nil {
			if errors.Is(err, database.ErrDuplicateSource) {
				continue
			}
			slog.Warn("Failed to seed source", "name", seed.Name, "url", seed.URL, "error", err)
			continue
		}
		added++
	}

	if added > 0 {
		slog.Info("Seeded sources", "file", path, "added", added, "total", len(seeds))
	}

	return nil
}
