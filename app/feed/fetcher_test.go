package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openagg/article-aggregator/app/database"
)

func feedXML(links ...string) string {
	items := ""
	for i, link := range links {
		items += fmt.Sprintf(`
    <item>
      <title>Article %d</title>
      <link>%s</link>
      <description>Summary %d</description>
      <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
    </item>`, i, link, i)
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Feed</title>` + items + `</channel></rss>`
}

func newTestFetcher(sources *mockSourceRepo, articles *mockArticleRepo) *Fetcher {
	return NewFetcher(sources, articles, &http.Client{}, NewParser(),
		NewGate(0), "test-agent", 5*time.Second)
}

func serveBody(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchAll_PartialFailureIsolation(t *testing.T) {
	broken := serveBody(t, "definitely not a feed")
	valid := serveBody(t, feedXML("https://site.test/b1"))

	sources := &mockSourceRepo{sources: []database.Source{
		{ID: 1, Name: "A", FeedURL: broken.URL, Enabled: true},
		{ID: 2, Name: "B", FeedURL: valid.URL, Enabled: true},
	}}
	articles := &mockArticleRepo{}

	stats, err := newTestFetcher(sources, articles).FetchAll(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if stats.Errors != 1 {
		t.Errorf("Expected 1 error, got %d", stats.Errors)
	}
	if stats.SourcesFetched != 1 {
		t.Errorf("Expected 1 source fetched, got %d", stats.SourcesFetched)
	}
	if stats.NewArticles != 1 {
		t.Errorf("Expected 1 new article, got %d", stats.NewArticles)
	}

	// B's article is present despite A's failure
	article, _ := articles.GetArticleByURL("https://site.test/b1")
	if article == nil {
		t.Fatal("Expected article from the valid source to be stored")
	}
	if article.State != database.StatePending {
		t.Errorf("Expected pending state, got %s", article.State)
	}
}

func TestFetchAll_DeduplicatesAcrossSources(t *testing.T) {
	// Two feeds list the same canonical URL
	first := serveBody(t, feedXML("https://site.test/a"))
	second := serveBody(t, feedXML("https://site.test/a"))

	sources := &mockSourceRepo{sources: []database.Source{
		{ID: 1, Name: "First", FeedURL: first.URL, Enabled: true},
		{ID: 2, Name: "Second", FeedURL: second.URL, Enabled: true},
	}}
	articles := &mockArticleRepo{}

	stats, err := newTestFetcher(sources, articles).FetchAll(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if stats.NewArticles != 1 {
		t.Errorf("Expected 1 new article, got %d", stats.NewArticles)
	}
	count, _ := articles.GetArticleCount()
	if count != 1 {
		t.Errorf("Expected exactly 1 stored article, got %d", count)
	}
}

func TestFetchAll_MaxPerSourceCap(t *testing.T) {
	server := serveBody(t, feedXML(
		"https://site.test/1", "https://site.test/2", "https://site.test/3"))

	sources := &mockSourceRepo{sources: []database.Source{
		{ID: 1, Name: "A", FeedURL: server.URL, Enabled: true},
	}}
	articles := &mockArticleRepo{}

	stats, err := newTestFetcher(sources, articles).FetchAll(context.Background(), 2)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if stats.NewArticles != 2 {
		t.Errorf("Expected cap of 2 new articles, got %d", stats.NewArticles)
	}

	// Feed order preserved: the first two entries win
	if a, _ := articles.GetArticleByURL("https://site.test/1"); a == nil {
		t.Error("Expected first entry to be stored")
	}
	if a, _ := articles.GetArticleByURL("https://site.test/3"); a != nil {
		t.Error("Expected third entry to be skipped by the cap")
	}
}

func TestFetchAll_AppliesEntryDefaults(t *testing.T) {
	server := serveBody(t, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Feed</title>
    <item>
      <link>https://site.test/bare</link>
    </item>
</channel></rss>`)

	sources := &mockSourceRepo{sources: []database.Source{
		{ID: 1, Name: "Acme Blog", FeedURL: server.URL, Category: "Programming_Technology", Language: "en_US", Enabled: true},
	}}
	articles := &mockArticleRepo{}

	before := time.Now().UTC()
	if _, err := newTestFetcher(sources, articles).FetchAll(context.Background(), 10); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	article, _ := articles.GetArticleByURL("https://site.test/bare")
	if article == nil {
		t.Fatal("Expected article to be stored")
	}
	if article.Title != "Untitled" {
		t.Errorf("Expected default title 'Untitled', got %q", article.Title)
	}
	if article.Author != "Acme Blog" {
		t.Errorf("Expected author to default to source name, got %q", article.Author)
	}
	if article.PublishedAt.Before(before) {
		t.Errorf("Expected published date to default to ingestion time, got %v", article.PublishedAt)
	}
	if article.Category != "Programming_Technology" || article.Language != "en_US" {
		t.Errorf("Expected category/language inherited from source, got %s/%s", article.Category, article.Language)
	}
	if article.ID != NewArticleID("https://site.test/bare") {
		t.Errorf("Expected deterministic ID, got %s", article.ID)
	}
}

func TestFetchAll_SkipsEntriesWithoutLink(t *testing.T) {
	server := serveBody(t, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Feed</title>
    <item><title>No link here</title></item>
    <item><title>Linked</title><link>https://site.test/ok</link></item>
</channel></rss>`)

	sources := &mockSourceRepo{sources: []database.Source{
		{ID: 1, Name: "A", FeedURL: server.URL, Enabled: true},
	}}
	articles := &mockArticleRepo{}

	stats, err := newTestFetcher(sources, articles).FetchAll(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if stats.NewArticles != 1 {
		t.Errorf("Expected only the linked entry, got %d new articles", stats.NewArticles)
	}
}

func TestFetchAll_UpdatesLastFetched(t *testing.T) {
	valid := serveBody(t, feedXML("https://site.test/a"))
	broken := serveBody(t, "not a feed")

	sources := &mockSourceRepo{sources: []database.Source{
		{ID: 1, Name: "OK", FeedURL: valid.URL, Enabled: true},
		{ID: 2, Name: "Broken", FeedURL: broken.URL, Enabled: true},
	}}

	if _, err := newTestFetcher(sources, &mockArticleRepo{}).FetchAll(context.Background(), 10); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if _, ok := sources.lastFetched[1]; !ok {
		t.Error("Expected last fetched time for the processed source")
	}
	if _, ok := sources.lastFetched[2]; ok {
		t.Error("Expected no last fetched update for the failed source")
	}
}

func TestFetchAll_SkipsDisabledSources(t *testing.T) {
	server := serveBody(t, feedXML("https://site.test/a"))

	sources := &mockSourceRepo{sources: []database.Source{
		{ID: 1, Name: "Disabled", FeedURL: server.URL, Enabled: false},
	}}
	articles := &mockArticleRepo{}

	stats, err := newTestFetcher(sources, articles).FetchAll(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if stats.SourcesFetched != 0 || stats.NewArticles != 0 {
		t.Errorf("Expected disabled source to be skipped, got %+v", stats)
	}
}
