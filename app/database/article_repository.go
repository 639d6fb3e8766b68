package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ ArticleRepository = (*ArticleRepositorySQL)(nil)

// ArticleRepositorySQL handles database operations for articles
type ArticleRepositorySQL struct {
	db *DB
}

func NewArticleRepository(db *DB) *ArticleRepositorySQL {
	return &ArticleRepositorySQL{db: db}
}

// InsertArticle inserts an article unless its URL is already present.
// Returns false when the URL lost the uniqueness race; the caller counts
// that as a duplicate, not an error.
func (r *ArticleRepositorySQL) InsertArticle(article *Article) (bool, error) {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO articles (
			id, source_id, title, author, url, summary, content,
			published_at, category, language, state, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`, article.ID, article.SourceID, article.Title, article.Author, article.URL,
		article.Summary, article.Content, article.PublishedAt, article.Category,
		article.Language, article.State, now, now)
	if err != nil {
		return false, fmt.Errorf("failed to insert article: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	article.CreatedAt = now
	article.UpdatedAt = now

	return true, nil
}

func (r *ArticleRepositorySQL) GetArticle(id string) (*Article, error) {
	return r.getArticle("SELECT "+articleColumns+" FROM articles WHERE id = ?", id)
}

func (r *ArticleRepositorySQL) GetArticleByURL(url string) (*Article, error) {
	return r.getArticle("SELECT "+articleColumns+" FROM articles WHERE url = ?", url)
}

func (r *ArticleRepositorySQL) ListArticles(opts ArticleListOptions) ([]Article, error) {
	query := "SELECT " + articleColumns + " FROM articles"
	var args []interface{}
	var conditions []string

	if opts.State != "" {
		conditions = append(conditions, "state = ?")
		args = append(args, opts.State)
	}
	if opts.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, opts.Category)
	}
	for i, condition := range conditions {
		if i == 0 {
			query += " WHERE " + condition
		} else {
			query += " AND " + condition
		}
	}

	query += " ORDER BY published_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)

	return r.queryArticles(query, args...)
}

// ListArticlesByState returns up to limit articles in the given state, in
// creation order, so repeated batch calls walk the backlog stably.
func (r *ArticleRepositorySQL) ListArticlesByState(state string, limit int) ([]Article, error) {
	return r.queryArticles(
		"SELECT "+articleColumns+" FROM articles WHERE state = ? ORDER BY created_at, id LIMIT ?",
		state, limit)
}

func (r *ArticleRepositorySQL) UpdateArticleContent(id string, content string, state string) error {
	result, err := r.db.Exec(`
		UPDATE articles SET content = ?, state = ?, updated_at = ? WHERE id = ?
	`, content, state, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update article content: %w", err)
	}

	return checkArticleAffected(result)
}

// RequeueArticle resets an article to pending so the next extraction batch
// picks it up again.
func (r *ArticleRepositorySQL) RequeueArticle(id string) error {
	result, err := r.db.Exec(`
		UPDATE articles SET state = ?, updated_at = ? WHERE id = ?
	`, StatePending, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to requeue article: %w", err)
	}

	return checkArticleAffected(result)
}

func (r *ArticleRepositorySQL) DeleteArticle(id string) error {
	result, err := r.db.Exec("DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	return checkArticleAffected(result)
}

func (r *ArticleRepositorySQL) GetArticleCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

func (r *ArticleRepositorySQL) GetArticleStateCounts() (map[string]int, error) {
	rows, err := r.db.Query("SELECT state, COUNT(*) FROM articles GROUP BY state")
	if err != nil {
		return nil, fmt.Errorf("failed to get article state counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("failed to scan state count row: %w", err)
		}
		counts[state] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating state count rows: %w", err)
	}

	return counts, nil
}

const articleColumns = "id, source_id, title, author, url, summary, content, published_at, category, language, state, created_at, updated_at"

func (r *ArticleRepositorySQL) getArticle(query string, arg interface{}) (*Article, error) {
	article, err := scanArticle(r.db.QueryRow(query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

func (r *ArticleRepositorySQL) queryArticles(query string, args ...interface{}) ([]Article, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func scanArticle(row rowScanner) (*Article, error) {
	var article Article
	err := row.Scan(
		&article.ID, &article.SourceID, &article.Title, &article.Author,
		&article.URL, &article.Summary, &article.Content, &article.PublishedAt,
		&article.Category, &article.Language, &article.State,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func checkArticleAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrArticleNotFound
	}
	return nil
}
