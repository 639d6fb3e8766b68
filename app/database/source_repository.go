package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SourceRepository = (*SourceRepositorySQL)(nil)

// SourceRepositorySQL handles database operations for feed sources
type SourceRepositorySQL struct {
	db *DB
}

func NewSourceRepository(db *DB) *SourceRepositorySQL {
	return &SourceRepositorySQL{db: db}
}

// InsertSource inserts a new source. The unique constraint on feed_url is
// the authority on duplicates: the insert races cleanly with concurrent
// registrations and reports ErrDuplicateSource when the row already exists.
func (r *SourceRepositorySQL) InsertSource(source *Source) error {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO sources (name, title, feed_url, category, language, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(feed_url) DO NOTHING
	`, source.Name, source.Title, source.FeedURL, source.Category, source.Language,
		source.Enabled, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert source: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrDuplicateSource
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted source ID: %w", err)
	}

	source.ID = id
	source.CreatedAt = now
	source.UpdatedAt = now

	return nil
}

func (r *SourceRepositorySQL) GetSource(id int64) (*Source, error) {
	return r.getSource("SELECT "+sourceColumns+" FROM sources WHERE id = ?", id)
}

func (r *SourceRepositorySQL) GetSourceByFeedURL(feedURL string) (*Source, error) {
	return r.getSource("SELECT "+sourceColumns+" FROM sources WHERE feed_url = ?", feedURL)
}

func (r *SourceRepositorySQL) ListSources(enabledOnly bool) ([]Source, error) {
	query := "SELECT " + sourceColumns + " FROM sources"
	if enabledOnly {
		query += " WHERE enabled = 1"
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, *source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}

func (r *SourceRepositorySQL) SetSourceEnabled(id int64, enabled bool) error {
	result, err := r.db.Exec(`
		UPDATE sources SET enabled = ?, updated_at = ? WHERE id = ?
	`, enabled, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set source enabled status: %w", err)
	}

	return checkSourceAffected(result)
}

// DeleteSource removes the source row only. Articles keep their source_id
// as a dangling weak reference.
func (r *SourceRepositorySQL) DeleteSource(id int64) error {
	result, err := r.db.Exec("DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}

	return checkSourceAffected(result)
}

func (r *SourceRepositorySQL) UpdateLastFetched(id int64, fetchedAt time.Time) error {
	result, err := r.db.Exec(`
		UPDATE sources SET last_fetched_at = ?, updated_at = ? WHERE id = ?
	`, fetchedAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last fetched time: %w", err)
	}

	return checkSourceAffected(result)
}

func (r *SourceRepositorySQL) GetSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

const sourceColumns = "id, name, title, feed_url, category, language, enabled, last_fetched_at, created_at, updated_at"

func (r *SourceRepositorySQL) getSource(query string, arg interface{}) (*Source, error) {
	source, err := scanSource(r.db.QueryRow(query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return source, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row rowScanner) (*Source, error) {
	var source Source
	err := row.Scan(
		&source.ID, &source.Name, &source.Title, &source.FeedURL,
		&source.Category, &source.Language, &source.Enabled,
		&source.LastFetchedAt, &source.CreatedAt, &source.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &source, nil
}

func checkSourceAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrSourceNotFound
	}
	return nil
}
