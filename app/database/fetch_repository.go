package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lysyi3m/ticker-comb/app/news"
)

// FetchRepository stores one row per provider call. News items themselves
// are never persisted.
type FetchRepository struct {
	db *DB
}

func NewFetchRepository(db *DB) *FetchRepository {
	return &FetchRepository{db: db}
}

func (r *FetchRepository) RecordFetch(record news.FetchRecord) error {
	fetchedAt := record.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO fetch_log (symbol, provider, mode, item_count, error, duration_ms, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.Symbol, record.Provider, record.Mode, record.ItemCount, record.Error,
		record.Duration.Milliseconds(), fetchedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}

	return nil
}

// GetRecentFetches returns the newest fetches first
func (r *FetchRepository) GetRecentFetches(limit int) ([]Fetch, error) {
	rows, err := r.db.Query(`
		SELECT id, symbol, provider, mode, item_count, error, duration_ms, fetched_at
		FROM fetch_log
		ORDER BY fetched_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent fetches: %w", err)
	}
	defer rows.Close()

	fetches := []Fetch{}
	for rows.Next() {
		var f Fetch
		var fetchedAt int64
		err := rows.Scan(&f.ID, &f.Symbol, &f.Provider, &f.Mode, &f.ItemCount, &f.Error, &f.DurationMs, &fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fetch row: %w", err)
		}
		f.FetchedAt = time.Unix(fetchedAt, 0).UTC()
		fetches = append(fetches, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fetch rows: %w", err)
	}

	return fetches, nil
}

func (r *FetchRepository) GetFetchStats() (*FetchStats, error) {
	var stats FetchStats
	var last sql.NullInt64

	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(item_count), 0),
			COALESCE(AVG(duration_ms), 0.0),
			MAX(fetched_at)
		FROM fetch_log
	`).Scan(&stats.Total, &stats.Failed, &stats.Items, &stats.AvgDurationMs, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to get fetch stats: %w", err)
	}

	if last.Valid {
		t := time.Unix(last.Int64, 0).UTC()
		stats.LastFetchedAt = &t
	}

	return &stats, nil
}

// GetSymbolStats aggregates fetches per symbol since the given time
func (r *FetchRepository) GetSymbolStats(since time.Time) ([]SymbolStats, error) {
	rows, err := r.db.Query(`
		SELECT
			symbol,
			COUNT(*),
			SUM(CASE WHEN error != '' THEN 1 ELSE 0 END),
			SUM(item_count),
			MAX(fetched_at)
		FROM fetch_log
		WHERE fetched_at >= ?
		GROUP BY symbol
		ORDER BY symbol
	`, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get symbol stats: %w", err)
	}
	defer rows.Close()

	stats := []SymbolStats{}
	for rows.Next() {
		var s SymbolStats
		var last int64
		if err := rows.Scan(&s.Symbol, &s.Fetches, &s.Failures, &s.Items, &last); err != nil {
			return nil, fmt.Errorf("failed to scan symbol stats row: %w", err)
		}
		s.LastFetchedAt = time.Unix(last, 0).UTC()
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbol stats rows: %w", err)
	}

	return stats, nil
}

// PruneFetches deletes fetch rows older than the given time
func (r *FetchRepository) PruneFetches(before time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM fetch_log WHERE fetched_at < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune fetches: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned fetches: %w", err)
	}

	return n, nil
}
