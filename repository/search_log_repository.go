package repository

import (
	"fmt"
	"time"

	"pricescout/database"
	"pricescout/models"
)

type SearchLogRepository struct{}

func NewSearchLogRepository() *SearchLogRepository {
	return &SearchLogRepository{}
}

// Record inserts one audit row for a finished aggregation request.
func (r *SearchLogRepository) Record(provider, query string, take, resultCount int, cacheHit bool, duration time.Duration) error {
	if database.DB == nil {
		return nil
	}
	insert := `
		INSERT INTO search_logs (provider, query, take, result_count, cache_hit, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := database.DB.Exec(insert, provider, query, take, resultCount, cacheHit, duration.Milliseconds()); err != nil {
		return fmt.Errorf("failed to record search log: %v", err)
	}
	return nil
}

// RecentSearches returns the latest audit rows, newest first.
func (r *SearchLogRepository) RecentSearches(limit int) ([]models.SearchLog, error) {
	if database.DB == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := `
		SELECT id, provider, query, take, result_count, cache_hit, duration_ms, created_at
		FROM search_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := database.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get search logs: %v", err)
	}
	defer rows.Close()

	var logs []models.SearchLog
	for rows.Next() {
		var entry models.SearchLog
		if err := rows.Scan(
			&entry.ID, &entry.Provider, &entry.Query, &entry.Take,
			&entry.ResultN, &entry.CacheHit, &entry.DurationMs, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search log: %v", err)
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// TopQueries aggregates the most frequent queries over the past interval,
// used to pick cache warming candidates.
func (r *SearchLogRepository) TopQueries(since time.Duration, limit int) ([]string, error) {
	if database.DB == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	query := `
		SELECT query
		FROM search_logs
		WHERE created_at > $1 AND query <> ''
		GROUP BY query
		ORDER BY COUNT(*) DESC
		LIMIT $2
	`

	rows, err := database.DB.Query(query, time.Now().Add(-since), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top queries: %v", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("failed to scan query: %v", err)
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}
