package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// InitDatabase opens the Postgres connection used for the search audit
// log.
func InitDatabase(dbURL string) error {
	if dbURL == "" {
		return fmt.Errorf("database URL is required")
	}

	var err error
	DB, err = sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	log.Println("Successfully connected to database")
	return nil
}

// CreateTables creates the necessary tables if they don't exist
func CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS search_logs (
			id SERIAL PRIMARY KEY,
			provider VARCHAR(50) NOT NULL,
			query TEXT NOT NULL,
			take INTEGER NOT NULL,
			result_count INTEGER NOT NULL,
			cache_hit BOOLEAN NOT NULL DEFAULT FALSE,
			duration_ms BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_search_logs_provider ON search_logs (provider, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_search_logs_query ON search_logs (query)`,
	}

	for _, query := range queries {
		if _, err := DB.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	return nil
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
