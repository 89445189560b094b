package history

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS searches (
		id BIGSERIAL PRIMARY KEY,
		query TEXT NOT NULL,
		max_results INT NOT NULL,
		year_from INT,
		year_to INT,
		result_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		authors TEXT,
		year INT,
		snippet TEXT,
		url TEXT,
		pdf_url TEXT,
		citations INT NOT NULL DEFAULT 0,
		abstract TEXT,
		scraped_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS generated_topics (
		id BIGSERIAL PRIMARY KEY,
		paper_ids TEXT[] NOT NULL,
		topics JSONB NOT NULL,
		method TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS pdf_files (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		filepath TEXT NOT NULL,
		abstract TEXT,
		metadata JSONB,
		processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_searches_query ON searches (query)`,
	`CREATE INDEX IF NOT EXISTS idx_papers_year ON papers (year)`,
}

// InitSchema creates the history tables if they are missing.
func (d *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
