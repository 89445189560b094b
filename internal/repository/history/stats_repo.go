package history

import (
	"context"
	"fmt"

	"github.com/crestline-labs/paperdesk/internal/domain"
)

const (
	topQueriesLimit   = 5
	papersByYearLimit = 10
)

// StatsRepo aggregates usage statistics across the history tables.
type StatsRepo struct {
	db *DB
}

// NewStatsRepo creates the statistics repo.
func NewStatsRepo(db *DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// Stats computes the usage summary: totals per table, searches in the
// last seven days, the most frequent queries and papers grouped by year.
func (r *StatsRepo) Stats(ctx context.Context) (domain.Stats, error) {
	var s domain.Stats

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM searches`, &s.TotalSearches},
		{`SELECT COUNT(*) FROM papers`, &s.TotalPapers},
		{`SELECT COUNT(*) FROM generated_topics`, &s.TotalTopicsGenerated},
		{`SELECT COUNT(*) FROM pdf_files`, &s.TotalPDFsProcessed},
		{`SELECT COUNT(*) FROM searches WHERE created_at > NOW() - INTERVAL '7 days'`, &s.RecentSearches},
	}
	for _, c := range counts {
		if err := r.db.Pool.QueryRow(ctx, c.query).Scan(c.dst); err != nil {
			return domain.Stats{}, fmt.Errorf("count stats: %w", err)
		}
	}

	rows, err := r.db.Pool.Query(ctx, `
SELECT query, COUNT(*) AS count
FROM searches
GROUP BY query
ORDER BY count DESC, query
LIMIT $1`, topQueriesLimit)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("top queries: %w", err)
	}
	defer rows.Close()
	s.TopQueries = make([]domain.QueryCount, 0, topQueriesLimit)
	for rows.Next() {
		var qc domain.QueryCount
		if err := rows.Scan(&qc.Query, &qc.Count); err != nil {
			return domain.Stats{}, fmt.Errorf("scan top query: %w", err)
		}
		s.TopQueries = append(s.TopQueries, qc)
	}
	if err := rows.Err(); err != nil {
		return domain.Stats{}, fmt.Errorf("iterate top queries: %w", err)
	}

	yearRows, err := r.db.Pool.Query(ctx, `
SELECT year, COUNT(*) AS count
FROM papers
WHERE year IS NOT NULL
GROUP BY year
ORDER BY year DESC
LIMIT $1`, papersByYearLimit)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("papers by year: %w", err)
	}
	defer yearRows.Close()
	s.PapersByYear = make([]domain.YearCount, 0, papersByYearLimit)
	for yearRows.Next() {
		var yc domain.YearCount
		if err := yearRows.Scan(&yc.Year, &yc.Count); err != nil {
			return domain.Stats{}, fmt.Errorf("scan papers by year: %w", err)
		}
		s.PapersByYear = append(s.PapersByYear, yc)
	}
	if err := yearRows.Err(); err != nil {
		return domain.Stats{}, fmt.Errorf("iterate papers by year: %w", err)
	}

	return s, nil
}
