package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/crestline-labs/paperdesk/internal/domain"
)

// SearchRepo records executed searches and the papers they returned.
type SearchRepo struct {
	db *DB
}

// NewSearchRepo creates the search history repo.
func NewSearchRepo(db *DB) *SearchRepo {
	return &SearchRepo{db: db}
}

// RecordSearch logs one executed search.
func (r *SearchRepo) RecordSearch(ctx context.Context, rec domain.SearchRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO searches (query, max_results, year_from, year_to, result_count)
VALUES ($1, $2, NULLIF($3, 0), NULLIF($4, 0), $5)`,
		rec.Query, rec.MaxResults, rec.YearRange.From, rec.YearRange.To, rec.ResultCount,
	)
	if err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

// UpsertPapers stores scraped papers, replacing previous versions of the
// same paper id.
func (r *SearchRepo) UpsertPapers(ctx context.Context, papers []domain.Paper) error {
	for _, p := range papers {
		_, err := r.db.Pool.Exec(ctx, `
INSERT INTO papers (id, title, authors, year, snippet, url, pdf_url, citations, abstract, scraped_at)
VALUES ($1, $2, NULLIF($3,''), NULLIF($4, 0), NULLIF($5,''), NULLIF($6,''), NULLIF($7,''), $8, NULLIF($9,''), $10)
ON CONFLICT (id)
DO UPDATE SET
  title = EXCLUDED.title,
  authors = COALESCE(EXCLUDED.authors, papers.authors),
  year = COALESCE(EXCLUDED.year, papers.year),
  snippet = COALESCE(EXCLUDED.snippet, papers.snippet),
  url = COALESCE(EXCLUDED.url, papers.url),
  pdf_url = COALESCE(EXCLUDED.pdf_url, papers.pdf_url),
  citations = EXCLUDED.citations,
  abstract = COALESCE(EXCLUDED.abstract, papers.abstract),
  scraped_at = EXCLUDED.scraped_at`,
			p.ID, p.Title, p.Authors, p.Year, p.Snippet, p.URL, p.PDFURL, p.Citations, p.Abstract, p.ScrapedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert paper %s: %w", p.ID, err)
		}
	}
	return nil
}

// PaperByID loads one stored paper.
func (r *SearchRepo) PaperByID(ctx context.Context, id string) (domain.Paper, error) {
	var p domain.Paper
	err := r.db.Pool.QueryRow(ctx, `
SELECT id, title, COALESCE(authors,''), COALESCE(year, 0), COALESCE(snippet,''),
       COALESCE(url,''), COALESCE(pdf_url,''), citations, COALESCE(abstract,'')
FROM papers
WHERE id = $1`, id).
		Scan(&p.ID, &p.Title, &p.Authors, &p.Year, &p.Snippet, &p.URL, &p.PDFURL, &p.Citations, &p.Abstract)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Paper{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Paper{}, fmt.Errorf("get paper by id: %w", err)
	}
	return p, nil
}
