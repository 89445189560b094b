package search

import (
	"context"

	"github.com/crestline-labs/paperdesk/internal/domain"
)

// Scraper fetches papers from the academic search engine.
type Scraper interface {
	Search(ctx context.Context, query string, maxResults int, years domain.YearRange) ([]domain.Paper, error)
	ExtractAbstract(ctx context.Context, pageURL string) (string, error)
}

// Cache stores search results by query fingerprint.
type Cache interface {
	Get(ctx context.Context, query string, maxResults int, years domain.YearRange) ([]domain.Paper, bool)
	Put(ctx context.Context, query string, maxResults int, years domain.YearRange, papers []domain.Paper)
}

// History persists searches and papers for statistics.
type History interface {
	RecordSearch(ctx context.Context, rec domain.SearchRecord) error
	UpsertPapers(ctx context.Context, papers []domain.Paper) error
	PaperByID(ctx context.Context, id string) (domain.Paper, error)
}
