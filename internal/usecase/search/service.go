// Package search coordinates the paper search flow: cache, scrape, persist.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crestline-labs/paperdesk/internal/domain"
)

// Result is one answered search.
type Result struct {
	Papers    []domain.Paper
	FromCache bool
}

// Service handles paper search with a read-through result cache.
type Service struct {
	scraper Scraper
	cache   Cache
	history History
	logger  *zap.Logger

	now func() time.Time
}

// New creates a search service. history can be nil when persistence is
// disabled.
func New(scraper Scraper, cache Cache, history History, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scraper: scraper,
		cache:   cache,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// Search answers a query from the cache when possible, otherwise scrapes
// and fills the cache. Every answered search is recorded for statistics;
// persistence failures are logged, never surfaced.
func (s *Service) Search(ctx context.Context, query string, maxResults int, years domain.YearRange) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, domain.ErrEmptyQuery
	}

	if papers, ok := s.cache.Get(ctx, query, maxResults, years); ok {
		s.record(ctx, query, maxResults, years, len(papers))
		return Result{Papers: papers, FromCache: true}, nil
	}

	papers, err := s.scraper.Search(ctx, query, maxResults, years)
	if err != nil {
		return Result{}, fmt.Errorf("scrape papers: %w", err)
	}

	s.cache.Put(ctx, query, maxResults, years, papers)
	s.record(ctx, query, maxResults, years, len(papers))

	if s.history != nil {
		if err := s.history.UpsertPapers(ctx, papers); err != nil {
			s.logger.Warn("Failed to persist papers", zap.Error(err))
		}
	}

	return Result{Papers: papers}, nil
}

// ExtractAbstract follows a paper landing page and returns its abstract.
func (s *Service) ExtractAbstract(ctx context.Context, pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return "", fmt.Errorf("page url is required: %w", domain.ErrEmptyQuery)
	}
	abstract, err := s.scraper.ExtractAbstract(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("extract abstract: %w", err)
	}
	return abstract, nil
}

// Paper returns a previously stored paper by its id.
func (s *Service) Paper(ctx context.Context, id string) (domain.Paper, error) {
	if s.history == nil {
		return domain.Paper{}, domain.ErrNotFound
	}
	p, err := s.history.PaperByID(ctx, id)
	if err != nil {
		return domain.Paper{}, fmt.Errorf("load paper: %w", err)
	}
	return p, nil
}

func (s *Service) record(ctx context.Context, query string, maxResults int, years domain.YearRange, count int) {
	if s.history == nil {
		return
	}
	rec := domain.SearchRecord{
		Query:       query,
		MaxResults:  maxResults,
		YearRange:   years,
		ResultCount: count,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.history.RecordSearch(ctx, rec); err != nil {
		s.logger.Warn("Failed to record search", zap.String("query", query), zap.Error(err))
	}
}
