// Package stats serves the application usage summary.
package stats

import (
	"context"
	"fmt"

	"github.com/crestline-labs/paperdesk/internal/domain"
)

// Repository aggregates usage statistics.
type Repository interface {
	Stats(ctx context.Context) (domain.Stats, error)
}

// Service reads the usage summary.
type Service struct {
	repo Repository
}

// New creates a stats service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Stats returns the usage summary.
func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	out, err := s.repo.Stats(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("read stats: %w", err)
	}
	return out, nil
}
