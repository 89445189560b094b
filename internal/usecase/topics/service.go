// Package topics coordinates topic generation and its persistence.
package topics

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crestline-labs/paperdesk/internal/domain"
)

// Service runs topic generation over a caller-supplied paper set.
type Service struct {
	generator Generator
	history   History
	method    string
	logger    *zap.Logger
}

// New creates a topics service. method names the configured strategy and
// is stored alongside each generation record. history can be nil.
func New(generator Generator, history History, method string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{generator: generator, history: history, method: method, logger: logger}
}

// Generate produces topics for the papers. Persistence failures are
// logged, never surfaced.
func (s *Service) Generate(ctx context.Context, papers []domain.Paper, nTopics int) (domain.TopicResult, error) {
	if len(papers) == 0 {
		return domain.TopicResult{}, domain.ErrNoPapers
	}

	result, err := s.generator.Generate(ctx, papers, nTopics)
	if err != nil {
		return domain.TopicResult{}, fmt.Errorf("generate topics: %w", err)
	}

	if s.history != nil {
		ids := make([]string, 0, len(papers))
		for _, p := range papers {
			id := p.ID
			if id == "" {
				id = domain.PaperID(p.Title)
			}
			ids = append(ids, id)
		}
		if err := s.history.RecordGeneration(ctx, ids, result, s.method); err != nil {
			s.logger.Warn("Failed to record topic generation", zap.Error(err))
		}
	}

	return result, nil
}
