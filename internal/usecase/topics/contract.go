package topics

import (
	"context"

	"github.com/crestline-labs/paperdesk/internal/domain"
)

// Generator turns a paper set into topics, keywords and questions.
type Generator interface {
	Generate(ctx context.Context, papers []domain.Paper, nTopics int) (domain.TopicResult, error)
}

// History persists topic generation runs for statistics.
type History interface {
	RecordGeneration(ctx context.Context, paperIDs []string, result domain.TopicResult, method string) error
}
