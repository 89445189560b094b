package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crestline-labs/paperdesk/internal/domain"
)

// TopicRepo records topic generation runs.
type TopicRepo struct {
	db *DB
}

// NewTopicRepo creates the topic history repo.
func NewTopicRepo(db *DB) *TopicRepo {
	return &TopicRepo{db: db}
}

// RecordGeneration logs one topic generation with its inputs and output.
func (r *TopicRepo) RecordGeneration(ctx context.Context, paperIDs []string, result domain.TopicResult, method string) error {
	topics, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode topics: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO generated_topics (paper_ids, topics, method)
VALUES ($1, $2, $3)`,
		paperIDs, topics, method,
	)
	if err != nil {
		return fmt.Errorf("record topic generation: %w", err)
	}
	return nil
}
