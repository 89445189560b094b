package topics

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/crestline-labs/paperdesk/internal/domain"
)

// randomSeed fixes clustering and sampling initialization so a given paper
// set and parameters always reproduce the same output.
const randomSeed = 42

const clusterTermCount = 10

// Clusterer groups corpus documents into up to k thematic clusters.
type Clusterer interface {
	Cluster(ctx context.Context, corpus *Corpus, k int) ([]domain.Topic, error)
}

// TopicModeler fits a fixed-topic-count generative model over the corpus.
type TopicModeler interface {
	Model(ctx context.Context, corpus *Corpus, k int) ([]domain.Topic, error)
}

// TFIDFClusterer clusters documents by k-means over their TF-IDF vectors.
type TFIDFClusterer struct{}

// Cluster implements Clusterer. k is clamped to the document count; each
// cluster is described by its highest-weight centroid terms.
func (TFIDFClusterer) Cluster(_ context.Context, corpus *Corpus, k int) ([]domain.Topic, error) {
	if k > len(corpus.Rows) {
		k = len(corpus.Rows)
	}
	if k < 1 {
		k = 1
	}

	rng := rand.New(rand.NewSource(randomSeed)) //nolint:gosec // deterministic clustering, not crypto
	_, centers := kmeans(corpus.Rows, k, rng)
	if centers == nil {
		return nil, fmt.Errorf("clustering produced no centers")
	}

	out := make([]domain.Topic, 0, len(centers))
	for i, center := range centers {
		terms := topTerms(corpus.Terms, center, clusterTermCount)
		out = append(out, describeTopic(i, terms, "Research focusing on"))
	}
	return out, nil
}

// GibbsModeler fits LDA by collapsed Gibbs sampling over raw term counts.
type GibbsModeler struct{}

// Model implements TopicModeler.
func (GibbsModeler) Model(_ context.Context, corpus *Corpus, k int) ([]domain.Topic, error) {
	if k > len(corpus.Counts) {
		k = len(corpus.Counts)
	}
	if k < 1 {
		k = 1
	}

	rng := rand.New(rand.NewSource(randomSeed)) //nolint:gosec // deterministic sampling, not crypto
	components := lda(corpus.Counts, k, rng)
	if components == nil {
		return nil, fmt.Errorf("topic model produced no components")
	}

	out := make([]domain.Topic, 0, len(components))
	for i, weights := range components {
		terms := topTerms(corpus.Terms, weights, clusterTermCount)
		out = append(out, describeTopic(i, terms, "Investigation of"))
	}
	return out, nil
}

// EmbeddingClusterer clusters documents by k-means over provider embeddings
// instead of TF-IDF vectors. Clusters are still described by the dominant
// TF-IDF terms of their member documents, since embeddings carry no terms.
type EmbeddingClusterer struct {
	Embedder domain.Embedder
}

// Cluster implements Clusterer.
func (e EmbeddingClusterer) Cluster(ctx context.Context, corpus *Corpus, k int) ([]domain.Topic, error) {
	if e.Embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	if k > len(corpus.Texts) {
		k = len(corpus.Texts)
	}
	if k < 1 {
		k = 1
	}

	vectors := make([][]float64, len(corpus.Texts))
	for i, text := range corpus.Texts {
		res, err := e.Embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed document %d: %w", i, err)
		}
		vec := make([]float64, len(res.Embedding))
		for j, v := range res.Embedding {
			vec[j] = float64(v)
		}
		vectors[i] = vec
	}

	rng := rand.New(rand.NewSource(randomSeed)) //nolint:gosec // deterministic clustering, not crypto
	assign, _ := kmeans(vectors, k, rng)
	if assign == nil {
		return nil, fmt.Errorf("clustering produced no assignment")
	}

	// Describe each cluster by the mean TF-IDF vector of its members.
	out := make([]domain.Topic, 0, k)
	for c := 0; c < k; c++ {
		mean := make([]float64, len(corpus.Terms))
		var members int
		for d, a := range assign {
			if a != c {
				continue
			}
			members++
			for j, v := range corpus.Rows[d] {
				mean[j] += v
			}
		}
		if members == 0 {
			continue
		}
		for j := range mean {
			mean[j] /= float64(members)
		}
		terms := topTerms(corpus.Terms, mean, clusterTermCount)
		out = append(out, describeTopic(len(out), terms, "Research focusing on"))
	}
	return out, nil
}

func describeTopic(id int, terms []string, prefix string) domain.Topic {
	display := terms
	if len(display) > 5 {
		display = display[:5]
	}
	head := display
	if len(head) > 3 {
		head = head[:3]
	}
	return domain.Topic{
		ID:          id,
		Terms:       display,
		Description: fmt.Sprintf("%s %s", prefix, strings.Join(head, ", ")),
	}
}
