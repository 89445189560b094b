package topics

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/crestline-labs/paperdesk/internal/domain"
)

func testPapers() []domain.Paper {
	return []domain.Paper{
		{Title: "Graph neural networks for molecules", Snippet: "message passing networks predict molecular properties"},
		{Title: "Transformers in protein folding", Snippet: "attention models fold protein structures accurately"},
		{Title: "Contrastive learning of graph embeddings", Snippet: "self supervised objectives learn graph representations"},
		{Title: "Molecular property prediction benchmarks", Snippet: "datasets evaluate molecular machine learning models"},
	}
}

func TestGenerate_NoPapers(t *testing.T) {
	g := New(zap.NewNop())
	if _, err := g.Generate(context.Background(), nil, 5); err != domain.ErrNoPapers {
		t.Fatalf("expected ErrNoPapers, got %v", err)
	}
}

func TestGenerate_NoText(t *testing.T) {
	g := New(zap.NewNop())
	papers := []domain.Paper{{Title: "", Snippet: "   "}}
	if _, err := g.Generate(context.Background(), papers, 5); err != domain.ErrNoText {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestGenerate_KeywordsAlwaysPopulated(t *testing.T) {
	g := New(zap.NewNop())
	res, err := g.Generate(context.Background(), testPapers(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Keywords == nil {
		t.Fatal("keywords must never be nil for a non-empty paper set")
	}
	if len(res.Keywords) == 0 {
		t.Fatal("expected non-empty keywords")
	}
	if len(res.Keywords) > keywordsReturned {
		t.Errorf("expected at most %d keywords, got %d", keywordsReturned, len(res.Keywords))
	}
}

func TestGenerate_SingleTextSkipsTopicModeling(t *testing.T) {
	g := New(zap.NewNop())
	papers := []domain.Paper{
		{Title: "Quantum error correction codes", Snippet: "stabilizer codes protect qubits"},
		{Title: "", Snippet: ""}, // skipped: no text
	}

	res, err := g.Generate(context.Background(), papers, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Keywords) == 0 {
		t.Error("keywords should still be populated")
	}
	if len(res.ClusterTopics) != 0 {
		t.Errorf("expected no cluster topics for a single text, got %d", len(res.ClusterTopics))
	}
	if len(res.ModelTopics) != 0 {
		t.Errorf("expected no model topics for a single text, got %d", len(res.ModelTopics))
	}
	if res.Summary.TotalPapers != 2 || res.Summary.TextSources != 1 {
		t.Errorf("summary = %+v, want 2 papers / 1 text source", res.Summary)
	}
}

func TestGenerate_TopicCountNeverExceeded(t *testing.T) {
	g := New(zap.NewNop())
	for _, k := range []int{1, 2, 3, 10} {
		t.Run(fmt.Sprintf("n_topics=%d", k), func(t *testing.T) {
			res, err := g.Generate(context.Background(), testPapers(), k)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(res.ClusterTopics) > k {
				t.Errorf("got %d cluster topics, requested %d", len(res.ClusterTopics), k)
			}
			if len(res.ModelTopics) > k {
				t.Errorf("got %d model topics, requested %d", len(res.ModelTopics), k)
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	g := New(zap.NewNop())

	r1, err := g.Generate(context.Background(), testPapers(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := g.Generate(context.Background(), testPapers(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(r1, r2) {
		t.Error("identical inputs produced different topic results")
	}
}

func TestGenerate_DefaultTopicCount(t *testing.T) {
	g := New(zap.NewNop())
	res, err := g.Generate(context.Background(), testPapers(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Four texts clamp the default of five down to four.
	if len(res.ClusterTopics) > DefaultTopicCount {
		t.Errorf("got %d cluster topics, want at most %d", len(res.ClusterTopics), DefaultTopicCount)
	}
}

// failingClusterer exercises graceful degradation.
type failingClusterer struct{}

func (failingClusterer) Cluster(context.Context, *Corpus, int) ([]domain.Topic, error) {
	return nil, fmt.Errorf("boom")
}

func TestGenerate_ClusterFailureDegrades(t *testing.T) {
	g := New(zap.NewNop()).WithClusterer(failingClusterer{})
	res, err := g.Generate(context.Background(), testPapers(), 3)
	if err != nil {
		t.Fatalf("stage failure must not fail the request: %v", err)
	}
	if len(res.Keywords) == 0 {
		t.Error("keywords should survive a clustering failure")
	}
	if len(res.ClusterTopics) != 0 {
		t.Error("expected empty cluster topics after failure")
	}
	if len(res.ModelTopics) == 0 {
		t.Error("model topics should survive a clustering failure")
	}
}

func TestGenerate_TopicDescriptions(t *testing.T) {
	g := New(zap.NewNop())
	res, err := g.Generate(context.Background(), testPapers(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, topic := range res.ClusterTopics {
		if len(topic.Terms) == 0 || len(topic.Terms) > 5 {
			t.Errorf("cluster topic terms out of range: %v", topic.Terms)
		}
		if topic.Description == "" {
			t.Error("cluster topic missing description")
		}
	}
	for _, topic := range res.ModelTopics {
		if topic.Description == "" {
			t.Error("model topic missing description")
		}
	}
}

func TestSynthesizeQuestions(t *testing.T) {
	t.Run("too few keywords", func(t *testing.T) {
		if q := synthesizeQuestions([]string{"one", "two"}); q != nil {
			t.Errorf("expected nil, got %v", q)
		}
	})

	t.Run("fills templates", func(t *testing.T) {
		q := synthesizeQuestions([]string{"deep learning", "healthcare", "imaging"})
		if len(q) != maxTemplatesUsed {
			t.Fatalf("expected %d questions, got %d", maxTemplatesUsed, len(q))
		}
		if q[0] != "How does deep learning impact healthcare in the context of imaging?" {
			t.Errorf("unexpected first question: %q", q[0])
		}
	})
}
