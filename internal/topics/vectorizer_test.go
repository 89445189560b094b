package topics

import (
	"reflect"
	"testing"
)

func TestVectorize_EmptyInput(t *testing.T) {
	if _, err := Vectorize(nil, DefaultVectorizerConfig()); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestVectorize_AllStopWords(t *testing.T) {
	texts := []string{"the and of with", "is are was were"}
	if _, err := Vectorize(texts, DefaultVectorizerConfig()); err == nil {
		t.Fatal("expected empty vocabulary error")
	}
}

func TestVectorize_BuildsVocabulary(t *testing.T) {
	texts := []string{
		"neural networks deep learning",
		"reinforcement learning agents",
	}
	corpus, err := Vectorize(texts, DefaultVectorizerConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(corpus.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(corpus.Rows))
	}
	if len(corpus.Counts) != 2 {
		t.Fatalf("expected 2 count rows, got %d", len(corpus.Counts))
	}

	var hasNeural, hasBigram bool
	for _, term := range corpus.Terms {
		if term == "neural" {
			hasNeural = true
		}
		if term == "neural networks" {
			hasBigram = true
		}
	}
	if !hasNeural {
		t.Error("vocabulary missing unigram 'neural'")
	}
	if !hasBigram {
		t.Error("vocabulary missing bigram 'neural networks'")
	}
}

func TestVectorize_MaxDocFracDropsUbiquitousTerms(t *testing.T) {
	texts := []string{
		"robotics common term one",
		"vision common term two",
		"language common term three",
	}
	corpus, err := Vectorize(texts, VectorizerConfig{MaxFeatures: 100, MaxDocFrac: 0.66})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, term := range corpus.Terms {
		if term == "common" || term == "term" {
			t.Errorf("term %q present in all docs should have been dropped", term)
		}
	}
}

func TestVectorize_MaxFeaturesCapsVocabulary(t *testing.T) {
	texts := []string{
		"alpha beta gamma delta epsilon",
		"zeta eta theta iota kappa",
	}
	corpus, err := Vectorize(texts, VectorizerConfig{MaxFeatures: 4, MaxDocFrac: 0.95})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(corpus.Terms) != 4 {
		t.Errorf("expected 4 terms, got %d", len(corpus.Terms))
	}
}

func TestVectorize_RowsAreL2Normalized(t *testing.T) {
	texts := []string{"quantum computing qubits", "classical computing bits"}
	corpus, err := Vectorize(texts, DefaultVectorizerConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for d, row := range corpus.Rows {
		var norm float64
		for _, v := range row {
			norm += v * v
		}
		if norm < 0.999 || norm > 1.001 {
			t.Errorf("row %d squared norm = %f, want 1", d, norm)
		}
	}
}

func TestTopKeywords_Deterministic(t *testing.T) {
	texts := []string{
		"federated learning privacy preservation",
		"privacy preserving machine learning",
		"differential privacy mechanisms",
	}
	cfg := DefaultVectorizerConfig()

	c1, err := Vectorize(texts, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c2, err := Vectorize(texts, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(c1.TopKeywords(10), c2.TopKeywords(10)) {
		t.Error("identical corpora produced different keyword rankings")
	}
}

func TestTopTerms_TruncatesAndOrders(t *testing.T) {
	terms := []string{"a", "b", "c"}
	weights := []float64{0.2, 0.9, 0.5}

	got := topTerms(terms, weights, 2)
	want := []string{"b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("topTerms = %v, want %v", got, want)
	}
}
