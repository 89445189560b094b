package topics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/crestline-labs/paperdesk/internal/textutil"
)

// stopWords are dropped before term weighting. The list extends a standard
// English set with terms that are noise in academic corpora.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "have": {},
	"has": {}, "had": {}, "do": {}, "does": {}, "did": {}, "will": {},
	"would": {}, "could": {}, "should": {}, "may": {}, "might": {}, "can": {},
	"we": {}, "our": {}, "it": {}, "its": {}, "as": {}, "from": {}, "not": {},
	"study": {}, "research": {}, "paper": {}, "article": {}, "analysis": {},
	"using": {}, "based": {},
}

// VectorizerConfig bounds the vocabulary built from a corpus.
type VectorizerConfig struct {
	MaxFeatures int     // vocabulary cap, most frequent terms kept
	MaxDocFrac  float64 // terms present in more than this fraction of docs are dropped
	Bigrams     bool    // include adjacent-token bigrams
}

// DefaultVectorizerConfig mirrors the keyword-extraction settings.
func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{MaxFeatures: 1000, MaxDocFrac: 0.95, Bigrams: true}
}

// Corpus is the vectorized view of the input documents: a shared vocabulary,
// per-document term counts, and l2-normalized TF-IDF rows.
type Corpus struct {
	Texts  []string    // preprocessed document texts
	Terms  []string    // vocabulary, index-aligned with matrix columns
	Counts [][]int     // raw term counts per document
	Rows   [][]float64 // TF-IDF weights per document
}

// Vectorize builds a Corpus from preprocessed texts. Returns an error when
// the vocabulary comes out empty (e.g. all tokens are stop words).
func Vectorize(texts []string, cfg VectorizerConfig) (*Corpus, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no documents to vectorize")
	}

	docTokens := make([][]string, len(texts))
	for i, text := range texts {
		docTokens[i] = tokenize(text, cfg.Bigrams)
	}

	terms := buildVocabulary(docTokens, cfg)
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty vocabulary")
	}

	index := make(map[string]int, len(terms))
	for i, t := range terms {
		index[t] = i
	}

	counts := make([][]int, len(texts))
	for d, tokens := range docTokens {
		row := make([]int, len(terms))
		for _, tok := range tokens {
			if j, ok := index[tok]; ok {
				row[j]++
			}
		}
		counts[d] = row
	}

	return &Corpus{
		Texts:  texts,
		Terms:  terms,
		Counts: counts,
		Rows:   tfidfRows(counts),
	}, nil
}

// tokenize splits normalized text into unigram (and optionally bigram)
// terms, dropping stop words and single-character tokens.
func tokenize(text string, bigrams bool) []string {
	words := strings.Fields(textutil.NormalizeForVectorizing(text))

	kept := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}

	if !bigrams {
		return kept
	}

	out := make([]string, 0, 2*len(kept))
	out = append(out, kept...)
	for i := 0; i+1 < len(kept); i++ {
		out = append(out, kept[i]+" "+kept[i+1])
	}
	return out
}

// buildVocabulary selects terms by document frequency: overly common terms
// are dropped, then the most frequent MaxFeatures terms are kept.
func buildVocabulary(docTokens [][]string, cfg VectorizerConfig) []string {
	docFreq := make(map[string]int)
	totalFreq := make(map[string]int)

	for _, tokens := range docTokens {
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			totalFreq[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				docFreq[t]++
			}
		}
	}

	n := len(docTokens)
	terms := make([]string, 0, len(docFreq))
	for t, df := range docFreq {
		if n > 1 && cfg.MaxDocFrac > 0 && float64(df)/float64(n) > cfg.MaxDocFrac {
			continue
		}
		terms = append(terms, t)
	}

	// Most frequent first, vocabulary order as tiebreak for determinism.
	sort.Slice(terms, func(i, j int) bool {
		if totalFreq[terms[i]] != totalFreq[terms[j]] {
			return totalFreq[terms[i]] > totalFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if cfg.MaxFeatures > 0 && len(terms) > cfg.MaxFeatures {
		terms = terms[:cfg.MaxFeatures]
	}

	// Column order is alphabetical so the matrix layout is stable.
	sort.Strings(terms)
	return terms
}

// tfidfRows computes smoothed TF-IDF with l2 row normalization:
// tf * (ln((1+n)/(1+df)) + 1).
func tfidfRows(counts [][]int) [][]float64 {
	if len(counts) == 0 {
		return nil
	}
	n := len(counts)
	width := len(counts[0])

	df := make([]int, width)
	for _, row := range counts {
		for j, c := range row {
			if c > 0 {
				df[j]++
			}
		}
	}

	idf := make([]float64, width)
	for j := range idf {
		idf[j] = math.Log(float64(1+n)/float64(1+df[j])) + 1
	}

	rows := make([][]float64, n)
	for d, row := range counts {
		vec := make([]float64, width)
		var norm float64
		for j, c := range row {
			v := float64(c) * idf[j]
			vec[j] = v
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range vec {
				vec[j] /= norm
			}
		}
		rows[d] = vec
	}
	return rows
}

// TopKeywords returns the n terms with the highest mean TF-IDF score
// across the corpus, best first.
func (c *Corpus) TopKeywords(n int) []string {
	if len(c.Rows) == 0 || len(c.Terms) == 0 {
		return nil
	}

	means := make([]float64, len(c.Terms))
	for _, row := range c.Rows {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(len(c.Rows))
	}

	return topTerms(c.Terms, means, n)
}

// topTerms returns the n terms with the highest weights, best first.
// Ties break alphabetically so output is deterministic.
func topTerms(terms []string, weights []float64, n int) []string {
	idx := make([]int, len(terms))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		if weights[idx[a]] != weights[idx[b]] {
			return weights[idx[a]] > weights[idx[b]]
		}
		return terms[idx[a]] < terms[idx[b]]
	})

	if n > len(idx) {
		n = len(idx)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = terms[idx[i]]
	}
	return out
}
