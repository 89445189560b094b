package topics

import "math/rand"

const (
	ldaIterations = 10
	ldaAlpha      = 0.1
	ldaBeta       = 0.01
)

// lda fits a latent Dirichlet allocation model over per-document term
// counts using collapsed Gibbs sampling and returns per-topic term weights
// (rows: topics, columns: vocabulary). The rng makes runs reproducible.
func lda(counts [][]int, k int, rng *rand.Rand) [][]float64 {
	if len(counts) == 0 || k <= 0 {
		return nil
	}
	width := len(counts[0])

	// Unroll the count matrix into token occurrences.
	type token struct{ doc, term int }
	var tokens []token
	for d, row := range counts {
		for j, c := range row {
			for i := 0; i < c; i++ {
				tokens = append(tokens, token{doc: d, term: j})
			}
		}
	}
	if len(tokens) == 0 {
		return nil
	}

	docTopic := make([][]int, len(counts))
	for d := range docTopic {
		docTopic[d] = make([]int, k)
	}
	topicTerm := make([][]int, k)
	for t := range topicTerm {
		topicTerm[t] = make([]int, width)
	}
	topicTotal := make([]int, k)

	// Random initial assignment.
	assign := make([]int, len(tokens))
	for i, tok := range tokens {
		t := rng.Intn(k)
		assign[i] = t
		docTopic[tok.doc][t]++
		topicTerm[t][tok.term]++
		topicTotal[t]++
	}

	weights := make([]float64, k)
	betaSum := ldaBeta * float64(width)

	for iter := 0; iter < ldaIterations; iter++ {
		for i, tok := range tokens {
			old := assign[i]
			docTopic[tok.doc][old]--
			topicTerm[old][tok.term]--
			topicTotal[old]--

			var total float64
			for t := 0; t < k; t++ {
				w := (float64(docTopic[tok.doc][t]) + ldaAlpha) *
					(float64(topicTerm[t][tok.term]) + ldaBeta) /
					(float64(topicTotal[t]) + betaSum)
				weights[t] = w
				total += w
			}

			target := rng.Float64() * total
			picked := k - 1
			var acc float64
			for t := 0; t < k; t++ {
				acc += weights[t]
				if acc >= target {
					picked = t
					break
				}
			}

			assign[i] = picked
			docTopic[tok.doc][picked]++
			topicTerm[picked][tok.term]++
			topicTotal[picked]++
		}
	}

	components := make([][]float64, k)
	for t := 0; t < k; t++ {
		row := make([]float64, width)
		for j := 0; j < width; j++ {
			row[j] = float64(topicTerm[t][j]) + ldaBeta
		}
		components[t] = row
	}
	return components
}
