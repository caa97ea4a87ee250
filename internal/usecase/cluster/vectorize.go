package cluster

import "gonum.org/v1/gonum/floats"

// Vectorize maps each tokenized document to an L2-normalized term-frequency
// vector over the vocabulary. Documents without vocabulary terms stay all zeros.
func Vectorize(docs [][]string, vocab Vocabulary) [][]float64 {
	vectors := make([][]float64, len(docs))
	for i, tokens := range docs {
		vec := make([]float64, vocab.Len())
		for _, tok := range tokens {
			if dim, ok := vocab.Index(tok); ok {
				vec[dim]++
			}
		}
		if mag := floats.Norm(vec, 2); mag > 0 {
			floats.Scale(1/mag, vec)
		}
		vectors[i] = vec
	}
	return vectors
}
