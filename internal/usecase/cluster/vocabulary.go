package cluster

import "sort"

const (
	// DefaultVocabularySize caps the number of vector dimensions.
	DefaultVocabularySize = 100
	// minTermLength is the shortest token admitted into the vocabulary.
	minTermLength = 3
)

// Vocabulary is the frequency-ranked term dictionary of one request.
// Term order is the vector dimension order.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// BuildVocabulary ranks the tokens of all documents by corpus frequency and
// keeps the top size terms. Tokens shorter than 3 characters are skipped.
// Equal frequencies are ordered by first occurrence in the corpus.
func BuildVocabulary(docs [][]string, size int) Vocabulary {
	if size <= 0 {
		size = DefaultVocabularySize
	}

	counts := make(map[string]int)
	var order []string // first-occurrence order
	for _, tokens := range docs {
		for _, tok := range tokens {
			if len(tok) < minTermLength {
				continue
			}
			if _, seen := counts[tok]; !seen {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	// Stable sort keeps first-occurrence order among equal counts.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > size {
		order = order[:size]
	}

	index := make(map[string]int, len(order))
	for i, term := range order {
		index[term] = i
	}
	return Vocabulary{terms: order, index: index}
}

// Terms returns the vocabulary in dimension order.
func (v Vocabulary) Terms() []string { return v.terms }

// Len returns the number of dimensions.
func (v Vocabulary) Len() int { return len(v.terms) }

// Index returns the dimension of a term.
func (v Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}
