package cluster

// Group is a non-empty cluster produced by Analyze.
type Group struct {
	// Members are document indices in input order.
	Members    []int
	Centroid   []float64
	Similarity float64
}

// Analysis is the deterministic part of a clustering run.
type Analysis struct {
	Vocabulary Vocabulary
	Vectors    [][]float64
	Assignment Assignment
	// Groups are the non-empty clusters, renumbered contiguously in
	// original cluster index order.
	Groups []Group
}

// Analyze runs normalization, vocabulary, vectorization, k-means and
// cohesion scoring. Identical input always yields identical output.
// k must be in [1, len(contents)].
func Analyze(contents []string, k, vocabSize, maxIter int) Analysis {
	tokens := make([][]string, len(contents))
	for i, c := range contents {
		tokens[i] = Tokenize(Normalize(c))
	}

	vocab := BuildVocabulary(tokens, vocabSize)
	vectors := Vectorize(tokens, vocab)
	asg := KMeans(vectors, k, maxIter)

	byLabel := make([][]int, len(asg.Centroids))
	for doc, label := range asg.Labels {
		byLabel[label] = append(byLabel[label], doc)
	}

	groups := make([]Group, 0, len(byLabel))
	for label, members := range byLabel {
		if len(members) == 0 {
			continue
		}
		memberVecs := make([][]float64, len(members))
		for i, doc := range members {
			memberVecs[i] = vectors[doc]
		}
		centroid := asg.Centroids[label]
		groups = append(groups, Group{
			Members:    members,
			Centroid:   centroid,
			Similarity: Cohesion(memberVecs, centroid),
		})
	}

	return Analysis{
		Vocabulary: vocab,
		Vectors:    vectors,
		Assignment: asg,
		Groups:     groups,
	}
}

// DefaultK is the cluster count used when the caller gives none:
// min(ceil(n/3), 5), at least 1.
func DefaultK(n int) int {
	k := (n + 2) / 3
	if k > 5 {
		k = 5
	}
	if k < 1 {
		k = 1
	}
	return k
}
