package cluster

import "gonum.org/v1/gonum/floats"

// Cohesion scores cluster tightness as max(0, 1 - mean member-to-centroid
// Euclidean distance). It is a bounded proxy, not a cosine similarity.
// An empty member set scores 0.
func Cohesion(members [][]float64, centroid []float64) float64 {
	if len(members) == 0 {
		return 0
	}
	var total float64
	for _, v := range members {
		total += floats.Distance(v, centroid, 2)
	}
	score := 1 - total/float64(len(members))
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
