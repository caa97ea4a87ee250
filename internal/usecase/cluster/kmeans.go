package cluster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DefaultMaxIterations caps Lloyd iterations.
const DefaultMaxIterations = 100

// Assignment is the outcome of a k-means run.
type Assignment struct {
	// Labels maps document index to cluster index.
	Labels []int
	// Centroids holds one vector per cluster index.
	Centroids  [][]float64
	Iterations int
	Converged  bool
}

// KMeans partitions vectors into k groups.
//
// Seeding is a pure function of the input: indices are stable-sorted by the
// first vector component and k seeds are taken at evenly spaced positions of
// that order. Distance ties resolve to the lowest centroid index. Iteration
// stops when the assignment repeats or after maxIter rounds.
//
// With len(vectors) <= k every document becomes its own cluster.
func KMeans(vectors [][]float64, k, maxIter int) Assignment {
	n := len(vectors)
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	if n == 0 || k <= 0 {
		return Assignment{Converged: true}
	}

	if n <= k {
		labels := make([]int, n)
		centroids := make([][]float64, n)
		for i := range vectors {
			labels[i] = i
			centroids[i] = cloneVector(vectors[i])
		}
		return Assignment{Labels: labels, Centroids: centroids, Converged: true}
	}

	centroids := seedCentroids(vectors, k)

	var prev []int
	res := Assignment{Centroids: centroids}
	for iter := 1; iter <= maxIter; iter++ {
		labels := assign(vectors, centroids)
		res.Iterations = iter
		res.Labels = labels

		if prev != nil && equalLabels(prev, labels) {
			res.Converged = true
			break
		}
		updateCentroids(vectors, labels, centroids)
		prev = labels
	}
	return res
}

// seedCentroids picks seed_i = order[floor(i*n/k)] from indices sorted by
// the first component. Vectors of an empty vocabulary count as 0.
func seedCentroids(vectors [][]float64, k int) [][]float64 {
	n := len(vectors)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return firstComponent(vectors[order[a]]) < firstComponent(vectors[order[b]])
	})

	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = cloneVector(vectors[order[i*n/k]])
	}
	return centroids
}

func assign(vectors, centroids [][]float64) []int {
	labels := make([]int, len(vectors))
	for i, v := range vectors {
		best, bestDist := 0, math.Inf(1)
		for c, centroid := range centroids {
			// Strict comparison keeps the lowest index on ties.
			if d := floats.Distance(v, centroid, 2); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
	}
	return labels
}

// updateCentroids recomputes each centroid as the mean of its members.
// Centroids without members keep their previous value.
func updateCentroids(vectors [][]float64, labels []int, centroids [][]float64) {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, v := range vectors {
		floats.Add(sums[labels[i]], v)
		counts[labels[i]]++
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		centroids[c] = sums[c]
	}
}

func firstComponent(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

func equalLabels(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneVector(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
