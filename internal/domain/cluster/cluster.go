// Package cluster holds the value objects returned by the clustering pipeline.
package cluster

import (
	"time"

	domdoc "github.com/kailas-cloud/vecluster/internal/domain/document"
)

// Algorithm identification reported in result metadata.
const (
	AlgorithmName    = "k-means"
	AlgorithmVersion = "1.0.0"
)

// Cluster is a labeled, scored group of documents.
type Cluster struct {
	id         int
	members    []domdoc.Document
	centroid   []float64
	similarity float64
	summary    string
}

// New creates a Cluster. Members keep their input order.
func New(id int, members []domdoc.Document, centroid []float64, similarity float64, summary string) Cluster {
	return Cluster{
		id:         id,
		members:    members,
		centroid:   centroid,
		similarity: similarity,
		summary:    summary,
	}
}

// ID returns the contiguous cluster index.
func (c Cluster) ID() int { return c.id }

// Members returns the documents assigned to the cluster, in input order.
func (c Cluster) Members() []domdoc.Document { return c.members }

// Centroid returns the mean vector of the members.
func (c Cluster) Centroid() []float64 { return c.centroid }

// Similarity returns the cohesion score in [0, 1].
func (c Cluster) Similarity() float64 { return c.similarity }

// Summary returns the natural-language label.
func (c Cluster) Summary() string { return c.summary }

// Metadata describes a clustering run.
type Metadata struct {
	TotalDocuments int
	ProcessingTime time.Duration
	Algorithm      string
	Version        string
	Timestamp      time.Time
}

// Result is the assembled response of a clustering run.
type Result struct {
	Clusters []Cluster
	Metadata Metadata
}

// MemberCount returns the number of documents across all clusters.
func (r *Result) MemberCount() int {
	n := 0
	for _, c := range r.Clusters {
		n += len(c.Members())
	}
	return n
}
