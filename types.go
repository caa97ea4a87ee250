package vecluster

import "time"

// DataPoint is one input text. An empty ID is replaced with point_<index>.
type DataPoint struct {
	ID      string
	Content string
	Name    string
	Type    string
}

// Cluster is one labeled group of data points.
type Cluster struct {
	ID              int
	DataPoints      []DataPoint
	Summary         string
	SimilarityScore float64
	Centroid        []float64
}

// Metadata describes a clustering run.
type Metadata struct {
	TotalPoints    int
	ProcessingTime time.Duration
	Algorithm      string
	Version        string
	Timestamp      time.Time
}

// Usage reports how the summaries of one call were produced.
type Usage struct {
	SummaryTokens int
	Remote        int
	Fallbacks     int
}

// Result is the output of a clustering call.
type Result struct {
	Clusters []Cluster
	Metadata Metadata
	Usage    Usage
}
