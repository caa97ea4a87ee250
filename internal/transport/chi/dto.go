package chi

import "encoding/json"

// ErrorCode is the machine-readable error identifier of an ErrorResponse.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ClusterRequest is the body of POST /api/v1/clusters.
// DataPoints stays raw: items are either strings or objects.
type ClusterRequest struct {
	DataPoints  json.RawMessage `json:"data_points"`
	NumClusters *int            `json:"num_clusters,omitempty"`
}

// DataPointObject is the object form of a data point.
type DataPointObject struct {
	ID      *string `json:"id,omitempty"`
	Content *string `json:"content"`
	Name    *string `json:"name,omitempty"`
	Type    *string `json:"type,omitempty"`
}

// DataPoint is a document echoed back inside a cluster.
type DataPoint struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Cluster is one labeled segment.
type Cluster struct {
	ID              int         `json:"id"`
	DataPoints      []DataPoint `json:"data_points"`
	Summary         string      `json:"summary"`
	SimilarityScore float64     `json:"similarity_score"`
	Centroid        []float64   `json:"centroid"`
}

// ClusterMetadata describes a clustering run.
type ClusterMetadata struct {
	TotalPoints int `json:"total_points"`
	// ProcessingTime is wall-clock milliseconds.
	ProcessingTime int64  `json:"processing_time"`
	Algorithm      string `json:"algorithm"`
	Version        string `json:"version"`
	Timestamp      string `json:"timestamp"`
}

// ClusterResponse is the body of a successful clustering request.
type ClusterResponse struct {
	Clusters []Cluster       `json:"clusters"`
	Metadata ClusterMetadata `json:"metadata"`
}

// UsageResponse is the body of GET /api/v1/usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	Provider      string       `json:"provider,omitempty"`
	PeriodStartAt *string      `json:"period_start_at,omitempty"`
	PeriodEndAt   *string      `json:"period_end_at,omitempty"`
	Tokens        int64        `json:"tokens"`
	Budget        BudgetStatus `json:"budget"`
}

// BudgetStatus is the token budget state inside UsageResponse.
type BudgetStatus struct {
	TokensLimit     int64   `json:"tokens_limit"`
	TokensRemaining int64   `json:"tokens_remaining"`
	IsExhausted     bool    `json:"is_exhausted"`
	ResetsAt        *string `json:"resets_at,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
