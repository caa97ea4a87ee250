package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecluster/internal/domain"
	domcluster "github.com/kailas-cloud/vecluster/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/vecluster/internal/domain/document"
	domusage "github.com/kailas-cloud/vecluster/internal/domain/usage"
	"github.com/kailas-cloud/vecluster/internal/logger"
	clusteruc "github.com/kailas-cloud/vecluster/internal/usecase/cluster"
	healthuc "github.com/kailas-cloud/vecluster/internal/usecase/health"
	usageuc "github.com/kailas-cloud/vecluster/internal/usecase/usage"
)

// DefaultMaxDocuments bounds data_points per request.
const DefaultMaxDocuments = 1000

// maxBodyBytes bounds the request body independently of the JSON shape.
const maxBodyBytes = 32 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the clustering HTTP API.
type Server struct {
	clusters      *clusteruc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxDocuments  int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	clusters *clusteruc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		clusters:     clusters,
		usage:        usage,
		health:       health,
		logger:       logger,
		maxDocuments: DefaultMaxDocuments,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
	}
	return s
}

// WithMaxDocuments overrides the per-request document limit.
func (s *Server) WithMaxDocuments(n int) *Server {
	if n > 0 {
		s.maxDocuments = n
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chirouter.Router) {
		r.Post("/clusters", s.CreateClusters)
		r.Get("/usage", s.GetUsage)
	})
}

// CreateClusters handles POST /api/v1/clusters.
func (s *Server) CreateClusters(w http.ResponseWriter, r *http.Request) {
	var req ClusterRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	docs, err := s.documentsFromRequest(req.DataPoints)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	k := 0
	if req.NumClusters != nil {
		if *req.NumClusters < 1 {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "num_clusters: must be at least 1")
			return
		}
		k = *req.NumClusters
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.clusters.Cluster(ctx, docs, k)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setSummaryHeaders(w, usage)
	writeJSON(w, http.StatusOK, resultToResponse(res))
}

// GetUsage handles GET /api/v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	var periodParam *string
	if err := runtime.BindQueryParameter("form", true, false, "period", r.URL.Query(), &periodParam); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter period: "+err.Error())
		return
	}

	raw := ""
	if periodParam != nil {
		raw = *periodParam
	}
	period, ok := domusage.ParsePeriod(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "period: must be one of day, month, total")
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	budget := report.Budget()

	resp := UsageResponse{
		Period:   string(report.Period()),
		Provider: report.Provider(),
		Tokens:   report.Tokens(),
		Budget: BudgetStatus{
			TokensLimit:     budget.TokensLimit(),
			TokensRemaining: budget.TokensRemaining(),
			IsExhausted:     budget.IsExhausted(),
		},
	}
	if report.PeriodStart() > 0 {
		resp.PeriodStartAt = millisToRFC3339(report.PeriodStart())
		resp.PeriodEndAt = millisToRFC3339(report.PeriodEnd())
	}
	if budget.ResetsAt() > 0 {
		resp.Budget.ResetsAt = millisToRFC3339(budget.ResetsAt())
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// documentsFromRequest validates data_points and converts each item.
func (s *Server) documentsFromRequest(raw json.RawMessage) ([]domdoc.Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, domain.NewValidationError("data_points", "is required")
	}
	if trimmed[0] != '[' {
		return nil, domain.NewValidationError("data_points", "must be an array")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, domain.NewValidationError("data_points", "must be an array")
	}
	if len(items) == 0 {
		return nil, domain.NewValidationError("data_points", "must not be empty")
	}
	if len(items) > s.maxDocuments {
		return nil, domain.NewValidationError("data_points",
			fmt.Sprintf("too many items (max %d)", s.maxDocuments))
	}

	docs := make([]domdoc.Document, len(items))
	for i, item := range items {
		doc, err := documentFromItem(i, item)
		if err != nil {
			return nil, err
		}
		docs[i] = doc
	}
	return docs, nil
}

func documentFromItem(i int, item json.RawMessage) (domdoc.Document, error) {
	field := "data_points[" + strconv.Itoa(i) + "]"
	item = bytes.TrimSpace(item)

	switch {
	case len(item) > 0 && item[0] == '"':
		var text string
		if err := json.Unmarshal(item, &text); err != nil {
			return domdoc.Document{}, domain.NewValidationError(field, "invalid string")
		}
		return wrapItemError(field, func() (domdoc.Document, error) { return domdoc.FromText(i, text) })

	case len(item) > 0 && item[0] == '{':
		var obj DataPointObject
		if err := json.Unmarshal(item, &obj); err != nil {
			return domdoc.Document{}, domain.NewValidationError(field, "id, content, name and type must be strings")
		}
		if obj.Content == nil {
			return domdoc.Document{}, domain.NewValidationError(field+".content", "is required")
		}
		id := deref(obj.ID)
		if id == "" {
			id = domdoc.DefaultID(i)
		}
		return wrapItemError(field, func() (domdoc.Document, error) {
			return domdoc.New(id, *obj.Content, deref(obj.Name), deref(obj.Type))
		})

	default:
		return domdoc.Document{}, domain.NewValidationError(field, "must be a string or an object with content")
	}
}

func wrapItemError(field string, build func() (domdoc.Document, error)) (domdoc.Document, error) {
	doc, err := build()
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return domdoc.Document{}, domain.NewValidationError(field+"."+ve.Field, ve.Reason)
		}
		return domdoc.Document{}, fmt.Errorf("%s: %w", field, err)
	}
	return doc, nil
}

func resultToResponse(res *domcluster.Result) ClusterResponse {
	clusters := make([]Cluster, len(res.Clusters))
	for i, c := range res.Clusters {
		points := make([]DataPoint, len(c.Members()))
		for j, d := range c.Members() {
			points[j] = DataPoint{ID: d.ID(), Content: d.Content(), Name: d.Name(), Type: d.Type()}
		}
		centroid := c.Centroid()
		if centroid == nil {
			centroid = []float64{}
		}
		clusters[i] = Cluster{
			ID:              c.ID(),
			DataPoints:      points,
			Summary:         c.Summary(),
			SimilarityScore: c.Similarity(),
			Centroid:        centroid,
		}
	}

	md := res.Metadata
	return ClusterResponse{
		Clusters: clusters,
		Metadata: ClusterMetadata{
			TotalPoints:    md.TotalDocuments,
			ProcessingTime: md.ProcessingTime.Milliseconds(),
			Algorithm:      md.Algorithm,
			Version:        md.Version,
			Timestamp:      md.Timestamp.UTC().Format(time.RFC3339),
		},
	}
}

func setSummaryHeaders(w http.ResponseWriter, usage *domain.SummaryUsage) {
	w.Header().Set("X-Summary-Tokens", strconv.Itoa(usage.TotalTokens()))
	w.Header().Set("X-Summary-Fallbacks", strconv.Itoa(usage.Fallbacks()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// validationHandler maps input errors to 400 with the field-level message.
func validationHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	msg := domain.ErrInvalidInput.Error()
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		msg = ve.Error()
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Debug("request rejected", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func millisToRFC3339(ms int64) *string {
	s := time.UnixMilli(ms).UTC().Format(time.RFC3339)
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
