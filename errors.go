package vecluster

import "github.com/kailas-cloud/vecluster/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput          = domain.ErrInvalidInput
	ErrSummarizerUnavailable = domain.ErrSummarizerUnavailable
	ErrSummaryQuotaExceeded  = domain.ErrSummaryQuotaExceeded
	ErrPipelinePanic         = domain.ErrPipelinePanic
)
