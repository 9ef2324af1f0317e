package handler

import (
	"doccheck/internal/consistency"
	"doccheck/pkg/platform/audit"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string          `json:"status"`
	Service   string          `json:"service"`
	Embedding EmbeddingStatus `json:"embedding"`
}

// EmbeddingStatus reports the semantic description backend.
type EmbeddingStatus struct {
	Enabled bool   `json:"enabled"`
	Engine  string `json:"engine,omitempty"`
	Healthy bool   `json:"healthy"`
}

// InfoResponse is the body of GET /info.
type InfoResponse struct {
	Service     string                 `json:"service"`
	Version     string                 `json:"version"`
	Description string                 `json:"description"`
	Scope       []string               `json:"scope"`
	Thresholds  consistency.Thresholds `json:"thresholds"`
	Semantic    bool                   `json:"semantic_descriptions"`
}

// ValidationResponse mirrors consistency.ValidationResult on the wire.
type ValidationResponse struct {
	DocumentName string                        `json:"documentName"`
	Status       consistency.Status            `json:"status"`
	Issues       []consistency.ValidationIssue `json:"issues"`
}

// FromResult converts a validation result to its HTTP response.
func FromResult(result consistency.ValidationResult) *ValidationResponse {
	issues := result.Issues
	if issues == nil {
		issues = []consistency.ValidationIssue{}
	}
	return &ValidationResponse{
		DocumentName: result.DocumentName,
		Status:       result.Status,
		Issues:       issues,
	}
}

// RecentValidationsResponse is the body of GET /admin/validations.
type RecentValidationsResponse struct {
	Events []audit.Event `json:"events"`
}
