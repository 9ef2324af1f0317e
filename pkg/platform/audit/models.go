// Package audit records what the validator decided so operators can trace a
// verdict back to the caller and request that produced it.
package audit

import (
	"context"
	"time"
)

// Action names the event.
type Action string

const (
	// ActionDocumentValidated is a verdict on a stored file.
	ActionDocumentValidated Action = "document_validated"
	// ActionTextValidated is a verdict on posted text.
	ActionTextValidated Action = "text_validated"
	// ActionExtractionFailed is a stored file that produced no verdict.
	ActionExtractionFailed Action = "document_extraction_failed"
)

// Event is one audit record. It carries field labels and verdicts only,
// never document text or shipment values.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	Action       Action    `json:"action"`
	RequestID    string    `json:"request_id,omitempty"`
	Caller       string    `json:"caller,omitempty"`
	ClientIP     string    `json:"client_ip,omitempty"`
	DocumentName string    `json:"document_name"`
	Status       string    `json:"status,omitempty"`
	IssueCount   int       `json:"issue_count"`
	// Fields lists the labels of fields that produced an issue.
	Fields []string `json:"fields,omitempty"`
	// Reason is the error code for events without a verdict.
	Reason string `json:"reason,omitempty"`
}

// Store persists events.
type Store interface {
	Append(ctx context.Context, event Event) error
	// ListRecent returns up to limit events, newest first.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
