package handler

import (
	"strings"

	"doccheck/internal/consistency"
	dErrors "doccheck/pkg/domain-errors"
)

const (
	maxDocumentNameLength = 255
	maxDocumentTextLength = 512 * 1024
)

// ValidateDocumentRequest is the body of POST /validate-document.
type ValidateDocumentRequest struct {
	Shipment     consistency.ShipmentRecord `json:"shipment"`
	DocumentName string                     `json:"document_name"`
	FilePath     string                     `json:"file_path"`
}

// Validate implements httputil.Validatable.
func (r *ValidateDocumentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.FilePath = strings.TrimSpace(r.FilePath)
	if r.FilePath == "" {
		return dErrors.New(dErrors.CodeValidation, "file_path is required")
	}
	name, err := documentName(r.DocumentName, r.FilePath)
	if err != nil {
		return err
	}
	r.DocumentName = name
	return nil
}

// ValidateTextRequest is the body of POST /validate-text.
type ValidateTextRequest struct {
	Shipment     consistency.ShipmentRecord `json:"shipment"`
	DocumentName string                     `json:"document_name"`
	DocumentText string                     `json:"document_text"`
}

// Validate implements httputil.Validatable. Empty text is allowed; the
// evaluator reports it as insufficient content.
func (r *ValidateTextRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.DocumentText) > maxDocumentTextLength {
		return dErrors.New(dErrors.CodeValidation, "document_text is too large")
	}
	name, err := documentName(r.DocumentName, "document.txt")
	if err != nil {
		return err
	}
	r.DocumentName = name
	return nil
}

func documentName(name, fallback string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) > maxDocumentNameLength {
		return "", dErrors.New(dErrors.CodeValidation, "document_name must be at most 255 characters")
	}
	if name == "" {
		if i := strings.LastIndexAny(fallback, `/\`); i >= 0 {
			fallback = fallback[i+1:]
		}
		return fallback, nil
	}
	return name, nil
}
