package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"doccheck/internal/consistency"
	"doccheck/internal/textextract"
	dErrors "doccheck/pkg/domain-errors"
	"doccheck/pkg/platform/audit"
	"doccheck/pkg/platform/httputil"
	"doccheck/pkg/platform/sentinel"
	"doccheck/pkg/requestcontext"
)

const serviceName = "document-validator"

// Validator checks document text against a shipment record.
type Validator interface {
	Validate(ctx context.Context, shipment consistency.ShipmentRecord, documentText, documentName string) consistency.ValidationResult
	SemanticEnabled() bool
	Thresholds() consistency.Thresholds
}

// DocumentExtractor turns a stored document into normalized text.
type DocumentExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// EmbeddingStatusReporter describes the embedding backend for /health.
type EmbeddingStatusReporter interface {
	Name() string
	Healthy() bool
}

// AuditTrail records verdicts and lists the most recent ones.
type AuditTrail interface {
	Emit(ctx context.Context, event audit.Event) error
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// Handler exposes document validation over HTTP.
type Handler struct {
	validator  Validator
	extractor  DocumentExtractor
	uploadRoot string
	embedding  EmbeddingStatusReporter
	audit      AuditTrail
	version    string
	logger     *slog.Logger
}

type Option func(*Handler)

// WithEmbeddingStatus adds the embedding backend to /health.
func WithEmbeddingStatus(r EmbeddingStatusReporter) Option {
	return func(h *Handler) {
		h.embedding = r
	}
}

// WithAuditTrail records every verdict and enables GET /admin/validations.
func WithAuditTrail(a AuditTrail) Option {
	return func(h *Handler) {
		h.audit = a
	}
}

func WithVersion(v string) Option {
	return func(h *Handler) {
		h.version = v
	}
}

// New constructs a validation handler. Files named in requests are resolved
// inside uploadRoot.
func New(validator Validator, extractor DocumentExtractor, uploadRoot string, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		validator:  validator,
		extractor:  extractor,
		uploadRoot: uploadRoot,
		version:    "dev",
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.New(slog.DiscardHandler)
	}
	return h
}

// Register mounts the validation endpoints. Wrap r with authentication before
// calling it.
func (h *Handler) Register(r chi.Router) {
	r.Post("/validate-document", h.HandleValidateDocument)
	r.Post("/validate-text", h.HandleValidateText)
}

// RegisterPublic mounts the unauthenticated service endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/info", h.HandleInfo)
}

// RegisterAdmin mounts operator endpoints. Wrap r with the admin token check
// before calling it. Nothing is mounted without an audit trail.
func (h *Handler) RegisterAdmin(r chi.Router) {
	if h.audit == nil {
		return
	}
	r.Get("/admin/validations", h.HandleRecentValidations)
}

// HandleValidateDocument handles POST /validate-document.
func (h *Handler) HandleValidateDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ValidateDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	path, err := textextract.Confine(h.uploadRoot, req.FilePath)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected document path",
			"request_id", requestID,
			"file_path", req.FilePath,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "file_path must name a file inside the upload directory"))
		return
	}

	text, err := h.extractor.Extract(ctx, path)
	if err != nil {
		derr := extractionError(err)
		log := h.logger.WarnContext
		if dErrors.CodeOf(derr) == dErrors.CodeInternal {
			log = h.logger.ErrorContext
		}
		log(ctx, "document extraction failed",
			"request_id", requestID,
			"document_name", req.DocumentName,
			"error", err,
		)
		h.record(ctx, audit.Event{
			Action:       audit.ActionExtractionFailed,
			DocumentName: req.DocumentName,
			Reason:       string(dErrors.CodeOf(derr)),
		})
		httputil.WriteError(w, derr)
		return
	}

	result := h.validator.Validate(ctx, req.Shipment, text, req.DocumentName)
	h.record(ctx, verdictEvent(audit.ActionDocumentValidated, result))
	h.logger.InfoContext(ctx, "document validation served",
		"request_id", requestID,
		"document_name", req.DocumentName,
		"status", result.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleValidateText handles POST /validate-text.
func (h *Handler) HandleValidateText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ValidateTextRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	text := textextract.Normalize(req.DocumentText)
	result := h.validator.Validate(ctx, req.Shipment, text, req.DocumentName)
	h.record(ctx, verdictEvent(audit.ActionTextValidated, result))
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleHealth handles GET /health. The service stays "ok" while the
// embedding backend is down because descriptions fall back to containment.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Service: serviceName,
	}
	if h.embedding != nil {
		resp.Embedding = EmbeddingStatus{
			Enabled: true,
			Engine:  h.embedding.Name(),
			Healthy: h.embedding.Healthy(),
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleInfo handles GET /info.
func (h *Handler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, InfoResponse{
		Service:     serviceName,
		Version:     h.version,
		Description: "Validates trade documents against declared shipment data",
		Scope: []string{
			"hs_code",
			"quantity",
			"weight",
			"product_description",
			"package_type",
			"origin_country",
			"destination_country",
			"mode_of_transport",
		},
		Thresholds: h.validator.Thresholds(),
		Semantic:   h.validator.SemanticEnabled(),
	})
}

// HandleRecentValidations handles GET /admin/validations?limit=N.
func (h *Handler) HandleRecentValidations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAuditLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	events, err := h.audit.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list validations"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RecentValidationsResponse{Events: events})
}

// record stamps event with request metadata and emits it. Audit failures are
// logged and never change the response.
func (h *Handler) record(ctx context.Context, event audit.Event) {
	if h.audit == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.Caller = requestcontext.Caller(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	if err := h.audit.Emit(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "failed to record audit event",
			"request_id", event.RequestID,
			"action", event.Action,
			"error", err,
		)
	}
}

func verdictEvent(action audit.Action, result consistency.ValidationResult) audit.Event {
	event := audit.Event{
		Action:       action,
		DocumentName: result.DocumentName,
		Status:       string(result.Status),
		IssueCount:   len(result.Issues),
	}
	for _, issue := range result.Issues {
		event.Fields = append(event.Fields, issue.Field)
	}
	return event
}

// extractionError maps text extraction failures to client-facing errors.
// These are structural failures and never become a verdict.
func extractionError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "document not found")
	case errors.Is(err, textextract.ErrUnsupportedType):
		return dErrors.Wrap(err, dErrors.CodeUnprocessable, "unsupported document type")
	case errors.Is(err, textextract.ErrUnreadable):
		return dErrors.Wrap(err, dErrors.CodeUnprocessable, "document content unreadable")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnprocessable, "image documents are not supported by this deployment")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "document extraction timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "document extraction failed")
	}
}
