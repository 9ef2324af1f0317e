// Package consistency decides whether the text of a trade document agrees
// with the facts declared on a shipment record.
package consistency

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"doccheck/internal/consistency/metrics"
	"doccheck/internal/consistency/ports"
	"doccheck/internal/extraction"
	dErrors "doccheck/pkg/domain-errors"
	"doccheck/pkg/requestcontext"
)

const contentLabel = "Document Content"

var tracer = otel.Tracer("doccheck/internal/consistency")

// Evaluator compares extracted document fields against a shipment record.
// It holds no per-request state, so one instance serves concurrent callers.
type Evaluator struct {
	extractor  *extraction.Extractor
	rules      []Rule
	thresholds Thresholds
	encoder    ports.Encoder
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Evaluator)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Evaluator) {
		e.metrics = m
	}
}

// WithEncoder enables semantic comparison of product descriptions. A nil
// encoder keeps the containment comparison.
func WithEncoder(enc ports.Encoder) Option {
	return func(e *Evaluator) {
		e.encoder = enc
	}
}

func WithThresholds(t Thresholds) Option {
	return func(e *Evaluator) {
		e.thresholds = t
	}
}

func WithExtractor(x *extraction.Extractor) Option {
	return func(e *Evaluator) {
		e.extractor = x
	}
}

// New constructs an Evaluator using the default extraction table and the
// policy derived from its thresholds.
func New(opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		extractor:  extraction.Default(),
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.extractor == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "extractor is required")
	}
	if err := validateThresholds(e.thresholds); err != nil {
		return nil, err
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	e.rules = DefaultRules(e.thresholds)
	return e, nil
}

func validateThresholds(t Thresholds) error {
	switch {
	case t.ContentFloor < 0:
		return dErrors.New(dErrors.CodeValidation, "content floor must not be negative")
	case t.QuantityTolerance < 0:
		return dErrors.New(dErrors.CodeValidation, "quantity tolerance must not be negative")
	case t.WeightWarn < 0 || t.WeightFail < t.WeightWarn:
		return dErrors.New(dErrors.CodeValidation, "weight thresholds must satisfy 0 <= warn <= fail")
	case t.SimilarityFail < 0 || t.SimilarityPass > 1 || t.SimilarityPass < t.SimilarityFail:
		return dErrors.New(dErrors.CodeValidation, "similarity thresholds must satisfy 0 <= fail <= pass <= 1")
	}
	return nil
}

// SemanticEnabled reports whether descriptions are graded by embedding
// similarity.
func (e *Evaluator) SemanticEnabled() bool {
	return e.encoder != nil
}

// Thresholds returns the limits the evaluator was built with.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Validate checks documentText against shipment. Structural problems with the
// document never reach this point; every outcome is expressed as a result.
func (e *Evaluator) Validate(ctx context.Context, shipment ShipmentRecord, documentText, documentName string) ValidationResult {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "consistency.Validate",
		trace.WithAttributes(attribute.String("document.name", documentName)))
	defer span.End()

	issues := e.evaluate(ctx, shipment, documentText)
	status := Aggregate(issues)

	span.SetAttributes(
		attribute.String("validation.status", string(status)),
		attribute.Int("validation.issues", len(issues)),
	)
	e.metrics.IncrementOutcome(string(status))
	for _, issue := range issues {
		e.metrics.IncrementIssue(issue.Field, string(issue.Severity))
	}
	elapsed := time.Since(start)
	e.metrics.ObserveEvaluateLatency(elapsed)

	e.logger.InfoContext(ctx, "document validated",
		"request_id", requestcontext.RequestID(ctx),
		"document_name", documentName,
		"status", status,
		"issues", len(issues),
		"duration_ms", elapsed.Milliseconds(),
	)

	return ValidationResult{
		DocumentName: documentName,
		Status:       status,
		Issues:       issues,
	}
}

func (e *Evaluator) evaluate(ctx context.Context, shipment ShipmentRecord, text string) []ValidationIssue {
	if issue := e.checkContent(text); issue != nil {
		return []ValidationIssue{*issue}
	}

	fields := e.extractor.Extract(text)
	issues := make([]ValidationIssue, 0, len(e.rules))
	for _, rule := range e.rules {
		declared := shipment.Value(rule.Field)
		if declared == "" {
			continue
		}
		doc, found := fields.Get(rule.Field)

		var issue *ValidationIssue
		if rule.Comparison == CompareSemantic {
			issue = e.compareDescription(ctx, rule, doc, found, declared)
		} else {
			issue = compareField(rule, doc, found, declared)
		}
		if issue != nil {
			issues = append(issues, *issue)
		}
	}
	return issues
}

func (e *Evaluator) checkContent(text string) *ValidationIssue {
	floor := e.thresholds.ContentFloor
	if utf8.RuneCountInString(strings.TrimSpace(text)) >= floor {
		return nil
	}
	return &ValidationIssue{
		Field:         contentLabel,
		DocumentValue: fmt.Sprintf("%d chars", utf8.RuneCountInString(text)),
		ShipmentValue: fmt.Sprintf(">= %d chars", floor),
		Severity:      SeverityFail,
		Message:       fmt.Sprintf("Document content insufficient or unreadable (< %d characters)", floor),
	}
}
