package consistency

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"doccheck/internal/embedding"
	"doccheck/pkg/requestcontext"
)

// compareDescription grades product descriptions by embedding similarity.
// Without an encoder, or when encoding fails, it falls back to containment for
// this field only.
func (e *Evaluator) compareDescription(ctx context.Context, r Rule, doc string, found bool, shipment string) *ValidationIssue {
	if !found {
		return missingIssue(r, shipment)
	}
	if e.encoder == nil {
		e.metrics.IncrementDescriptionCheck("containment")
		return compareField(r, doc, true, shipment)
	}

	similarity, err := e.similarity(ctx, shipment, doc)
	if err != nil {
		e.logger.WarnContext(ctx, "description similarity unavailable, using containment",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		e.metrics.IncrementDescriptionCheck("fallback")
		return compareField(r, doc, true, shipment)
	}
	e.metrics.IncrementDescriptionCheck("semantic")

	t := e.thresholds
	switch {
	case similarity < t.SimilarityFail:
		return &ValidationIssue{
			Field:         r.Label,
			DocumentValue: doc,
			ShipmentValue: shipment,
			Severity:      SeverityFail,
			Message:       fmt.Sprintf("Product description has low semantic similarity (%.2f < %.2f)", similarity, t.SimilarityFail),
		}
	case similarity < t.SimilarityPass:
		return &ValidationIssue{
			Field:         r.Label,
			DocumentValue: doc,
			ShipmentValue: shipment,
			Severity:      SeverityWarning,
			Message:       fmt.Sprintf("Product description has moderate semantic similarity (%.2f)", similarity),
		}
	}
	return nil
}

// similarity encodes both texts concurrently and returns their cosine
// similarity.
func (e *Evaluator) similarity(ctx context.Context, a, b string) (float64, error) {
	var va, vb []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := e.encoder.Encode(gctx, a)
		va = v
		return err
	})
	g.Go(func() error {
		v, err := e.encoder.Encode(gctx, b)
		vb = v
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return embedding.CosineSimilarity(va, vb)
}
