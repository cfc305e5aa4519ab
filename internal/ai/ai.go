// Package ai wraps an external generative classification endpoint with a
// guaranteed rule-based fallback. Nothing in this package ever returns an
// error to its caller: every failure degrades to a deterministic result
// tagged with its provenance.
package ai

import (
	"context"

	"github.com/qaztriage/backend/internal/attach"
	"github.com/qaztriage/backend/internal/classifier"
	"github.com/qaztriage/backend/internal/models"
)

// Request carries everything a classifier may use for one ticket.
type Request struct {
	TicketID string
	Text     string
	Hint     string
	Images   []attach.InlineImage
}

type Classifier interface {
	Classify(ctx context.Context, req Request) models.AIMetadata
}

// Provenance tags. Downstream consumers rely on these to tell model-derived
// results from rule-derived and degraded ones.
const (
	SourceModel          = "model"
	SourceModelHeuristic = "model_heuristic"

	SourceFallbackNoKey         = "fallback:no_api_key"
	SourceFallbackBudget        = "fallback:budget_exhausted"
	SourceFallbackRateLimited   = "fallback:rate_limited"
	SourceFallbackModelList     = "fallback:model_resolution"
	SourceFallbackModelNotFound = "fallback:model_not_found"
	SourceFallbackSchema        = "fallback:schema_rejected"
	SourceFallbackUnparsable    = "fallback:unparsable_output"
	SourceFallbackNetwork       = "fallback:network_error"
	SourceFallbackCancelled     = "fallback:cancelled"
	SourceFallbackInternal      = "fallback:internal_error"
)

// RuleOnly satisfies Classifier using the keyword tables alone. It is the
// wiring used when no API credential is configured at startup.
type RuleOnly struct {
	Rules *classifier.RuleClassifier
}

func (r RuleOnly) Classify(_ context.Context, req Request) models.AIMetadata {
	meta := r.Rules.Classify(req.Text, req.Hint)
	meta.TicketID = req.TicketID
	return meta
}
