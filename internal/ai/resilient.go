package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/qaztriage/backend/internal/classifier"
	"github.com/qaztriage/backend/internal/models"
	"github.com/qaztriage/backend/internal/observability"
)

const classifierPrompt = `You are a support ticket classifier for a Kazakhstani bank.
Classify the customer message that follows. Respond with a single JSON object:
{"requestType": one of ["Complaint","DataChange","Consultation","Claim","AppFailure","FraudulentActivity","Spam"],
"tone": one of ["Positive","Neutral","Negative"],
"priority": integer from 1 to 10,
"language": one of ["RU","KZ","ENG"],
"summary": one sentence in the message language,
"recommendation": one sentence of operator guidance in the message language,
"imageAnalysis": short note about attached images or ""}`

var defaultPreferredModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
	"gemini-1.5-pro",
	"gemini-pro",
}

const (
	defaultRetryAfter = 15 * time.Second
	maxRetryAfter     = 120 * time.Second
	temperature       = 0.1
)

type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxRequests int // per-run budget; non-positive means unbounded
	MinInterval time.Duration
	Logger      zerolog.Logger
}

// Resilient classifies through the external model endpoint and degrades to
// the rule classifier on every failure path. At most one outbound request
// is in flight per instance at any time; production wiring creates a single
// instance, which makes the gate process-wide.
type Resilient struct {
	rules     *classifier.RuleClassifier
	client    *Client
	log       zerolog.Logger
	preferred []string

	maxRequests int
	limiter     *rate.Limiter

	// gate serializes outbound calls; mu guards the bookkeeping below and
	// is never held across network I/O.
	gate sync.Mutex
	mu   sync.Mutex

	sent          int
	nextAllowedAt time.Time
	model         string
}

func NewResilient(rules *classifier.RuleClassifier, opts Options) *Resilient {
	r := &Resilient{
		rules:       rules,
		log:         opts.Logger,
		maxRequests: opts.MaxRequests,
	}
	if strings.TrimSpace(opts.APIKey) != "" {
		r.client = NewClient(opts.BaseURL, opts.APIKey)
	}
	if opts.MinInterval > 0 {
		r.limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	} else {
		r.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if m := strings.TrimSpace(opts.Model); m != "" {
		r.preferred = append([]string{m}, defaultPreferredModels...)
	} else {
		r.preferred = defaultPreferredModels
	}
	return r
}

// Classify never returns an error and never panics outward; any failure
// resolves to the rule classifier's result tagged with the reason.
func (r *Resilient) Classify(ctx context.Context, req Request) (meta models.AIMetadata) {
	if r.client == nil {
		return r.fallback(req, SourceFallbackNoKey)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Any("panic", rec).Str("ticket_id", req.TicketID).
				Msg("classification panicked, degrading to rules")
			meta = r.fallback(req, SourceFallbackInternal)
		}
	}()

	r.gate.Lock()
	defer r.gate.Unlock()

	model, err := r.resolveModel(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("model resolution failed")
		return r.fallback(req, SourceFallbackModelList)
	}

	r.mu.Lock()
	budgetOK := r.maxRequests <= 0 || r.sent < r.maxRequests
	next := r.nextAllowedAt
	r.mu.Unlock()
	if !budgetOK {
		return r.fallback(req, SourceFallbackBudget)
	}

	if err := r.waitUntil(ctx, next); err != nil {
		return r.fallback(req, SourceFallbackCancelled)
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return r.fallback(req, SourceFallbackCancelled)
	}

	// Only the first rung of the degrade ladder consumes budget.
	r.mu.Lock()
	r.sent++
	r.mu.Unlock()

	for i, v := range buildVariants(req) {
		text, err := r.client.GenerateContent(ctx, model, v.body)
		if err == nil {
			observability.ModelRequestsTotal.WithLabelValues("ok").Inc()
			return r.interpret(req, text)
		}

		var se *StatusError
		if !errors.As(err, &se) {
			observability.ModelRequestsTotal.WithLabelValues("network_error").Inc()
			r.log.Warn().Err(err).Str("ticket_id", req.TicketID).Msg("model request failed")
			return r.fallback(req, SourceFallbackNetwork)
		}
		observability.ModelRequestsTotal.WithLabelValues(fmt.Sprintf("http_%d", se.StatusCode)).Inc()

		switch se.StatusCode {
		case http.StatusBadRequest:
			r.log.Warn().Int("rung", i).Str("variant", v.name).Str("body", se.Body).
				Msg("model rejected request shape, degrading")
			continue
		case http.StatusTooManyRequests:
			r.applyBackoff(se.RetryAfter)
			return r.fallback(req, SourceFallbackRateLimited)
		case http.StatusNotFound:
			r.invalidateModel()
			return r.fallback(req, SourceFallbackModelNotFound)
		default:
			r.log.Warn().Int("status", se.StatusCode).Str("body", se.Body).Msg("model request rejected")
			return r.fallback(req, fmt.Sprintf("fallback:http_%d", se.StatusCode))
		}
	}
	return r.fallback(req, SourceFallbackSchema)
}

// interpret runs strict-then-loose parsing of the model text, backfilling
// the loose path from the rule result on the same ticket.
func (r *Resilient) interpret(req Request, text string) models.AIMetadata {
	if meta, ok := parseStrict(text); ok {
		meta.TicketID = req.TicketID
		meta.Source = SourceModel
		meta.CreatedAt = time.Now().UTC()
		observability.ClassificationsTotal.WithLabelValues(SourceModel).Inc()
		return meta
	}

	base := r.rules.Classify(req.Text, req.Hint)
	if meta, ok := parseLoose(text, base); ok {
		meta.TicketID = req.TicketID
		meta.Priority = models.ClampPriority(meta.Priority)
		meta.Source = SourceModelHeuristic
		meta.CreatedAt = time.Now().UTC()
		observability.ClassificationsTotal.WithLabelValues(SourceModelHeuristic).Inc()
		return meta
	}

	return r.fallback(req, SourceFallbackUnparsable)
}

func (r *Resilient) fallback(req Request, reason string) models.AIMetadata {
	meta := r.rules.Classify(req.Text, req.Hint)
	meta.TicketID = req.TicketID
	meta.Source = reason
	observability.ClassificationsTotal.WithLabelValues(reason).Inc()
	return meta
}

// resolveModel lazily resolves the target model once per process by
// intersecting the provider's model list with the preference order.
// A 404 on a later call invalidates the cache via invalidateModel.
func (r *Resilient) resolveModel(ctx context.Context) (string, error) {
	r.mu.Lock()
	cached := r.model
	r.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	names, err := r.client.ListModels(ctx)
	if err != nil {
		return "", err
	}
	available := make(map[string]struct{}, len(names))
	for _, n := range names {
		available[n] = struct{}{}
	}
	for _, p := range r.preferred {
		if _, ok := available[p]; ok {
			r.mu.Lock()
			r.model = p
			r.mu.Unlock()
			r.log.Info().Str("model", p).Msg("resolved classification model")
			return p, nil
		}
	}
	return "", fmt.Errorf("no preferred model available among %d models", len(names))
}

func (r *Resilient) invalidateModel() {
	r.mu.Lock()
	r.model = ""
	r.mu.Unlock()
}

func (r *Resilient) applyBackoff(hint time.Duration) {
	if hint <= 0 {
		hint = defaultRetryAfter
	}
	if hint > maxRetryAfter {
		hint = maxRetryAfter
	}
	r.mu.Lock()
	r.nextAllowedAt = time.Now().Add(hint)
	r.mu.Unlock()
	r.log.Warn().Dur("backoff", hint).Msg("rate limited, deferring next model call")
}

func (r *Resilient) waitUntil(ctx context.Context, next time.Time) error {
	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type requestVariant struct {
	name string
	body GenRequest
}

// buildVariants produces the degrade ladder: full request, then without
// images, then without JSON mode, then the minimal prompt+text request.
// Rungs that would duplicate the previous one (no images, no hint) are
// dropped.
func buildVariants(req Request) []requestVariant {
	temp := temperature
	jsonCfg := &GenConfig{Temperature: &temp, ResponseMIMEType: "application/json"}
	plainCfg := &GenConfig{Temperature: &temp}

	textParts := []GenPart{{Text: classifierPrompt}, {Text: req.Text}}
	withHint := textParts
	if strings.TrimSpace(req.Hint) != "" {
		withHint = append(append([]GenPart{}, textParts...), GenPart{Text: req.Hint})
	}

	var variants []requestVariant
	if len(req.Images) > 0 {
		full := append([]GenPart{}, withHint...)
		for _, img := range req.Images {
			full = append(full, InlinePart(img.MIMEType, img.Data))
		}
		variants = append(variants, requestVariant{"full", GenRequest{
			Contents:         []GenContent{{Parts: full}},
			GenerationConfig: jsonCfg,
		}})
	}
	variants = append(variants, requestVariant{"no_images", GenRequest{
		Contents:         []GenContent{{Parts: withHint}},
		GenerationConfig: jsonCfg,
	}})
	variants = append(variants, requestVariant{"no_json_mode", GenRequest{
		Contents:         []GenContent{{Parts: withHint}},
		GenerationConfig: plainCfg,
	}})
	if strings.TrimSpace(req.Hint) != "" {
		variants = append(variants, requestVariant{"minimal", GenRequest{
			Contents:         []GenContent{{Parts: textParts}},
			GenerationConfig: plainCfg,
		}})
	}
	return variants
}
