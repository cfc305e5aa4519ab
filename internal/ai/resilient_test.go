package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaztriage/backend/internal/classifier"
	"github.com/qaztriage/backend/internal/lexicon"
	"github.com/qaztriage/backend/internal/models"
)

const validModelJSON = `{"requestType":"AppFailure","tone":"Negative","priority":9,` +
	`"language":"RU","summary":"Клиент не может войти","recommendation":"Передать в поддержку","imageAnalysis":""}`

func candidateResponse(text string) []byte {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	})
	return b
}

// modelServer fakes the provider: a model list endpoint plus generateContent,
// with per-call behavior supplied by the test.
type modelServer struct {
	listCalls     int64
	generateCalls int64
	generate      func(call int64, w http.ResponseWriter)
}

func (s *modelServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/models":
			atomic.AddInt64(&s.listCalls, 1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"models":[{"name":"models/gemini-1.5-flash"},{"name":"models/embedding-001"}]}`))
		case strings.HasSuffix(r.URL.Path, ":generateContent"):
			call := atomic.AddInt64(&s.generateCalls, 1)
			s.generate(call, w)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestResilient(baseURL string, maxRequests int) *Resilient {
	rules := classifier.New(lexicon.Default())
	return NewResilient(rules, Options{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		MaxRequests: maxRequests,
		Logger:      zerolog.Nop(),
	})
}

func appFailureRequest() Request {
	return Request{TicketID: "t-1", Text: "не работает приложение, не могу войти"}
}

func TestClassifyWithoutCredentialStaysLocal(t *testing.T) {
	srv := &modelServer{generate: func(_ int64, w http.ResponseWriter) {
		w.Write(candidateResponse(validModelJSON))
	}}
	ts := srv.start(t)

	rules := classifier.New(lexicon.Default())
	r := NewResilient(rules, Options{APIKey: "", BaseURL: ts.URL, Logger: zerolog.Nop()})

	meta := r.Classify(context.Background(), appFailureRequest())
	assert.Equal(t, SourceFallbackNoKey, meta.Source)
	assert.Equal(t, models.TypeAppFailure, meta.RequestType)
	assert.Equal(t, "t-1", meta.TicketID)
	assert.EqualValues(t, 0, atomic.LoadInt64(&srv.listCalls))
	assert.EqualValues(t, 0, atomic.LoadInt64(&srv.generateCalls))
}

func TestClassifyStrictModelResult(t *testing.T) {
	srv := &modelServer{generate: func(_ int64, w http.ResponseWriter) {
		w.Write(candidateResponse(validModelJSON))
	}}
	ts := srv.start(t)
	r := newTestResilient(ts.URL, 0)

	meta := r.Classify(context.Background(), appFailureRequest())
	require.Equal(t, SourceModel, meta.Source)
	assert.Equal(t, models.TypeAppFailure, meta.RequestType)
	assert.Equal(t, models.ToneNegative, meta.Tone)
	assert.Equal(t, 9, meta.Priority)
	assert.Equal(t, "Клиент не может войти", meta.Summary)
	assert.EqualValues(t, 1, atomic.LoadInt64(&srv.listCalls))
	assert.EqualValues(t, 1, atomic.LoadInt64(&srv.generateCalls))
}

func TestClassifyDegradesOnBadRequest(t *testing.T) {
	srv := &modelServer{generate: func(call int64, w http.ResponseWriter) {
		if call == 1 {
			http.Error(w, `{"error":{"message":"invalid argument"}}`, http.StatusBadRequest)
			return
		}
		w.Write(candidateResponse(validModelJSON))
	}}
	ts := srv.start(t)
	r := newTestResilient(ts.URL, 0)

	meta := r.Classify(context.Background(), appFailureRequest())
	assert.Equal(t, SourceModel, meta.Source)
	assert.EqualValues(t, 2, atomic.LoadInt64(&srv.generateCalls))
}

func TestClassifyAllVariantsRejected(t *testing.T) {
	srv := &modelServer{generate: func(_ int64, w http.ResponseWriter) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}}
	ts := srv.start(t)
	r := newTestResilient(ts.URL, 0)

	meta := r.Classify(context.Background(), appFailureRequest())
	assert.Equal(t, SourceFallbackSchema, meta.Source)
	assert.Equal(t, models.TypeAppFailure, meta.RequestType)
	// Both ladder rungs were tried: without images, then without JSON mode.
	assert.EqualValues(t, 2, atomic.LoadInt64(&srv.generateCalls))
}

func TestClassifyRateLimitedSetsBackoff(t *testing.T) {
	srv := &modelServer{generate: func(_ int64, w http.ResponseWriter) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}}
	ts := srv.start(t)
	r := newTestResilient(ts.URL, 0)

	meta := r.Classify(context.Background(), appFailureRequest())
	assert.Equal(t, SourceFallbackRateLimited, meta.Source)
	assert.EqualValues(t, 1, atomic.LoadInt64(&srv.generateCalls))

	// The next call waits out the backoff window; a short deadline turns it
	// into a cancelled fallback without touching the network again.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	meta = r.Classify(ctx, appFailureRequest())
	assert.Equal(t, SourceFallbackCancelled, meta.Source)
	assert.EqualValues(t, 1, atomic.LoadInt64(&srv.generateCalls))
}

func TestClassifyNotFoundInvalidatesModelCache(t *testing.T) {
	var healthy atomic.Bool
	srv := &modelServer{generate: func(_ int64, w http.ResponseWriter) {
		if !healthy.Load() {
			http.Error(w, "model not found", http.StatusNotFound)
			return
		}
		w.Write(candidateResponse(validModelJSON))
	}}
	ts := srv.start(t)
	r := newTestResilient(ts.URL, 0)

	meta := r.Classify(context.Background(), appFailureRequest())
	assert.Equal(t, SourceFallbackModelNotFound, meta.Source)
	assert.EqualValues(t, 1, atomic.LoadInt64(&srv.listCalls))

	healthy.Store(true)
	meta = r.Classify(context.Background(), appFailureRequest())
	assert.Equal(t, SourceModel, meta.Source)
	// Cache invalidation forces a second model-list resolution.
	assert.EqualValues(t, 2, atomic.LoadInt64(&srv.listCalls))
}

func TestClassifyBudgetExhausted(t *testing.T) {
	srv := &modelServer{generate: func(_ int64, w http.ResponseWriter) {
		w.Write(candidateResponse(validModelJSON))
	}}
	ts := srv.start(t)
	r := newTestResilient(ts.URL, 1)

	first := r.Classify(context.Background(), appFailureRequest())
	assert.Equal(t, SourceModel, first.Source)

	second := r.Classify(context.Background(), appFailureRequest())
	assert.Equal(t, SourceFallbackBudget, second.Source)
	assert.Equal(t, models.TypeAppFailure, second.RequestType)
	assert.EqualValues(t, 1, atomic.LoadInt64(&srv.generateCalls))
}

func TestClassifyHeuristicParseOfLooseOutput(t *testing.T) {
	srv := &modelServer{generate: func(_ int64, w http.ResponseWriter) {
		w.Write(candidateResponse("This is clearly fraud. priority: 10"))
	}}
	ts := srv.start(t)
	r := newTestResilient(ts.URL, 0)

	meta := r.Classify(context.Background(), appFailureRequest())
	assert.Equal(t, SourceModelHeuristic, meta.Source)
	assert.Equal(t, models.TypeFraud, meta.RequestType)
	assert.Equal(t, 10, meta.Priority)
	// Backfilled fields come from the rule result on the same ticket.
	assert.Equal(t, models.LangRU, meta.Language)
	assert.NotEmpty(t, meta.Summary)
}

func TestClassifyUnparsableOutputFallsBack(t *testing.T) {
	srv := &modelServer{generate: func(_ int64, w http.ResponseWriter) {
		w.Write(candidateResponse("???"))
	}}
	ts := srv.start(t)
	r := newTestResilient(ts.URL, 0)

	meta := r.Classify(context.Background(), appFailureRequest())
	assert.Equal(t, SourceFallbackUnparsable, meta.Source)
	assert.Equal(t, models.TypeAppFailure, meta.RequestType)
}

func TestClassifyServerErrorFallsBack(t *testing.T) {
	srv := &modelServer{generate: func(_ int64, w http.ResponseWriter) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}}
	ts := srv.start(t)
	r := newTestResilient(ts.URL, 0)

	meta := r.Classify(context.Background(), appFailureRequest())
	assert.Equal(t, "fallback:http_500", meta.Source)
	assert.EqualValues(t, 1, atomic.LoadInt64(&srv.generateCalls))
}

func TestRuleOnlyTagsTicket(t *testing.T) {
	r := RuleOnly{Rules: classifier.New(lexicon.Default())}
	meta := r.Classify(context.Background(), Request{TicketID: "t-9", Text: "как узнать тариф"})
	assert.Equal(t, "t-9", meta.TicketID)
	assert.Equal(t, models.TypeConsultation, meta.RequestType)
	assert.Equal(t, classifier.SourceRuleBased, meta.Source)
}
