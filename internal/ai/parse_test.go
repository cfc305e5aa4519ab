package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaztriage/backend/internal/models"
)

func TestParseStrictFencedJSON(t *testing.T) {
	raw := "```json\n{\"requestType\":\"Complaint\",\"tone\":\"Negative\",\"priority\":7," +
		"\"language\":\"RU\",\"summary\":\"Клиент недоволен обслуживанием\"," +
		"\"recommendation\":\"Связаться с клиентом\",\"imageAnalysis\":\"\"}\n```"

	meta, ok := parseStrict(raw)
	require.True(t, ok)
	assert.Equal(t, models.TypeComplaint, meta.RequestType)
	assert.Equal(t, models.ToneNegative, meta.Tone)
	assert.Equal(t, 7, meta.Priority)
	assert.Equal(t, models.LangRU, meta.Language)
	assert.Equal(t, "Клиент недоволен обслуживанием", meta.Summary)
	assert.Equal(t, "Связаться с клиентом", meta.Recommendation)
}

func TestParseStrictSynonymsAndClamp(t *testing.T) {
	raw := `{"requestType":"Technical issue (login)","tone":"neg","priority":15,
"language":"Russian","summary":"s","recommendation":"r","imageAnalysis":""}`

	meta, ok := parseStrict(raw)
	require.True(t, ok)
	assert.Equal(t, models.TypeAppFailure, meta.RequestType)
	assert.Equal(t, models.ToneNegative, meta.Tone)
	assert.Equal(t, 10, meta.Priority)
	assert.Equal(t, models.LangRU, meta.Language)
}

func TestParseStrictRejectsUnknownEnum(t *testing.T) {
	raw := `{"requestType":"Greeting","tone":"Neutral","priority":3,"language":"RU"}`
	_, ok := parseStrict(raw)
	assert.False(t, ok)
}

func TestParseStrictRejectsProse(t *testing.T) {
	_, ok := parseStrict("Sorry, I cannot produce JSON for this request.")
	assert.False(t, ok)
}

func TestParseLooseScrapesFields(t *testing.T) {
	base := models.AIMetadata{
		RequestType:    models.TypeConsultation,
		Tone:           models.ToneNeutral,
		Priority:       4,
		Language:       models.LangRU,
		Summary:        "base summary",
		Recommendation: "base recommendation",
	}
	raw := "The ticket looks like fraud to me.\n\"priority\": 9\nrecommendation: escalate to the security team\nLanguage: EN"

	meta, ok := parseLoose(raw, base)
	require.True(t, ok)
	assert.Equal(t, models.TypeFraud, meta.RequestType)
	assert.Equal(t, 9, meta.Priority)
	assert.Equal(t, "escalate to the security team", meta.Recommendation)
	assert.Equal(t, models.LangENG, meta.Language)
	// Fields the text never mentioned stay backfilled from the base.
	assert.Equal(t, models.ToneNeutral, meta.Tone)
	assert.Equal(t, "base summary", meta.Summary)
}

func TestParseLooseStandaloneInteger(t *testing.T) {
	base := models.AIMetadata{RequestType: models.TypeConsultation, Priority: 4}
	meta, ok := parseLoose("I would rate this 8 out of 10.", base)
	require.True(t, ok)
	assert.Equal(t, 8, meta.Priority)
	assert.Equal(t, models.TypeConsultation, meta.RequestType)
}

func TestParseLooseNothingUseful(t *testing.T) {
	base := models.AIMetadata{RequestType: models.TypeConsultation, Priority: 4}
	_, ok := parseLoose("Sorry, no idea.", base)
	assert.False(t, ok)

	_, ok = parseLoose("   ", base)
	assert.False(t, ok)
}

func TestExtractJSONObject(t *testing.T) {
	raw := "Here you go: {\"a\":1} hope it helps"
	assert.Equal(t, `{"a":1}`, extractJSONObject(raw))
	assert.Equal(t, "no braces", extractJSONObject("no braces"))
}
