package ai

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/qaztriage/backend/internal/models"
)

type modelOutput struct {
	RequestType    string      `json:"requestType"`
	Tone           string      `json:"tone"`
	Priority       json.Number `json:"priority"`
	Language       string      `json:"language"`
	Summary        string      `json:"summary"`
	Recommendation string      `json:"recommendation"`
	ImageAnalysis  string      `json:"imageAnalysis"`
}

// parseStrict validates the model's text against the expected schema.
// Enum fields are mapped with synonym tolerance; the result is rejected
// when any of requestType/tone/language cannot be mapped.
func parseStrict(raw string) (models.AIMetadata, bool) {
	payload := extractJSONObject(stripFences(raw))

	var out modelOutput
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return models.AIMetadata{}, false
	}

	reqType, okType := models.ParseRequestType(out.RequestType)
	tone, okTone := models.ParseTone(out.Tone)
	lang, okLang := models.ParseLanguage(out.Language)
	if !okType || !okTone || !okLang {
		return models.AIMetadata{}, false
	}

	priority, err := out.Priority.Int64()
	if err != nil {
		return models.AIMetadata{}, false
	}

	return models.AIMetadata{
		RequestType:    reqType,
		Tone:           tone,
		Priority:       models.ClampPriority(int(priority)),
		Language:       lang,
		Summary:        strings.TrimSpace(out.Summary),
		Recommendation: strings.TrimSpace(out.Recommendation),
		ImageAnalysis:  strings.TrimSpace(out.ImageAnalysis),
	}, true
}

var (
	priorityFieldRe  = regexp.MustCompile(`(?i)priority"?\s*[:=]\s*"?(10|[1-9])\b`)
	standaloneIntRe  = regexp.MustCompile(`\b(10|[1-9])\b`)
	recommendFieldRe = regexp.MustCompile(`(?i)(?:recommendation|action)"?\s*[:=]\s*"?([^"\r\n}]+)`)
	languageTokenRe  = regexp.MustCompile(`\b(RU|KZ|KK|EN|ENG)\b`)
)

// looseTypeNeedles are checked in order; the more specific intents come
// before the broad ones.
var looseTypeNeedles = []struct {
	needle string
	t      models.RequestType
}{
	{"fraudulent", models.TypeFraud},
	{"fraud", models.TypeFraud},
	{"мошен", models.TypeFraud},
	{"spam", models.TypeSpam},
	{"спам", models.TypeSpam},
	{"appfailure", models.TypeAppFailure},
	{"app failure", models.TypeAppFailure},
	{"technical issue", models.TypeAppFailure},
	{"datachange", models.TypeDataChange},
	{"data change", models.TypeDataChange},
	{"смена данных", models.TypeDataChange},
	{"chargeback", models.TypeClaim},
	{"refund", models.TypeClaim},
	{"claim", models.TypeClaim},
	{"претензи", models.TypeClaim},
	{"complaint", models.TypeComplaint},
	{"жалоб", models.TypeComplaint},
	{"consultation", models.TypeConsultation},
	{"консультац", models.TypeConsultation},
}

var looseToneNeedles = []struct {
	needle string
	tone   models.Tone
}{
	{"negative", models.ToneNegative},
	{"негатив", models.ToneNegative},
	{"positive", models.TonePositive},
	{"позитив", models.TonePositive},
	{"neutral", models.ToneNeutral},
	{"нейтрал", models.ToneNeutral},
}

// parseLoose scrapes whatever fields it can out of free-form model text and
// backfills the rest from the rule-based result. The "first standalone 1-10
// integer" priority rule is a best-effort heuristic and can pick up
// unrelated numbers; that is accepted behavior.
func parseLoose(raw string, base models.AIMetadata) (models.AIMetadata, bool) {
	cleaned := stripFences(raw)
	if strings.TrimSpace(cleaned) == "" {
		return base, false
	}
	lower := strings.ToLower(cleaned)
	meta := base
	found := 0

	if m := priorityFieldRe.FindStringSubmatch(cleaned); m != nil {
		if p, err := strconv.Atoi(m[1]); err == nil {
			meta.Priority = models.ClampPriority(p)
			found++
		}
	} else if m := standaloneIntRe.FindStringSubmatch(cleaned); m != nil {
		if p, err := strconv.Atoi(m[1]); err == nil {
			meta.Priority = models.ClampPriority(p)
			found++
		}
	}

	if m := recommendFieldRe.FindStringSubmatch(cleaned); m != nil {
		if rec := strings.TrimSpace(strings.Trim(m[1], `"' ,`)); rec != "" {
			meta.Recommendation = rec
			found++
		}
	}

	for _, n := range looseTypeNeedles {
		if strings.Contains(lower, n.needle) {
			meta.RequestType = n.t
			found++
			break
		}
	}

	for _, n := range looseToneNeedles {
		if strings.Contains(lower, n.needle) {
			meta.Tone = n.tone
			found++
			break
		}
	}

	if m := languageTokenRe.FindStringSubmatch(cleaned); m != nil {
		if lang, ok := models.ParseLanguage(m[1]); ok {
			meta.Language = lang
			found++
		}
	}

	return meta, found > 0
}

func stripFences(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	return strings.ReplaceAll(s, "```", "")
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
