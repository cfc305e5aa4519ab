// Package classifier derives ticket metadata from keyword evidence alone.
// It is deterministic, never fails, and owns all of the language, request
// type, tone and priority decisions that the AI layer falls back to.
package classifier

import (
	"strings"
	"time"
	"unicode"

	"github.com/qaztriage/backend/internal/lexicon"
	"github.com/qaztriage/backend/internal/models"
)

// SourceRuleBased tags metadata produced purely from the keyword tables.
const SourceRuleBased = "rule_based"

const (
	hintSeparator = "\n---\n"
	summaryLimit  = 180
)

type RuleClassifier struct {
	lex *lexicon.Lexicon
}

func New(lex *lexicon.Lexicon) *RuleClassifier {
	return &RuleClassifier{lex: lex}
}

// Classify produces a complete metadata record for the ticket text.
// Hint text (attachment-derived) participates in detection but not in the
// summary, which is always taken from the customer's own words.
func (c *RuleClassifier) Classify(text, hint string) models.AIMetadata {
	combined := text
	if strings.TrimSpace(hint) != "" {
		combined = text + hintSeparator + hint
	}

	rawLower := strings.ToLower(combined)
	norm := Normalize(combined)

	lang := c.detectLanguage(norm)
	reqType := c.detectRequestType(rawLower, norm, lang)
	tone := c.detectTone(norm, lang)

	priority := c.lex.BasePriorityOrDefault(reqType)
	switch tone {
	case models.ToneNegative:
		priority++
	case models.TonePositive:
		priority--
	}

	return models.AIMetadata{
		RequestType:    reqType,
		Tone:           tone,
		Priority:       models.ClampPriority(priority),
		Language:       lang,
		Summary:        c.summarize(text, lang),
		Recommendation: c.lex.Recommendations[lang][reqType],
		Source:         SourceRuleBased,
		CreatedAt:      time.Now().UTC(),
	}
}

// Normalize lower-cases the text and replaces everything except letters,
// digits and whitespace with a single space, so punctuation and URLs become
// token separators instead of disappearing.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func (c *RuleClassifier) detectLanguage(norm string) models.Language {
	scores := map[models.Language]int{}

	asciiLetters := 0
	for _, r := range norm {
		if r >= 'a' && r <= 'z' {
			asciiLetters++
			continue
		}
		for lang, chars := range c.lex.UniqueChars {
			if strings.ContainsRune(chars, r) {
				scores[lang] += 3
			}
		}
	}
	scores[c.lex.LatinDefault] += asciiLetters / 8

	tokens := strings.Fields(norm)
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = struct{}{}
	}

	for lang, words := range c.lex.TranslitTokens {
		for _, w := range words {
			if _, ok := tokenSet[w]; ok {
				scores[lang] += 2
			}
		}
	}

	for lang, markers := range c.lex.Markers {
		for _, marker := range markers {
			cnt := strings.Count(norm, marker)
			if cnt == 0 {
				continue
			}
			scores[lang] += cnt
			if _, ok := tokenSet[marker]; ok {
				scores[lang] += 2
			}
		}
	}

	// Enumeration order breaks ties, so an all-zero result stays RU.
	best := models.Languages[0]
	for _, lang := range models.Languages[1:] {
		if scores[lang] > scores[best] {
			best = lang
		}
	}
	return best
}

// detectRequestType runs the hard-override cascade first, then keyword
// scoring for the detected language, then a combined all-language rescue,
// and finally the complaint-sentiment secondary override.
func (c *RuleClassifier) detectRequestType(rawLower, norm string, lang models.Language) models.RequestType {
	if t, ok := c.hardOverride(rawLower, norm); ok {
		return t
	}

	if t, score := c.scoreKeywords(norm, []models.Language{lang}); score > 0 {
		return t
	}

	t, score := c.scoreKeywords(norm, models.Languages)
	if score > 0 && t != models.TypeConsultation {
		return t
	}
	if anyPhrase(norm, c.lex.ComplaintSentiment) {
		return models.TypeComplaint
	}
	return models.TypeConsultation
}

// hardOverride checks strong signal phrases in fixed priority order,
// independent of the detected language. Some phrases (e.g. "проблема",
// "issue") are deliberately broad; precedence order is the contract here,
// not precision.
func (c *RuleClassifier) hardOverride(rawLower, norm string) (models.RequestType, bool) {
	hasLink := anyPhrase(rawLower, c.lex.LinkSignals)
	if (hasLink && anyPhrase(norm, c.lex.PromoPhrases)) || anyPhrase(norm, c.lex.SpamPhrases) {
		return models.TypeSpam, true
	}
	if anyPhrase(norm, c.lex.FraudPhrases) {
		return models.TypeFraud, true
	}
	if anyPhrase(norm, c.lex.AppFailurePhrases) {
		return models.TypeAppFailure, true
	}
	if anyPhrase(norm, c.lex.ClaimPhrases) {
		return models.TypeClaim, true
	}
	if anyPhrase(norm, c.lex.DataChangePhrases) {
		return models.TypeDataChange, true
	}
	return "", false
}

func (c *RuleClassifier) scoreKeywords(norm string, langs []models.Language) (models.RequestType, int) {
	best := models.TypeConsultation
	bestScore := 0
	for _, t := range models.RequestTypes {
		score := 0
		for _, lang := range langs {
			for _, kw := range c.lex.RequestKeywords[lang][t] {
				score += strings.Count(norm, kw)
			}
		}
		if score > bestScore {
			best = t
			bestScore = score
		}
	}
	return best, bestScore
}

func (c *RuleClassifier) detectTone(norm string, lang models.Language) models.Tone {
	pos := countPhrases(norm, c.lex.PositiveTone[lang])
	neg := countPhrases(norm, c.lex.NegativeTone[lang])
	switch {
	case neg > pos:
		return models.ToneNegative
	case pos > neg:
		return models.TonePositive
	default:
		return models.ToneNeutral
	}
}

// summarize takes the first sentence of the original text (or the whole
// trimmed text, or a per-language placeholder) and caps it at 180 runes.
func (c *RuleClassifier) summarize(text string, lang models.Language) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return c.lex.SummaryPrefix[lang] + c.lex.EmptySummary[lang]
	}

	first := trimmed
	if idx := strings.IndexAny(trimmed, ".!?"); idx > 0 {
		first = strings.TrimSpace(trimmed[:idx])
	}
	if first == "" {
		first = trimmed
	}

	runes := []rune(first)
	if len(runes) > summaryLimit {
		first = string(runes[:summaryLimit]) + "…"
	}
	return c.lex.SummaryPrefix[lang] + first
}

func anyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func countPhrases(text string, phrases []string) int {
	total := 0
	for _, p := range phrases {
		total += strings.Count(text, p)
	}
	return total
}
