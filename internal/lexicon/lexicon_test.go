package lexicon

import (
	"testing"

	"github.com/qaztriage/backend/internal/models"
)

func TestDefaultCoversAllLanguagesAndTypes(t *testing.T) {
	lex := Default()

	for _, lang := range models.Languages {
		if len(lex.Markers[lang]) == 0 {
			t.Fatalf("no markers for %s", lang)
		}
		if len(lex.PositiveTone[lang]) == 0 || len(lex.NegativeTone[lang]) == 0 {
			t.Fatalf("missing tone lists for %s", lang)
		}
		if lex.SummaryPrefix[lang] == "" || lex.EmptySummary[lang] == "" {
			t.Fatalf("missing summary strings for %s", lang)
		}
		for _, rt := range models.RequestTypes {
			if lex.Recommendations[lang][rt] == "" {
				t.Fatalf("missing recommendation for %s/%s", lang, rt)
			}
			if len(lex.RequestKeywords[lang][rt]) == 0 {
				t.Fatalf("missing keywords for %s/%s", lang, rt)
			}
		}
	}
}

func TestBasePriorityTable(t *testing.T) {
	lex := Default()
	want := map[models.RequestType]int{
		models.TypeFraud:        10,
		models.TypeAppFailure:   8,
		models.TypeClaim:        7,
		models.TypeComplaint:    6,
		models.TypeDataChange:   5,
		models.TypeConsultation: 4,
		models.TypeSpam:         1,
	}
	for rt, p := range want {
		if got := lex.BasePriorityOrDefault(rt); got != p {
			t.Fatalf("base priority for %s: got %d, want %d", rt, got, p)
		}
	}
	if got := lex.BasePriorityOrDefault(models.RequestType("unknown")); got != 4 {
		t.Fatalf("unknown type priority: got %d, want 4", got)
	}
}
