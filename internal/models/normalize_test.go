package models

import "testing"

func TestParseRequestType(t *testing.T) {
	cases := map[string]RequestType{
		"Complaint":                "Complaint",
		"жалоба":                   "Complaint",
		"FraudulentActivity":       "FraudulentActivity",
		"fraud":                    "FraudulentActivity",
		"Technical issue (login)":  "AppFailure",
		"смена данных":             "DataChange",
		"Консультация":             "Consultation",
		"chargeback на транзакцию": "Claim",
		"СПАМ":                     "Spam",
	}
	for in, want := range cases {
		got, ok := ParseRequestType(in)
		if !ok || got != want {
			t.Fatalf("ParseRequestType(%q): got %s ok=%v, want %s", in, got, ok, want)
		}
	}
	if _, ok := ParseRequestType("greeting"); ok {
		t.Fatalf("unexpected mapping for unrelated value")
	}
	if _, ok := ParseRequestType(""); ok {
		t.Fatalf("empty value must not map")
	}
}

func TestParseRequestTypeAmbiguousValueIsStable(t *testing.T) {
	// "complaint about app" contains both a Complaint and an AppFailure
	// needle; the specific one must win, on every call.
	for i := 0; i < 500; i++ {
		got, ok := ParseRequestType("complaint about app")
		if !ok || got != TypeComplaint {
			t.Fatalf("call %d: got %s ok=%v, want Complaint", i, got, ok)
		}
	}
	for i := 0; i < 500; i++ {
		got, ok := ParseRequestType("claim data")
		if !ok || got != TypeClaim {
			t.Fatalf("call %d: got %s ok=%v, want Claim", i, got, ok)
		}
	}
}

func TestParseTone(t *testing.T) {
	cases := map[string]Tone{
		"Positive":      TonePositive,
		"neg":           ToneNegative,
		"отрицательный": ToneNegative,
		"Нейтральный":   ToneNeutral,
	}
	for in, want := range cases {
		got, ok := ParseTone(in)
		if !ok || got != want {
			t.Fatalf("ParseTone(%q): got %s ok=%v, want %s", in, got, ok, want)
		}
	}
	if _, ok := ParseTone("angryish"); ok {
		t.Fatalf("unexpected tone mapping")
	}
}

func TestParseLanguage(t *testing.T) {
	cases := map[string]Language{
		"RU":      LangRU,
		"rus":     LangRU,
		"KK":      LangKZ,
		"Kazakh":  LangKZ,
		"en":      LangENG,
		"ENGLISH": LangENG,
	}
	for in, want := range cases {
		got, ok := ParseLanguage(in)
		if !ok || got != want {
			t.Fatalf("ParseLanguage(%q): got %s ok=%v, want %s", in, got, ok, want)
		}
	}
	if _, ok := ParseLanguage("DE"); ok {
		t.Fatalf("unexpected language mapping")
	}
}

func TestClampPriority(t *testing.T) {
	if ClampPriority(0) != 1 || ClampPriority(-3) != 1 {
		t.Fatalf("low values must clamp to 1")
	}
	if ClampPriority(11) != 10 || ClampPriority(100) != 10 {
		t.Fatalf("high values must clamp to 10")
	}
	if ClampPriority(7) != 7 {
		t.Fatalf("in-range value must pass through")
	}
}
