package models

import "strings"

// ParseRequestType maps a free-form model or CSV value onto the canonical
// request type set. Exact synonyms are tried first, then substring matching,
// so values like "Technical issue (login)" still land on AppFailure.
func ParseRequestType(value string) (RequestType, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", false
	}
	switch v {
	case "complaint", "жалоба", "шағым":
		return TypeComplaint, true
	case "datachange", "data change", "change of data", "смена данных", "изменение данных":
		return TypeDataChange, true
	case "consultation", "консультация", "кеңес":
		return TypeConsultation, true
	case "claim", "претензия", "возврат средств":
		return TypeClaim, true
	case "appfailure", "app failure", "technical issue", "неработоспособность приложения":
		return TypeAppFailure, true
	case "fraudulentactivity", "fraudulent activity", "fraud", "мошеннические действия", "мошенничество":
		return TypeFraud, true
	case "spam", "спам":
		return TypeSpam, true
	}
	for _, n := range requestTypeSubstrings {
		if strings.Contains(v, n.substr) {
			return n.t, true
		}
	}
	return "", false
}

// requestTypeSubstrings is matched in order, specific needles before broad
// ones, so a value containing several of them maps the same way on every
// call.
var requestTypeSubstrings = []struct {
	substr string
	t      RequestType
}{
	{"fraud", TypeFraud},
	{"мошен", TypeFraud},
	{"алаяқ", TypeFraud},
	{"spam", TypeSpam},
	{"спам", TypeSpam},
	{"technical", TypeAppFailure},
	{"приложени", TypeAppFailure},
	{"данны", TypeDataChange},
	{"chargeback", TypeClaim},
	{"претензи", TypeClaim},
	{"возврат", TypeClaim},
	{"claim", TypeClaim},
	{"complain", TypeComplaint},
	{"жалоб", TypeComplaint},
	{"consult", TypeConsultation},
	{"консульт", TypeConsultation},
	{"data", TypeDataChange},
	{"app", TypeAppFailure},
}

func ParseTone(value string) (Tone, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return "", false
	case strings.Contains(v, "pos") || strings.Contains(v, "позитив") || strings.Contains(v, "положител"):
		return TonePositive, true
	case strings.Contains(v, "neg") || strings.Contains(v, "негатив") || strings.Contains(v, "отрицател"):
		return ToneNegative, true
	case strings.Contains(v, "neu") || strings.Contains(v, "нейтрал"):
		return ToneNeutral, true
	}
	return "", false
}

func ParseLanguage(value string) (Language, bool) {
	v := strings.ToUpper(strings.TrimSpace(value))
	switch v {
	case "RU", "RUS", "RUSSIAN", "РУССКИЙ":
		return LangRU, true
	case "KZ", "KK", "KAZ", "KAZAKH", "ҚАЗАҚША", "КАЗАХСКИЙ":
		return LangKZ, true
	case "EN", "ENG", "ENGLISH":
		return LangENG, true
	}
	return "", false
}
