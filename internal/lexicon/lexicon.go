// Package lexicon holds the keyword evidence tables used by the rule
// classifier. A Lexicon is built once at startup and treated as read-only.
package lexicon

import "github.com/qaztriage/backend/internal/models"

type Lexicon struct {
	// UniqueChars are diacritic letters that occur in exactly one of the
	// supported alphabets; each occurrence scores 3 language points.
	UniqueChars map[models.Language]string

	// LatinDefault receives floor(asciiLetters/8) points.
	LatinDefault models.Language

	// TranslitTokens are Latin-spelled signal words for a Cyrillic language;
	// a whole-token match scores 2 points.
	TranslitTokens map[models.Language][]string

	// Markers are common phrases of a language; each raw occurrence scores
	// 1 point, plus 2 more when the phrase matches a whole token.
	Markers map[models.Language][]string

	// RequestKeywords score request types against text of the detected
	// language.
	RequestKeywords map[models.Language]map[models.RequestType][]string

	PositiveTone map[models.Language][]string
	NegativeTone map[models.Language][]string

	// Hard-override phrase lists, checked before any keyword scoring.
	LinkSignals        []string
	PromoPhrases       []string
	SpamPhrases        []string
	FraudPhrases       []string
	AppFailurePhrases  []string
	ClaimPhrases       []string
	DataChangePhrases  []string
	ComplaintSentiment []string

	BasePriority map[models.RequestType]int

	Recommendations map[models.Language]map[models.RequestType]string
	SummaryPrefix   map[models.Language]string
	EmptySummary    map[models.Language]string
}

// Default builds the production tables. Callers must not mutate the result.
func Default() *Lexicon {
	return &Lexicon{
		UniqueChars: map[models.Language]string{
			// Kazakh-only Cyrillic letters.
			models.LangKZ: "әғқңөұүһі",
			// Letters common in Russian text and rare in Kazakh usage.
			models.LangRU: "ъыэёщ",
		},
		LatinDefault: models.LangENG,

		TranslitTokens: map[models.Language][]string{
			models.LangRU: {"privet", "zdravstvuyte", "pozhaluysta", "spasibo", "pomogite", "zhaloba"},
			models.LangKZ: {"salem", "salemetsiz", "rakhmet", "otinish", "komektesiniz", "qosymsha"},
		},

		Markers: map[models.Language][]string{
			models.LangRU: {
				"здравствуйте", "пожалуйста", "спасибо", "помогите",
				"не работает", "не могу", "почему", "деньги", "карта", "приложение",
			},
			models.LangKZ: {
				"сәлеметсіз", "рахмет", "өтінемін", "көмектесіңіз",
				"жұмыс істемейді", "неге", "ақша", "карта", "қосымша",
			},
			models.LangENG: {
				"hello", "please", "thank you", "help",
				"does not work", "cannot", "why", "money", "card", "the app",
			},
		},

		RequestKeywords: map[models.Language]map[models.RequestType][]string{
			models.LangRU: {
				models.TypeComplaint: {
					"жалоба", "недоволен", "недовольна", "возмущен", "ужасно",
					"плохо обслужили", "хамство", "грубо", "долго жду", "очередь",
				},
				models.TypeDataChange: {
					"сменить", "изменить данные", "поменять номер", "новый паспорт",
					"смена фамилии", "обновить данные", "изменить телефон",
				},
				models.TypeConsultation: {
					"как", "подскажите", "вопрос", "интересует", "условия",
					"хочу узнать", "расскажите", "можно ли", "тариф",
				},
				models.TypeClaim: {
					"возврат", "верните", "не пришли деньги", "списали", "чарджбек",
					"двойное списание", "не зачислились", "претензия",
				},
				models.TypeAppFailure: {
					"не работает", "ошибка", "не могу войти", "вылетает", "зависает",
					"не открывается", "не приходит смс", "не приходит код", "сбой",
				},
				models.TypeFraud: {
					"мошенники", "украли", "взломали", "без моего ведома",
					"подозрительная операция", "не я совершал", "кража",
				},
				models.TypeSpam: {
					"реклама", "акция", "скидка", "промокод", "выиграли приз",
				},
			},
			models.LangKZ: {
				models.TypeComplaint: {
					"шағым", "наразымын", "нашар қызмет", "дөрекі", "ұзақ күттім",
				},
				models.TypeDataChange: {
					"деректерді өзгерту", "нөмірді ауыстыру", "жаңа паспорт",
					"тегін өзгерту", "телефонды өзгерту",
				},
				models.TypeConsultation: {
					"қалай", "айтыңызшы", "сұрақ", "шарттары", "білгім келеді", "тариф",
				},
				models.TypeClaim: {
					"қайтарыңыз", "ақша келмеді", "шегерілді", "екі рет шегерілді", "талап",
				},
				models.TypeAppFailure: {
					"жұмыс істемейді", "қате", "кіре алмаймын", "ашылмайды",
					"смс келмейді", "код келмейді",
				},
				models.TypeFraud: {
					"алаяқтар", "ұрлады", "бұзып кірді", "менің келісімімсіз",
					"күдікті операция",
				},
				models.TypeSpam: {
					"жарнама", "акция", "жеңілдік", "промокод", "ұтыс",
				},
			},
			models.LangENG: {
				models.TypeComplaint: {
					"complaint", "unhappy", "dissatisfied", "terrible service",
					"rude", "waited too long", "issue with staff",
				},
				models.TypeDataChange: {
					"change my", "update my", "new passport", "new phone number",
					"change personal data", "update details",
				},
				models.TypeConsultation: {
					"how do i", "how can i", "question", "interested in",
					"conditions", "tariff", "want to know", "tell me",
				},
				models.TypeClaim: {
					"refund", "money back", "not received", "charged twice",
					"chargeback", "deducted", "claim",
				},
				models.TypeAppFailure: {
					"does not work", "doesn't work", "error", "cannot log in",
					"can't log in", "crashes", "freezes", "no sms code", "otp",
				},
				models.TypeFraud: {
					"fraud", "stolen", "hacked", "unauthorized", "without my consent",
					"suspicious transaction",
				},
				models.TypeSpam: {
					"advertisement", "promo", "discount", "promo code", "you won",
				},
			},
		},

		PositiveTone: map[models.Language][]string{
			models.LangRU:  {"спасибо", "благодарю", "отлично", "супер", "довольна", "доволен", "хорошо"},
			models.LangKZ:  {"рахмет", "алғыс", "тамаша", "керемет", "жақсы"},
			models.LangENG: {"thank", "great", "awesome", "excellent", "happy", "good"},
		},
		NegativeTone: map[models.Language][]string{
			models.LangRU:  {"ужасно", "плохо", "возмущен", "недоволен", "обман", "кошмар", "хамство", "безобразие"},
			models.LangKZ:  {"нашар", "наразымын", "алдау", "дөрекі", "жаман"},
			models.LangENG: {"terrible", "awful", "angry", "disappointed", "scam", "worst", "rude"},
		},

		LinkSignals: []string{"http://", "https://", "www.", "bit.ly", "t.me/"},
		PromoPhrases: []string{
			"акция", "скидка", "скидки", "промокод", "выиграли", "приз",
			"жеңілдік", "ұтыс", "promo", "discount", "prize", "you won", "заработок",
		},
		SpamPhrases: []string{
			"рассылка не реклама", "рекламное предложение", "зарабатывай из дома",
			"пассивный доход", "казино", "ставки на спорт",
			"жарнамалық ұсыныс", "advertising offer", "earn from home", "casino",
		},
		FraudPhrases: []string{
			"мошенник", "мошенники", "мошеннические", "украли", "кража", "взломали",
			"без моего ведома", "без моего согласия", "не я совершал",
			"алаяқ", "ұрлады", "бұзып кірді", "менің келісімімсіз",
			"fraud", "stolen", "theft", "hacked", "unauthorized access",
			"unauthorized transaction", "without my consent",
		},
		AppFailurePhrases: []string{
			"не могу войти", "не работает приложение", "приложение не работает",
			"вылетает", "не приходит смс", "не приходит код", "не приходит otp",
			"кіре алмаймын", "қосымша жұмыс істемейді", "смс келмейді", "код келмейді",
			"cannot log in", "can't log in", "app crashes", "app does not work",
			"otp not received", "no sms code",
		},
		ClaimPhrases: []string{
			"возврат средств", "верните деньги", "не пришли деньги", "деньги не поступили",
			"двойное списание", "списали дважды", "чарджбек",
			"ақшаны қайтарыңыз", "ақша келмеді", "екі рет шегерілді",
			"refund", "money not received", "charged twice", "chargeback",
		},
		DataChangePhrases: []string{
			"сменить номер", "изменить данные", "смена данных", "поменять паспортные данные",
			"смена фамилии", "обновить личные данные",
			"деректерді өзгерту", "нөмірді ауыстыру", "тегін өзгерту",
			"change personal data", "update my details", "change my phone number",
		},
		ComplaintSentiment: []string{
			"жалоба", "жаловаться", "недоволен", "недовольна", "возмущен", "проблема",
			"шағым", "наразымын",
			"complaint", "complain", "dissatisfied", "issue",
		},

		BasePriority: map[models.RequestType]int{
			models.TypeFraud:        10,
			models.TypeAppFailure:   8,
			models.TypeClaim:        7,
			models.TypeComplaint:    6,
			models.TypeDataChange:   5,
			models.TypeConsultation: 4,
			models.TypeSpam:         1,
		},

		Recommendations: defaultRecommendations(),
		SummaryPrefix: map[models.Language]string{
			models.LangRU:  "Обращение клиента: ",
			models.LangKZ:  "Клиент өтініші: ",
			models.LangENG: "Customer request: ",
		},
		EmptySummary: map[models.Language]string{
			models.LangRU:  "Пустое обращение без текста",
			models.LangKZ:  "Мәтінсіз бос өтініш",
			models.LangENG: "Empty request without text",
		},
	}
}

// BasePriorityOrDefault returns the table value or 4 for an unknown type.
func (l *Lexicon) BasePriorityOrDefault(t models.RequestType) int {
	if p, ok := l.BasePriority[t]; ok {
		return p
	}
	return 4
}
