package lexicon

import "github.com/qaztriage/backend/internal/models"

// Recommendation literals are maintained per language; they are fixed
// operator guidance strings, not runtime translations of each other.
func defaultRecommendations() map[models.Language]map[models.RequestType]string {
	return map[models.Language]map[models.RequestType]string{
		models.LangRU: {
			models.TypeComplaint:    "Связаться с клиентом, принести извинения и зафиксировать жалобу в реестре качества.",
			models.TypeDataChange:   "Проверить документы клиента и провести смену данных через главного специалиста.",
			models.TypeConsultation: "Проконсультировать клиента по продукту и предложить дополнительные материалы.",
			models.TypeClaim:        "Проверить транзакции клиента, инициировать расследование и возврат при подтверждении.",
			models.TypeAppFailure:   "Уточнить модель устройства и версию приложения, передать в техническую поддержку.",
			models.TypeFraud:        "Немедленно заблокировать карту и счета, передать в службу безопасности.",
			models.TypeSpam:         "Пометить обращение как спам и закрыть без ответа клиенту.",
		},
		models.LangKZ: {
			models.TypeComplaint:    "Клиентпен байланысып, кешірім сұрап, шағымды сапа тізіліміне тіркеу.",
			models.TypeDataChange:   "Клиент құжаттарын тексеріп, деректерді бас маман арқылы өзгерту.",
			models.TypeConsultation: "Клиентке өнім бойынша кеңес беріп, қосымша материалдар ұсыну.",
			models.TypeClaim:        "Клиент транзакцияларын тексеріп, тергеу бастау және расталса қайтару жасау.",
			models.TypeAppFailure:   "Құрылғы моделі мен қосымша нұсқасын нақтылап, техникалық қолдауға беру.",
			models.TypeFraud:        "Картаны және шоттарды дереу бұғаттап, қауіпсіздік қызметіне беру.",
			models.TypeSpam:         "Өтінішті спам деп белгілеп, клиентке жауапсыз жабу.",
		},
		models.LangENG: {
			models.TypeComplaint:    "Contact the customer, apologize and register the complaint in the quality log.",
			models.TypeDataChange:   "Verify the customer's documents and route the data change to a chief specialist.",
			models.TypeConsultation: "Advise the customer on the product and share follow-up materials.",
			models.TypeClaim:        "Review the customer's transactions, open an investigation and refund if confirmed.",
			models.TypeAppFailure:   "Collect device model and app version, escalate to technical support.",
			models.TypeFraud:        "Block the card and accounts immediately and escalate to the security team.",
			models.TypeSpam:         "Mark the request as spam and close it without a customer reply.",
		},
	}
}
