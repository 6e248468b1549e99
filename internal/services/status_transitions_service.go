package services

import "casasmart/internal/models"

// Допустимые переходы статусов.
// accepted -> draft делает только Revoke (удаляет проект).
var QuoteTransitions = map[string]map[string]bool{
	string(models.QuoteDraft):    {"sent": true, "accepted": true, "rejected": true},
	string(models.QuoteSent):     {"draft": true, "accepted": true, "rejected": true},
	string(models.QuoteRejected): {"draft": true, "accepted": true},
	string(models.QuoteAccepted): {"draft": true},
}

var BookingTransitions = map[string]map[string]bool{
	string(models.BookingPending):   {"contacted": true, "completed": true, "cancelled": true},
	string(models.BookingContacted): {"pending": true, "completed": true, "cancelled": true},
	string(models.BookingCancelled): {"pending": true}, // переоткрыть
	string(models.BookingCompleted): {},
}

func canTransition(current, to string, table map[string]map[string]bool) bool {
	if current == "" {
		// пустой статус в БД: разрешаем стартовый
		return true
	}
	nexts, ok := table[current]
	if !ok {
		return false
	}
	return nexts[to]
}
