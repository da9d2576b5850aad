package domain

import "strings"

// transitions допустимые переходы между статусами бронирования
var transitions = map[BookingStatus][]BookingStatus{
	StatusDraft:     {StatusPending, StatusVerified, StatusCancelled},
	StatusPending:   {StatusVerified, StatusCancelled, StatusRejected},
	StatusVerified:  {StatusConfirmed, StatusOngoing, StatusCancelled, StatusRejected},
	StatusConfirmed: {StatusOngoing, StatusCancelled},
	StatusOngoing:   {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusRejected:  {},
	StatusExpired:   {}, // историческое значение, планировщик переводит просроченные бронирования в CANCELLED
}

// CanTransitionTo проверяет, допустим ли переход в статус next
// DRAFT -> VERIFIED допустим только для walk-in бронирований, это проверяет вызывающий код
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid проверяет, что статус известен
func (s BookingStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// ParseBookingStatus парсит статус из строки без учета регистра
func ParseBookingStatus(raw string) (BookingStatus, error) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return "", NewError(ErrBadUserInput, "unknown booking status: "+raw)
	}
	return status, nil
}

// StatusesFrom возвращает все статусы, из которых допустим переход в next
func StatusesFrom(next BookingStatus) []BookingStatus {
	var from []BookingStatus
	for _, s := range orderedStatuses {
		if s.CanTransitionTo(next) {
			from = append(from, s)
		}
	}
	return from
}

var orderedStatuses = []BookingStatus{
	StatusDraft,
	StatusPending,
	StatusVerified,
	StatusConfirmed,
	StatusOngoing,
	StatusCompleted,
	StatusCancelled,
	StatusRejected,
	StatusExpired,
}
