package domain

import "time"

// PendingDeadline момент, когда PENDING бронирование считается просроченным
// Базовый срок - createdAt+timeout. Если попытка загрузки документов началась
// в последние grace минут этого срока, срок продлевается на grace.
func PendingDeadline(createdAt time.Time, documentAttemptAt *time.Time, timeout, grace time.Duration) time.Time {
	deadline := createdAt.Add(timeout)
	if documentAttemptAt == nil {
		return deadline
	}
	if !documentAttemptAt.Before(deadline.Add(-grace)) && !documentAttemptAt.After(deadline) {
		return deadline.Add(grace)
	}
	return deadline
}

// IsPendingExpired проверяет, истек ли срок PENDING бронирования на момент now
func IsPendingExpired(createdAt time.Time, documentAttemptAt *time.Time, now time.Time, timeout, grace time.Duration) bool {
	return !now.Before(PendingDeadline(createdAt, documentAttemptAt, timeout, grace))
}
