package domain

import "time"

// DocumentStatus статус проверки документов водителя во внешнем сервисе
type DocumentStatus string

const (
	DocumentsPending  DocumentStatus = "PENDING"
	DocumentsApproved DocumentStatus = "APPROVED"
	DocumentsRejected DocumentStatus = "REJECTED"
)

// BookingVerification токен подтверждения бронирования (один на бронирование)
type BookingVerification struct {
	ID                int64
	BookingID         int64
	Token             string
	ExpiresAt         time.Time
	IsVerified        bool
	VerifiedAt        *time.Time
	DocumentAttemptAt *time.Time // начало последней попытки загрузки документов
	CreatedAt         time.Time
}

// IsExpired проверяет, истек ли токен на момент now
func (v *BookingVerification) IsExpired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
