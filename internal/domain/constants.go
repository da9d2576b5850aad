package domain

import "time"

// Правила бронирования
const (
	// MinBookingDuration минимальная длительность аренды
	MinBookingDuration = 2 * time.Hour

	// DefaultMinLeadTime минимальный запас времени между "сейчас" и началом аренды
	DefaultMinLeadTime = 60 * time.Minute

	// VerificationTokenTTL время жизни ссылки подтверждения
	VerificationTokenTTL = 24 * time.Hour

	// CancellationCutoff за сколько до выдачи пользователь еще может отменить CONFIRMED бронирование
	CancellationCutoff = 24 * time.Hour

	// DefaultAvailabilityBuffer буфер на обслуживание вокруг активных бронирований при выдаче каталога
	DefaultAvailabilityBuffer = 24 * time.Hour
)

// Таймауты планировщика
const (
	DefaultPendingTimeout     = 60 * time.Minute
	DefaultDocumentGrace      = 15 * time.Minute
	DefaultVerifiedUnpaidTTL  = 15 * time.Minute
	DefaultDraftMaxAge        = 24 * time.Hour
	DefaultSchedulerInterval  = 60 * time.Second
	DefaultSweepBatchSize     = 500
	DefaultRefundRetryBackoff = 5 * time.Minute
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
