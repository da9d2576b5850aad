package booking

import (
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

// OverlapFilter параметры поиска пересекающихся бронирований
type OverlapFilter struct {
	CarID     *int64 // nil - по всем автомобилям (режим каталога)
	Window    domain.Window
	Statuses  []domain.BookingStatus
	ExcludeID *int64
}

// PendingCandidate PENDING бронирование, созданное достаточно давно, чтобы проверить его срок
type PendingCandidate struct {
	BookingID         int64
	CreatedAt         time.Time
	DocumentAttemptAt *time.Time
}

// TripCompletion данные завершения поездки
type TripCompletion struct {
	EndOdometer int64
	DamageFee   float64
	ExtraKmFee  float64
}
