package domain

import "time"

// CarStatus состояние автомобиля: отражает, выдан ли он клиенту прямо сейчас
type CarStatus string

const (
	CarAvailable    CarStatus = "AVAILABLE"
	CarRented       CarStatus = "RENTED"
	CarMaintenance  CarStatus = "MAINTENANCE"
	CarOutOfService CarStatus = "OUT_OF_SERVICE"
)

// Car represents a rental vehicle
type Car struct {
	ID          int64
	PlateNumber string
	Brand       string
	Model       string
	PricePerDay float64
	Status      CarStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsBookable returns false only for cars taken out of service
// Сдача в аренду и обслуживание не мешают бронированию на будущие даты
func (c *Car) IsBookable() bool {
	return c.Status != CarOutOfService
}
