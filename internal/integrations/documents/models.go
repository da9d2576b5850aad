package documents

// StatusResponse ответ сервиса проверки документов
type StatusResponse struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"` // PENDING, APPROVED, REJECTED
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// EventType тип события сервиса проверки документов
type EventType string

const (
	EventStarted  EventType = "STARTED"  // клиент начал загрузку документов
	EventApproved EventType = "APPROVED" // документы приняты
	EventRejected EventType = "REJECTED" // документы отклонены
)

// Event уведомление об изменении статуса документов по бронированию
type Event struct {
	BookingID int64     `json:"bookingId" validate:"required,gt=0"`
	Type      EventType `json:"event" validate:"required,oneof=STARTED APPROVED REJECTED"`
	Reason    string    `json:"reason,omitempty" validate:"omitempty,max=500"`
}
