package notifier

import "context"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// LogNotifier пишет уведомления в лог, когда Kafka не настроена
type LogNotifier struct {
	log Logger
}

// NewLogNotifier создает издателя, который только логирует уведомления
func NewLogNotifier(log Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Publish логирует уведомление
func (n *LogNotifier) Publish(_ context.Context, msg Message) error {
	n.log.Info("Notification %s for booking id=%d (kafka disabled)", msg.Type, msg.BookingID)
	return nil
}
