package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Типы уведомлений
const (
	TypeVerificationLink = "verification_link"
	TypeBookingCancelled = "booking_cancelled"
)

// Message уведомление, публикуемое в Kafka для сервиса рассылок
type Message struct {
	Type       string     `json:"type"`
	BookingID  int64      `json:"booking_id"`
	UserID     *int64     `json:"user_id,omitempty"`
	Email      *string    `json:"email,omitempty"`
	Token      string     `json:"token,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Writer интерфейс kafka.Writer, используемый издателем
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier публикует уведомления в топик Kafka
type KafkaNotifier struct {
	writer  Writer
	timeout time.Duration
}

// NewKafkaWriter создает writer для топика уведомлений
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
}

// NewKafkaNotifier создает издателя уведомлений
func NewKafkaNotifier(writer Writer, timeout time.Duration) *KafkaNotifier {
	return &KafkaNotifier{writer: writer, timeout: timeout}
}

// Publish отправляет уведомление. Ключ сообщения - ID бронирования,
// чтобы события одного бронирования попадали в одну партицию
func (n *KafkaNotifier) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notifier: marshal %s: %w", msg.Type, err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(msg.BookingID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(msg.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("notifier: publish %s for booking %d: %w", msg.Type, msg.BookingID, err)
	}

	return nil
}

// Close закрывает writer
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// ParseBrokers разбирает список брокеров из строки "host1:9092,host2:9092"
func ParseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
