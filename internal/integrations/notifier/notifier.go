package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Publisher часть redis-клиента, через которую отправляются уведомления
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Message уведомление о событии бронирования
type Message struct {
	Recipient string    `json:"recipient"`
	BookingID int64     `json:"bookingId"`
	Event     string    `json:"event"`
	SentAt    time.Time `json:"sentAt"`
}

// Notifier публикует уведомления в канал Redis. Доставку получателю
// выполняет отдельный сервис-подписчик.
type Notifier struct {
	publisher Publisher
	channel   string
	now       func() time.Time
	log       Logger
}

// NewNotifier создает notifier поверх redis-клиента
func NewNotifier(publisher Publisher, channel string, log Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		channel:   channel,
		now:       time.Now,
		log:       log,
	}
}

// Notify публикует событие для получателя (driver, customer)
func (n *Notifier) Notify(ctx context.Context, recipientRole string, bookingID int64, eventType string) error {
	payload, err := json.Marshal(Message{
		Recipient: recipientRole,
		BookingID: bookingID,
		Event:     eventType,
		SentAt:    n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	receivers, err := n.publisher.Publish(ctx, n.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("%w: channel=%s: %w", ErrPublish, n.channel, err)
	}

	if receivers == 0 {
		n.log.Warn("Notify: no subscribers on channel=%s for %s/%s booking=%d", n.channel, recipientRole, eventType, bookingID)
		return nil
	}

	n.log.Info("Notify: %s notified about %s for booking=%d", recipientRole, eventType, bookingID)
	return nil
}
