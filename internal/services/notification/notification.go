// Package notification отправка уведомлений о выдаче доступа.
// Сами письма отправляет отдельный процесс notification-sender, читающий очередь.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/vpn-store/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// Publisher публикует сообщение в обменник уведомлений.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// QueueNotifier кладёт уведомление в RabbitMQ.
type QueueNotifier struct {
	log *slog.Logger
	pub Publisher
}

// NewQueueNotifier создаёт QueueNotifier.
func NewQueueNotifier(log *slog.Logger, pub Publisher) *QueueNotifier {
	return &QueueNotifier{log: log, pub: pub}
}

// NotifyDelivered публикует уведомление с ключом order.delivered.
func (n *QueueNotifier) NotifyDelivered(ctx context.Context, msg models.DeliveryNotification) error {
	const op = "notification.NotifyDelivered"
	if msg.Email == "" {
		return fmt.Errorf("%s: customer email is empty", op)
	}
	if err := n.pub.Publish(ctx, rabbitmq.DeliveredRoutingKey, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n.log.Info("delivery notification queued", slog.String("op", op), slog.String("order_id", msg.OrderID))
	return nil
}

// LogNotifier используется, когда брокер не настроен: уведомление только логируется.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier создаёт LogNotifier.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// NotifyDelivered пишет в лог факт выдачи без данных доступа.
func (n *LogNotifier) NotifyDelivered(_ context.Context, msg models.DeliveryNotification) error {
	n.log.Info("delivery notification not sent, broker is not configured",
		slog.String("order_id", msg.OrderID),
		slog.String("email", msg.Email),
	)
	return nil
}
