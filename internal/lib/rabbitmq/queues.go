package rabbitmq

// Exchange обменник, через который ходят уведомления магазина.
const Exchange = "notifications"

// Очередь уведомлений о выдаче VPN-доступа.
const (
	DeliveredQueue      = "notification.delivered"
	DeliveredRoutingKey = "order.delivered"
)

// QueueConfig описывает очередь и ключ, которым она привязана к Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые объявляются при старте.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: DeliveredQueue, RoutingKey: DeliveredRoutingKey},
	}
}
