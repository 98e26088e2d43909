package rabbitmq

// Ключи маршрутизации уведомлений.
const (
	RoutingKeyWelcome = "welcome"
	QueueWelcome      = "notifications.welcome"
)

// QueueConfig очередь и её ключ маршрутизации в обменнике уведомлений.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues очереди, которые объявляют и API, и отправитель писем.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueWelcome, RoutingKey: RoutingKeyWelcome},
	}
}
