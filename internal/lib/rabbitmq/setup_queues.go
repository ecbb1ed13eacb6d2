// Package rabbitmq содержит подключение к RabbitMQ, объявление топологии,
// публикацию и потребление уведомлений.
package rabbitmq

// Топология уведомлений.
const (
	NotificationsExchange = "notifications"
	NotificationsQueue    = "notification.events"
	NotificationsKey      = "events"
)

// QueueConfig описывает очередь и ключ её привязки к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые слушает отправитель писем.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: NotificationsQueue, RoutingKey: NotificationsKey},
	}
}
