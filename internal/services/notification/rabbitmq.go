package notification

import (
	"context"
	"time"
)

// Publisher is the subset of the RabbitMQ service used for events
type Publisher interface {
	PublishMessage(ctx context.Context, queueName string, message map[string]interface{}) error
}

// RabbitMQNotifier publishes notifications as JSON events on a queue
type RabbitMQNotifier struct {
	publisher Publisher
	queue     string
}

// NewRabbitMQNotifier creates a notifier publishing to queue
func NewRabbitMQNotifier(publisher Publisher, queue string) *RabbitMQNotifier {
	return &RabbitMQNotifier{publisher: publisher, queue: queue}
}

// SendExecutionResult implements Notifier
func (n *RabbitMQNotifier) SendExecutionResult(ctx context.Context, title string, success bool, details string) error {
	return n.publisher.PublishMessage(ctx, n.queue, map[string]interface{}{
		"event":     "proposal.executed",
		"title":     title,
		"success":   success,
		"details":   details,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// SendRollbackNotification implements Notifier
func (n *RabbitMQNotifier) SendRollbackNotification(ctx context.Context, title, reason string) error {
	return n.publisher.PublishMessage(ctx, n.queue, map[string]interface{}{
		"event":     "proposal.rolled_back",
		"title":     title,
		"reason":    reason,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
