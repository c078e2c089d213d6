package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"restaurant-analytics-service/internal/events"
	"restaurant-analytics-service/internal/model"
)

// Routing keys published by the order service.
const (
	RoutingOrderCreated   = "order.created"
	RoutingOrderUpdated   = "order.updated"
	RoutingOrderCompleted = "order.completed"
)

// OrderEventConsumer turns AMQP order messages into dispatcher publishes,
// for deployments where the order service runs out of process.
type OrderEventConsumer struct {
	client     *Client
	dispatcher *events.Dispatcher
	queue      string
	log        zerolog.Logger
}

func NewOrderEventConsumer(client *Client, dispatcher *events.Dispatcher, exchange, queueName string, log zerolog.Logger) (*OrderEventConsumer, error) {
	if err := client.EnsureExchange(exchange); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := client.EnsureQueue(queueName); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := client.BindQueue(queueName, exchange, "order.*"); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	return &OrderEventConsumer{
		client:     client,
		dispatcher: dispatcher,
		queue:      queueName,
		log:        log,
	}, nil
}

// Run consumes until ctx is cancelled or the channel closes.
func (c *OrderEventConsumer) Run(ctx context.Context) error {
	return c.client.Consume(ctx, c.queue, c.handle)
}

func (c *OrderEventConsumer) handle(ctx context.Context, routingKey string, body []byte) error {
	var order model.Order
	if err := json.Unmarshal(body, &order); err != nil {
		c.log.Warn().Err(err).Str("routing_key", routingKey).Msg("unreadable order event")
		return err
	}

	switch routingKey {
	case RoutingOrderCreated:
		c.dispatcher.PublishOrderCreated(ctx, order)
	case RoutingOrderUpdated:
		c.dispatcher.PublishOrderUpdated(ctx, order)
	case RoutingOrderCompleted:
		c.dispatcher.PublishOrderCompleted(ctx, order)
	default:
		c.log.Debug().Str("routing_key", routingKey).Msg("ignoring order event")
	}
	return nil
}
