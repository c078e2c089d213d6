package events

import (
	"context"

	"restaurant-analytics-service/internal/model"
)

// OrderHandler receives order lifecycle notifications. Handlers must absorb
// their own failures; the dispatcher offers no retry or isolation.
type OrderHandler interface {
	OrderCreated(ctx context.Context, order model.Order)
	OrderUpdated(ctx context.Context, order model.Order)
	OrderCompleted(ctx context.Context, order model.Order)
}

// Dispatcher fans order events out to every subscribed handler, on the
// publishing goroutine. Publish is called after the order operation has
// committed, so a slow or failing handler can never roll it back.
type Dispatcher struct {
	handlers []OrderHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers a handler. Not safe to call concurrently with
// publishing; subscribe everything during startup.
func (d *Dispatcher) Subscribe(h OrderHandler) {
	d.handlers = append(d.handlers, h)
}

func (d *Dispatcher) PublishOrderCreated(ctx context.Context, order model.Order) {
	for _, h := range d.handlers {
		h.OrderCreated(ctx, order)
	}
}

func (d *Dispatcher) PublishOrderUpdated(ctx context.Context, order model.Order) {
	for _, h := range d.handlers {
		h.OrderUpdated(ctx, order)
	}
}

func (d *Dispatcher) PublishOrderCompleted(ctx context.Context, order model.Order) {
	for _, h := range d.handlers {
		h.OrderCompleted(ctx, order)
	}
}
