package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/feastly/delivery-api/internal/usecase"
)

const (
	exchangeName = "order.events"

	routingKeyNew    = "order.new"
	routingKeyUpdate = "order.updated"

	// trackerQueue feeds the live-tracking consumer (see OrderEventHandler).
	trackerQueue = "order.events.tracker.q"
)

// RabbitProducer is the event sink: every order creation and transition
// is published as a persistent JSON message on a topic exchange, so any
// number of downstream views can subscribe without the engine knowing.
type RabbitProducer struct {
	ch *amqp.Channel
}

var _ usecase.EventSink = (*RabbitProducer)(nil)

// NewRabbitProducer sets up the exchange, tracker queue, and bindings once at startup.
func NewRabbitProducer(ch *amqp.Channel) (*RabbitProducer, error) {
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		trackerQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	// the tracker wants both creations and updates
	for _, rk := range []string{routingKeyNew, routingKeyUpdate} {
		if err := ch.QueueBind(q.Name, rk, exchangeName, false, nil); err != nil {
			return nil, fmt.Errorf("queue bind %s: %w", rk, err)
		}
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &RabbitProducer{ch: ch}, nil
}

func (p *RabbitProducer) PublishOrderEvent(ctx context.Context, ev usecase.OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	rk := routingKeyUpdate
	if ev.Name == usecase.EventOrderNew {
		rk = routingKeyNew
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		Body:         body,
	}

	if err := p.ch.PublishWithContext(ctx, exchangeName, rk, false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", rk, err)
	}
	return nil
}
