package queue

import (
	"context"

	"github.com/feastly/delivery-api/internal/logging"
	"github.com/feastly/delivery-api/internal/usecase"
)

// OrderEventHandler is the in-process live-tracking consumer: it keeps
// the redis status cache warm from the order event stream, so tracking
// reads never need the database. Intended for use with
// queue.JSONHandler[usecase.OrderEvent].
type OrderEventHandler struct {
	Cache usecase.OrderCache
}

func NewOrderEventHandler(cache usecase.OrderCache) *OrderEventHandler {
	return &OrderEventHandler{Cache: cache}
}

func (h *OrderEventHandler) HandleEvent(ctx context.Context, ev usecase.OrderEvent) error {
	o := ev.Projection.Order
	if o.ID == "" {
		// poison message; ack and move on
		logging.FromCtx(ctx).Warn("order event without order id", "event", ev.Name)
		return nil
	}
	return h.Cache.SetStatus(ctx, o.ID, o.Status)
}

// TrackerQueue is the queue NewRabbitProducer binds for this consumer.
func TrackerQueue() string { return trackerQueue }
