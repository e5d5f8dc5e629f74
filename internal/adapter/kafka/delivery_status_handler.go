package kafka

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/usecase"
)

// DeliveryStatusHandler applies dispatch-service events to the order
// lifecycle. ASSIGNED moves a ready order to dispatch with the partner
// attached; DELIVERED completes it. Both go through the same guarded
// transition as every other status write.
type DeliveryStatusHandler struct {
	Status *usecase.UpdateOrderStatus
}

func NewDeliveryStatusHandler(status *usecase.UpdateOrderStatus) *DeliveryStatusHandler {
	return &DeliveryStatusHandler{Status: status}
}

func (h *DeliveryStatusHandler) Handle(ctx context.Context, ev usecase.DeliveryStatusMsg) error {
	var err error
	switch ev.Status {
	case "ASSIGNED":
		_, err = h.Status.Dispatch(ctx, ev.OrderID, ev.PartnerID)
	case "DELIVERED":
		_, err = h.Status.Execute(ctx, ev.OrderID, domain.StatusDelivered)
	default:
		return fmt.Errorf("unknown delivery status %q for order %s", ev.Status, ev.OrderID)
	}

	// An illegal transition means we already applied this event (or the
	// order was cancelled first); an unknown order id will never appear
	// on retry either. Neither is retryable, so ack both.
	var (
		ite *domain.IllegalTransitionError
		nf  *domain.NotFoundError
	)
	if errors.As(err, &ite) || errors.As(err, &nf) {
		return nil
	}
	return err
}
