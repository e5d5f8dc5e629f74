package usecase

import (
	"context"
	"errors"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/logging"
)

// ErrConflict means another transition won the compare-and-swap between
// our read and our write. The caller should re-read and reconcile.
var ErrConflict = errors.New("order status changed concurrently")

type UpdateOrderStatus struct {
	orders OrderRepo
	cache  OrderCache
	sink   EventSink
	proj   projectionLoader
}

func NewUpdateOrderStatus(orders OrderRepo, restaurants RestaurantRepo, customers CustomerRepo,
	partners DeliveryPartnerRepo, cache OrderCache, sink EventSink) *UpdateOrderStatus {
	return &UpdateOrderStatus{
		orders: orders,
		cache:  cache,
		sink:   sink,
		proj:   projectionLoader{restaurants: restaurants, customers: customers, partners: partners},
	}
}

// Execute validates the requested transition against the lifecycle and
// applies it with a guarded status write. The status changes atomically
// or not at all.
func (uc *UpdateOrderStatus) Execute(ctx context.Context, orderID string, requested domain.Status) (*domain.Order, error) {
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next, err := domain.Transition(order.Status, requested)
	if err != nil {
		return nil, err
	}

	ok, err := uc.orders.UpdateStatusIf(ctx, orderID, order.Status, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	order.Status = next

	if uc.cache != nil {
		_ = uc.cache.SetStatus(ctx, orderID, next)
	}

	ev := OrderEvent{Name: EventOrderUpdate, Projection: uc.proj.load(ctx, order)}
	if err := uc.sink.PublishOrderEvent(ctx, ev); err != nil {
		logging.FromCtx(ctx).Warn("order:update publish failed", "order_id", orderID, "error", err)
	}

	return order, nil
}

// Dispatch assigns a delivery partner and moves the order to dispatch in
// one step. Used by the delivery-status feed when a partner accepts.
// The transition is checked before the partner is written so a replayed
// event on a finished order leaves no partner reference behind.
func (uc *UpdateOrderStatus) Dispatch(ctx context.Context, orderID, partnerID string) (*domain.Order, error) {
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := domain.Transition(order.Status, domain.StatusDispatch); err != nil {
		return nil, err
	}
	if err := uc.orders.AssignDeliveryPartner(ctx, orderID, partnerID); err != nil {
		return nil, err
	}
	return uc.Execute(ctx, orderID, domain.StatusDispatch)
}
