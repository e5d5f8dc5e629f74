package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/logging"
)

var ErrDuplicate = errors.New("duplicate idempotency key")

type CreateOrderInput struct {
	RestaurantID   string
	CustomerID     string
	IdempotencyKey string
	Items          []domain.LineItemRequest
	PaymentType    domain.PaymentType
	CustomerNotes  string
	Address        string
	DistanceKm     decimal.Decimal
}

type CreateOrder struct {
	orders OrderRepo
	menu   MenuRepo
	idem   IdempotencyStore
	sink   EventSink
	proj   projectionLoader
	rates  domain.PricingRates
}

func NewCreateOrder(orders OrderRepo, menu MenuRepo, restaurants RestaurantRepo, customers CustomerRepo,
	idem IdempotencyStore, sink EventSink, rates domain.PricingRates) *CreateOrder {
	return &CreateOrder{
		orders: orders,
		menu:   menu,
		idem:   idem,
		sink:   sink,
		proj:   projectionLoader{restaurants: restaurants, customers: customers},
		rates:  rates,
	}
}

// Execute prices the cart against the restaurant's menu and persists the
// order in status pending. Pricing is all-or-nothing: an unresolvable
// menu item aborts before anything is written.
func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	// Fast path: a retried request returns the order it already created.
	if in.IdempotencyKey != "" {
		if id, ok, _ := uc.idem.Recall(ctx, in.CustomerID, in.IdempotencyKey); ok {
			return uc.orders.GetByID(ctx, id)
		}
		ok, err := uc.idem.TryLock(ctx, in.CustomerID, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDuplicate
		}
	}

	menu, err := uc.menu.ListByRestaurant(ctx, in.RestaurantID)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]*domain.MenuItem, len(menu))
	for i := range menu {
		catalog[menu[i].ID] = &menu[i]
	}
	lookup := func(id string) (*domain.MenuItem, bool) {
		mi, ok := catalog[id]
		return mi, ok
	}

	items, totals, err := domain.Quote(in.Items, lookup, in.DistanceKm, uc.rates)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:            uuid.NewString(),
		RestaurantID:  in.RestaurantID,
		CustomerID:    in.CustomerID,
		Items:         items,
		Totals:        totals,
		Status:        domain.StatusPending,
		PaymentType:   in.PaymentType,
		CustomerNotes: in.CustomerNotes,
		Address:       in.Address,
		DistanceKm:    in.DistanceKm,
		PlacedAt:      time.Now().UTC(),
	}
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" {
		_ = uc.idem.Remember(ctx, in.CustomerID, in.IdempotencyKey, order.ID)
	}

	// fire-and-forget; the sink owns delivery guarantees
	ev := OrderEvent{Name: EventOrderNew, Projection: uc.proj.load(ctx, order)}
	if err := uc.sink.PublishOrderEvent(ctx, ev); err != nil {
		logging.FromCtx(ctx).Warn("order:new publish failed", "order_id", order.ID, "error", err)
	}

	return order, nil
}
