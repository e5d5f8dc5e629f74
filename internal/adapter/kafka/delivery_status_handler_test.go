package kafka

import (
	"context"
	"testing"
	"time"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/usecase"
)

type memOrderRepo struct {
	orders map[string]*domain.Order
}

func (r *memOrderRepo) Create(_ context.Context, o *domain.Order) error {
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "order", ID: id}
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) UpdateStatusIf(_ context.Context, id string, from, to domain.Status) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (r *memOrderRepo) AssignDeliveryPartner(_ context.Context, id, partnerID string) error {
	o, ok := r.orders[id]
	if !ok {
		return &domain.NotFoundError{Kind: "order", ID: id}
	}
	o.DeliveryPartnerID = &partnerID
	return nil
}

func (r *memOrderRepo) ListActive(context.Context) ([]domain.Order, error) { return nil, nil }
func (r *memOrderRepo) ListByCustomer(context.Context, string) ([]domain.Order, error) {
	return nil, nil
}
func (r *memOrderRepo) ListActiveByRestaurant(context.Context, string) ([]domain.Order, error) {
	return nil, nil
}
func (r *memOrderRepo) ListHistoryByRestaurant(context.Context, string, usecase.HistoryPage) ([]domain.Order, error) {
	return nil, nil
}

type nopSink struct{}

func (nopSink) PublishOrderEvent(context.Context, usecase.OrderEvent) error { return nil }

func seedRepo(status domain.Status) *memOrderRepo {
	return &memOrderRepo{orders: map[string]*domain.Order{
		"o1": {ID: "o1", RestaurantID: "r1", CustomerID: "c1", Status: status, PlacedAt: time.Now()},
	}}
}

func TestHandleAssigned(t *testing.T) {
	repo := seedRepo(domain.StatusReady)
	h := NewDeliveryStatusHandler(usecase.NewUpdateOrderStatus(repo, nil, nil, nil, nil, nopSink{}))

	err := h.Handle(context.Background(), usecase.DeliveryStatusMsg{
		OrderID: "o1", PartnerID: "dp-1", Status: "ASSIGNED",
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	o := repo.orders["o1"]
	if o.Status != domain.StatusDispatch {
		t.Errorf("status = %s, want dispatch", o.Status)
	}
	if o.DeliveryPartnerID == nil || *o.DeliveryPartnerID != "dp-1" {
		t.Errorf("partner = %v, want dp-1", o.DeliveryPartnerID)
	}
}

func TestHandleDelivered(t *testing.T) {
	repo := seedRepo(domain.StatusDispatch)
	h := NewDeliveryStatusHandler(usecase.NewUpdateOrderStatus(repo, nil, nil, nil, nil, nopSink{}))

	err := h.Handle(context.Background(), usecase.DeliveryStatusMsg{OrderID: "o1", Status: "DELIVERED"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got := repo.orders["o1"].Status; got != domain.StatusDelivered {
		t.Errorf("status = %s, want delivered", got)
	}
}

func TestHandleRedeliveredEventAcked(t *testing.T) {
	// order already delivered; a replayed DELIVERED event must not error,
	// or the consumer would spin on it forever
	repo := seedRepo(domain.StatusDelivered)
	h := NewDeliveryStatusHandler(usecase.NewUpdateOrderStatus(repo, nil, nil, nil, nil, nopSink{}))

	if err := h.Handle(context.Background(), usecase.DeliveryStatusMsg{OrderID: "o1", Status: "DELIVERED"}); err != nil {
		t.Errorf("replayed event should be acked, got %v", err)
	}
}

func TestHandleUnknownOrderAcked(t *testing.T) {
	// an order id we have never seen cannot appear on retry either,
	// so the event must be acked rather than block the partition
	repo := seedRepo(domain.StatusReady)
	h := NewDeliveryStatusHandler(usecase.NewUpdateOrderStatus(repo, nil, nil, nil, nil, nopSink{}))

	if err := h.Handle(context.Background(), usecase.DeliveryStatusMsg{
		OrderID: "no-such-order", PartnerID: "dp-1", Status: "ASSIGNED",
	}); err != nil {
		t.Errorf("unknown order should be acked, got %v", err)
	}
}

func TestHandleUnknownStatus(t *testing.T) {
	repo := seedRepo(domain.StatusReady)
	h := NewDeliveryStatusHandler(usecase.NewUpdateOrderStatus(repo, nil, nil, nil, nil, nopSink{}))

	if err := h.Handle(context.Background(), usecase.DeliveryStatusMsg{OrderID: "o1", Status: "LOST"}); err == nil {
		t.Error("unknown status should error")
	}
}
