package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/feastly/delivery-api/internal/entity"
)

func seedOrder(t *testing.T, repo *fakeOrderRepo, status domain.Status) *domain.Order {
	t.Helper()
	o := &domain.Order{
		ID:           "o1",
		RestaurantID: "r1",
		CustomerID:   "c1",
		Status:       status,
		PaymentType:  domain.PaymentCOD,
		PlacedAt:     time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), o); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return o
}

func TestUpdateOrderStatus(t *testing.T) {
	orders := newFakeOrderRepo()
	cache := newFakeCache()
	sink := &fakeSink{}
	seedOrder(t, orders, domain.StatusPending)

	uc := NewUpdateOrderStatus(orders, nil, nil, nil, cache, sink)

	got, err := uc.Execute(context.Background(), "o1", domain.StatusPreparing)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got.Status != domain.StatusPreparing {
		t.Errorf("status = %s, want preparing", got.Status)
	}

	stored, _ := orders.GetByID(context.Background(), "o1")
	if stored.Status != domain.StatusPreparing {
		t.Errorf("persisted status = %s, want preparing", stored.Status)
	}

	if s, ok, _ := cache.GetStatus(context.Background(), "o1"); !ok || s != domain.StatusPreparing {
		t.Errorf("cached status = %s (%v), want preparing", s, ok)
	}

	evs := sink.all()
	if len(evs) != 1 || evs[0].Name != EventOrderUpdate {
		t.Fatalf("events = %+v, want single order:update", evs)
	}
}

func TestUpdateOrderStatusIllegal(t *testing.T) {
	orders := newFakeOrderRepo()
	sink := &fakeSink{}
	seedOrder(t, orders, domain.StatusDispatch)

	uc := NewUpdateOrderStatus(orders, nil, nil, nil, nil, sink)

	_, err := uc.Execute(context.Background(), "o1", domain.StatusRejected)
	var ite *domain.IllegalTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("Execute() error = %v, want IllegalTransitionError", err)
	}
	if ite.From != domain.StatusDispatch || ite.To != domain.StatusRejected {
		t.Errorf("error = %v, want dispatch -> rejected", ite)
	}

	stored, _ := orders.GetByID(context.Background(), "o1")
	if stored.Status != domain.StatusDispatch {
		t.Errorf("status mutated on illegal transition: %s", stored.Status)
	}
	if len(sink.all()) != 0 {
		t.Error("no event should be published on illegal transition")
	}
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	uc := NewUpdateOrderStatus(newFakeOrderRepo(), nil, nil, nil, nil, &fakeSink{})
	_, err := uc.Execute(context.Background(), "missing", domain.StatusPreparing)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Execute() error = %v, want NotFoundError", err)
	}
}

func TestUpdateOrderStatusConflict(t *testing.T) {
	orders := newFakeOrderRepo()
	seedOrder(t, orders, domain.StatusPending)
	uc := NewUpdateOrderStatus(orders, nil, nil, nil, nil, &fakeSink{})

	// another writer moves the order between our read and our write
	raced := &racingOrderRepo{fakeOrderRepo: orders}
	uc.orders = raced

	_, err := uc.Execute(context.Background(), "o1", domain.StatusPreparing)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Execute() error = %v, want ErrConflict", err)
	}
}

func TestDispatchAssignsPartner(t *testing.T) {
	orders := newFakeOrderRepo()
	sink := &fakeSink{}
	seedOrder(t, orders, domain.StatusReady)

	uc := NewUpdateOrderStatus(orders, nil, nil, nil, nil, sink)

	got, err := uc.Dispatch(context.Background(), "o1", "dp-7")
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got.Status != domain.StatusDispatch {
		t.Errorf("status = %s, want dispatch", got.Status)
	}

	stored, _ := orders.GetByID(context.Background(), "o1")
	if stored.DeliveryPartnerID == nil || *stored.DeliveryPartnerID != "dp-7" {
		t.Errorf("delivery partner not assigned: %+v", stored.DeliveryPartnerID)
	}
}

func TestDispatchFinishedOrderKeepsPartnerClear(t *testing.T) {
	orders := newFakeOrderRepo()
	seedOrder(t, orders, domain.StatusCancelled)

	uc := NewUpdateOrderStatus(orders, nil, nil, nil, nil, &fakeSink{})

	_, err := uc.Dispatch(context.Background(), "o1", "dp-7")
	var ite *domain.IllegalTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("Dispatch() error = %v, want IllegalTransitionError", err)
	}

	stored, _ := orders.GetByID(context.Background(), "o1")
	if stored.DeliveryPartnerID != nil {
		t.Errorf("partner %q written despite failed dispatch", *stored.DeliveryPartnerID)
	}
}

// racingOrderRepo simulates a concurrent transition by flipping the status
// after the usecase has read it.
type racingOrderRepo struct {
	*fakeOrderRepo
}

func (r *racingOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := r.fakeOrderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_, _ = r.fakeOrderRepo.UpdateStatusIf(ctx, id, o.Status, domain.StatusCancelled)
	return o, nil
}
