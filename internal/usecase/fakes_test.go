package usecase

import (
	"context"
	"sync"

	domain "github.com/feastly/delivery-api/internal/entity"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "order", ID: id}
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) UpdateStatusIf(_ context.Context, id string, from, to domain.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (r *fakeOrderRepo) AssignDeliveryPartner(_ context.Context, id, partnerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return &domain.NotFoundError{Kind: "order", ID: id}
	}
	o.DeliveryPartnerID = &partnerID
	return nil
}

func (r *fakeOrderRepo) ListActive(context.Context) ([]domain.Order, error) { return nil, nil }
func (r *fakeOrderRepo) ListByCustomer(context.Context, string) ([]domain.Order, error) {
	return nil, nil
}
func (r *fakeOrderRepo) ListActiveByRestaurant(context.Context, string) ([]domain.Order, error) {
	return nil, nil
}
func (r *fakeOrderRepo) ListHistoryByRestaurant(context.Context, string, HistoryPage) ([]domain.Order, error) {
	return nil, nil
}

type fakeMenuRepo struct {
	items []domain.MenuItem
}

func (r *fakeMenuRepo) Create(context.Context, *domain.MenuItem) error { return nil }
func (r *fakeMenuRepo) GetByID(_ context.Context, id string) (*domain.MenuItem, error) {
	for i := range r.items {
		if r.items[i].ID == id {
			return &r.items[i], nil
		}
	}
	return nil, &domain.NotFoundError{Kind: "menu item", ID: id}
}
func (r *fakeMenuRepo) ListByRestaurant(_ context.Context, restaurantID string) ([]domain.MenuItem, error) {
	var out []domain.MenuItem
	for _, mi := range r.items {
		if mi.RestaurantID == restaurantID {
			out = append(out, mi)
		}
	}
	return out, nil
}
func (r *fakeMenuRepo) Update(context.Context, *domain.MenuItem) error { return nil }
func (r *fakeMenuRepo) Delete(context.Context, string) error           { return nil }

type fakeIdem struct {
	mu     sync.Mutex
	locks  map[string]bool
	values map[string]string
}

func newFakeIdem() *fakeIdem {
	return &fakeIdem{locks: map[string]bool{}, values: map[string]string{}}
}

func (s *fakeIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + ":" + key
	if s.locks[k] {
		return false, nil
	}
	s.locks[k] = true
	return true, nil
}

func (s *fakeIdem) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scope+":"+key] = value
	return nil
}

func (s *fakeIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[scope+":"+key]
	return v, ok, nil
}

type fakeSink struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (s *fakeSink) PublishOrderEvent(_ context.Context, ev OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *fakeSink) all() []OrderEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]OrderEvent(nil), s.events...)
}

type fakeCache struct {
	mu       sync.Mutex
	statuses map[string]domain.Status
}

func newFakeCache() *fakeCache { return &fakeCache{statuses: map[string]domain.Status{}} }

func (c *fakeCache) SetStatus(_ context.Context, orderID string, status domain.Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[orderID] = status
	return nil
}

func (c *fakeCache) GetStatus(_ context.Context, orderID string) (domain.Status, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.statuses[orderID]
	return s, ok, nil
}
