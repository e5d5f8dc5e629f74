package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memOrderRepo struct {
	orders map[string]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[string]*domain.Order{}}
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

func (r *memOrderRepo) ListActive(context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.Status.Active() {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) ListByCustomer(context.Context, string) ([]domain.Order, error) {
	return nil, nil
}

func (r *memOrderRepo) ListActiveByRestaurant(context.Context, string) ([]domain.Order, error) {
	return nil, nil
}

func (r *memOrderRepo) ListHistoryByRestaurant(context.Context, string, usecase.HistoryPage) ([]domain.Order, error) {
	return nil, nil
}

type memMenuRepo struct {
	items map[string]*domain.MenuItem
}

func (r *memMenuRepo) Create(_ context.Context, mi *domain.MenuItem) error {
	r.items[mi.ID] = mi
	return nil
}

func (r *memMenuRepo) GetByID(_ context.Context, id string) (*domain.MenuItem, error) {
	mi, ok := r.items[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "menu item", ID: id}
	}
	return mi, nil
}

func (r *memMenuRepo) ListByRestaurant(_ context.Context, restaurantID string) ([]domain.MenuItem, error) {
	var out []domain.MenuItem
	for _, mi := range r.items {
		if mi.RestaurantID == restaurantID {
			out = append(out, *mi)
		}
	}
	return out, nil
}

func (r *memMenuRepo) Update(_ context.Context, mi *domain.MenuItem) error {
	r.items[mi.ID] = mi
	return nil
}

func (r *memMenuRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

type memCache struct {
	statuses map[string]domain.Status
}

func (c *memCache) SetStatus(_ context.Context, orderID string, status domain.Status) error {
	c.statuses[orderID] = status
	return nil
}

func (c *memCache) GetStatus(_ context.Context, orderID string) (domain.Status, bool, error) {
	s, ok := c.statuses[orderID]
	return s, ok, nil
}

type nopIdem struct{}

func (nopIdem) TryLock(context.Context, string, string) (bool, error)   { return true, nil }
func (nopIdem) Remember(context.Context, string, string, string) error { return nil }
func (nopIdem) Recall(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}

type nopSink struct{}

func (nopSink) PublishOrderEvent(context.Context, usecase.OrderEvent) error { return nil }

type nilRestaurantRepo struct{}

func (nilRestaurantRepo) Create(context.Context, *domain.Restaurant) error { return nil }
func (nilRestaurantRepo) GetByID(_ context.Context, id string) (*domain.Restaurant, error) {
	return nil, &domain.NotFoundError{Kind: "restaurant", ID: id}
}
func (nilRestaurantRepo) GetByMobileOrEmail(context.Context, string, string) (*domain.Restaurant, error) {
	return nil, nil
}
func (nilRestaurantRepo) List(context.Context) ([]domain.Restaurant, error) { return nil, nil }
func (nilRestaurantRepo) Update(context.Context, *domain.Restaurant) error  { return nil }
func (nilRestaurantRepo) SetApproval(context.Context, string, bool) error   { return nil }
func (nilRestaurantRepo) Delete(context.Context, string) error              { return nil }

type nilCustomerRepo struct{}

func (nilCustomerRepo) Create(context.Context, *domain.Customer) error { return nil }
func (nilCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	return nil, &domain.NotFoundError{Kind: "customer", ID: id}
}
func (nilCustomerRepo) GetByEmail(context.Context, string) (*domain.Customer, error) {
	return nil, nil
}
func (nilCustomerRepo) Update(context.Context, *domain.Customer) error { return nil }

type nilPartnerRepo struct{}

func (nilPartnerRepo) GetByID(_ context.Context, id string) (*domain.DeliveryPartner, error) {
	return nil, &domain.NotFoundError{Kind: "delivery partner", ID: id}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testFixture(t *testing.T) (*gin.Engine, *memOrderRepo, *memCache) {
	t.Helper()

	orders := newMemOrderRepo()
	menu := &memMenuRepo{items: map[string]*domain.MenuItem{
		"m1": {ID: "m1", RestaurantID: "r1", Name: "Paneer Wrap", Price: dec("120")},
		"m2": {ID: "m2", RestaurantID: "r1", Name: "Lassi", Price: dec("40")},
	}}
	statusCache := &memCache{statuses: map[string]domain.Status{}}

	rates := domain.PricingRates{TaxRate: dec("0.05"), PerKmRate: dec("10")}
	createUC := usecase.NewCreateOrder(orders, menu, nilRestaurantRepo{}, nilCustomerRepo{}, nopIdem{}, nopSink{}, rates)
	statusUC := usecase.NewUpdateOrderStatus(orders, nilRestaurantRepo{}, nilCustomerRepo{}, nilPartnerRepo{}, statusCache, nopSink{})

	h := NewOrderHandler(createUC, statusUC, orders, statusCache)

	r := gin.New()
	r.POST("/v1/orders", h.CreateOrder)
	r.GET("/v1/orders/:id", h.GetOrderByID)
	r.GET("/v1/orders/:id/status", h.GetOrderStatus)
	r.PATCH("/v1/orders/:id/status", h.UpdateStatus)
	return r, orders, statusCache
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrderEndpoint(t *testing.T) {
	r, orders, _ := testFixture(t)

	w := doJSON(t, r, nethttp.MethodPost, "/v1/orders", gin.H{
		"restaurantId": "r1",
		"customerId":   "c1",
		"items": []gin.H{
			{"menuItemId": "m1", "quantity": 2},
			{"menuItemId": "m2", "quantity": 1},
		},
		"paymentType": "COD",
		"distanceKm":  "5",
	})
	if w.Code != nethttp.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp orderResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// 2*120 + 40 = 280, tax 14, delivery 50
	if !resp.GrandTotal.Equal(dec("344")) {
		t.Errorf("grandTotal = %s, want 344", resp.GrandTotal)
	}
	if resp.Status != string(domain.StatusPending) {
		t.Errorf("status = %q, want pending", resp.Status)
	}
	if _, err := orders.GetByID(context.Background(), resp.ID); err != nil {
		t.Errorf("order not persisted: %v", err)
	}
}

func TestCreateOrderEndpointBadPayment(t *testing.T) {
	r, _, _ := testFixture(t)

	w := doJSON(t, r, nethttp.MethodPost, "/v1/orders", gin.H{
		"restaurantId": "r1",
		"customerId":   "c1",
		"items":        []gin.H{{"menuItemId": "m1", "quantity": 1}},
		"paymentType":  "BARTER",
	})
	if w.Code != nethttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCreateOrderEndpointUnknownItem(t *testing.T) {
	r, _, _ := testFixture(t)

	w := doJSON(t, r, nethttp.MethodPost, "/v1/orders", gin.H{
		"restaurantId": "r1",
		"customerId":   "c1",
		"items":        []gin.H{{"menuItemId": "ghost", "quantity": 1}},
		"paymentType":  "COD",
	})
	if w.Code != nethttp.StatusNotFound {
		t.Fatalf("status = %d, want 404, body = %s", w.Code, w.Body.String())
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	r, orders, _ := testFixture(t)
	_ = orders.Create(context.Background(), &domain.Order{ID: "o1", Status: domain.StatusPending})

	w := doJSON(t, r, nethttp.MethodPatch, "/v1/orders/o1/status", gin.H{"status": "preparing"})
	if w.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	o, _ := orders.GetByID(context.Background(), "o1")
	if o.Status != domain.StatusPreparing {
		t.Errorf("persisted status = %s, want preparing", o.Status)
	}
}

func TestUpdateStatusEndpointIllegal(t *testing.T) {
	r, orders, _ := testFixture(t)
	_ = orders.Create(context.Background(), &domain.Order{ID: "o1", Status: domain.StatusDispatch})

	w := doJSON(t, r, nethttp.MethodPatch, "/v1/orders/o1/status", gin.H{"status": "rejected"})
	if w.Code != nethttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}

	o, _ := orders.GetByID(context.Background(), "o1")
	if o.Status != domain.StatusDispatch {
		t.Errorf("status changed on illegal transition: %s", o.Status)
	}
}

func TestGetOrderStatusCacheFallback(t *testing.T) {
	r, orders, statusCache := testFixture(t)
	_ = orders.Create(context.Background(), &domain.Order{ID: "o1", Status: domain.StatusReady})

	// miss falls through to the repo and backfills
	w := doJSON(t, r, nethttp.MethodGet, "/v1/orders/o1/status", nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "ready" {
		t.Errorf("status = %q, want ready", resp.Status)
	}
	if s, ok := statusCache.statuses["o1"]; !ok || s != domain.StatusReady {
		t.Errorf("cache not backfilled, got %q ok=%v", s, ok)
	}

	// a later hit is served from the cache even if the repo moved on
	statusCache.statuses["o1"] = domain.StatusDispatch
	w = doJSON(t, r, nethttp.MethodGet, "/v1/orders/o1/status", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "dispatch" {
		t.Errorf("status = %q, want dispatch from cache", resp.Status)
	}
}
