package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"testing"

	"github.com/gin-gonic/gin"

	domain "github.com/feastly/delivery-api/internal/entity"
)

func menuFixture(t *testing.T) (*gin.Engine, *memMenuRepo) {
	t.Helper()

	menu := &memMenuRepo{items: map[string]*domain.MenuItem{
		"m1": {ID: "m1", RestaurantID: "r1", Name: "Paneer Wrap", Price: dec("120")},
	}}
	h := NewMenuHandler(menu)

	r := gin.New()
	r.POST("/v1/restaurants/:id/menu", h.Create)
	r.PUT("/v1/restaurants/:id/menu/:itemId", h.Update)
	r.GET("/v1/restaurants/:id/menu", h.ListByRestaurant)
	return r, menu
}

func TestCreateMenuItem(t *testing.T) {
	r, menu := menuFixture(t)

	w := doJSON(t, r, nethttp.MethodPost, "/v1/restaurants/r1/menu", gin.H{
		"name":            "Lassi",
		"price":           "40",
		"discountedPrice": "35",
	})
	if w.Code != nethttp.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp menuItemResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	item, err := menu.GetByID(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("item not persisted: %v", err)
	}
	if item.DiscountedPrice == nil || !item.DiscountedPrice.Equal(dec("35")) {
		t.Errorf("discountedPrice = %v, want 35", item.DiscountedPrice)
	}
}

func TestCreateMenuItemDiscountAbovePrice(t *testing.T) {
	r, menu := menuFixture(t)

	w := doJSON(t, r, nethttp.MethodPost, "/v1/restaurants/r1/menu", gin.H{
		"name":            "Lassi",
		"price":           "40",
		"discountedPrice": "55",
	})
	if w.Code != nethttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}

	items, _ := menu.ListByRestaurant(context.Background(), "r1")
	if len(items) != 1 {
		t.Errorf("item persisted despite invalid discount, have %d items", len(items))
	}
}

func TestUpdateMenuItemDiscountAbovePrice(t *testing.T) {
	r, menu := menuFixture(t)

	w := doJSON(t, r, nethttp.MethodPut, "/v1/restaurants/r1/menu/m1", gin.H{
		"name":            "Paneer Wrap",
		"price":           "120",
		"discountedPrice": "150",
	})
	if w.Code != nethttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}

	item, _ := menu.GetByID(context.Background(), "m1")
	if item.DiscountedPrice != nil {
		t.Errorf("discount written despite invalid value: %v", item.DiscountedPrice)
	}
}

func TestCreateMenuItemNegativePrice(t *testing.T) {
	r, _ := menuFixture(t)

	w := doJSON(t, r, nethttp.MethodPost, "/v1/restaurants/r1/menu", gin.H{
		"name":  "Lassi",
		"price": "-5",
	})
	if w.Code != nethttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
