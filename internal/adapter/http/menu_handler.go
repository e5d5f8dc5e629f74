package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/adapter/http/middleware"
	"github.com/feastly/delivery-api/internal/usecase"
)

type MenuHandler struct {
	menu usecase.MenuRepo
}

func NewMenuHandler(menu usecase.MenuRepo) *MenuHandler {
	return &MenuHandler{menu: menu}
}

type menuItemReq struct {
	Name             string           `json:"name" binding:"required"`
	Description      string           `json:"description"`
	Price            decimal.Decimal  `json:"price" binding:"required"`
	DiscountedPrice  *decimal.Decimal `json:"discountedPrice"`
	IsVeg            bool             `json:"isVeg"`
	PackagingCharges decimal.Decimal  `json:"packagingCharges"`
	Cuisine          string           `json:"cuisine"`
	ImageURL         string           `json:"imageUrl"`
	Addons           json.RawMessage  `json:"addons"`
}

type menuItemResp struct {
	ID               string           `json:"id"`
	RestaurantID     string           `json:"restaurantId"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	Price            decimal.Decimal  `json:"price"`
	DiscountedPrice  *decimal.Decimal `json:"discountedPrice,omitempty"`
	IsVeg            bool             `json:"isVeg"`
	PackagingCharges decimal.Decimal  `json:"packagingCharges"`
	Cuisine          string           `json:"cuisine,omitempty"`
	ImageURL         string           `json:"imageUrl,omitempty"`
	Addons           json.RawMessage  `json:"addons,omitempty"`
}

func toMenuItemResp(m *domain.MenuItem) menuItemResp {
	return menuItemResp{
		ID:               m.ID,
		RestaurantID:     m.RestaurantID,
		Name:             m.Name,
		Description:      m.Description,
		Price:            m.Price,
		DiscountedPrice:  m.DiscountedPrice,
		IsVeg:            m.IsVeg,
		PackagingCharges: m.PackagingCharges,
		Cuisine:          m.Cuisine,
		ImageURL:         m.ImageURL,
		Addons:           m.Addons,
	}
}

func (req *menuItemReq) validate() error {
	if req.Price.IsNegative() {
		return &domain.InvalidInputError{Reason: "price must not be negative"}
	}
	if req.DiscountedPrice != nil {
		if req.DiscountedPrice.IsNegative() {
			return &domain.InvalidInputError{Reason: "discountedPrice must not be negative"}
		}
		if req.DiscountedPrice.GreaterThan(req.Price) {
			return &domain.InvalidInputError{Reason: "discountedPrice must not exceed price"}
		}
	}
	return nil
}

// Create adds a menu item to a restaurant's catalog. Restaurants can
// only write their own menu.
func (h *MenuHandler) Create(c *gin.Context) {
	restaurantID := c.Param("id")
	if sub := middleware.Subject(c); sub != "" && sub != restaurantID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "detail": "not your restaurant"})
		return
	}

	var req menuItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		writeDomainError(c, err)
		return
	}

	item := &domain.MenuItem{
		ID:               uuid.NewString(),
		RestaurantID:     restaurantID,
		Name:             req.Name,
		Description:      req.Description,
		Price:            req.Price,
		DiscountedPrice:  req.DiscountedPrice,
		IsVeg:            req.IsVeg,
		PackagingCharges: req.PackagingCharges,
		Cuisine:          req.Cuisine,
		ImageURL:         req.ImageURL,
		Addons:           req.Addons,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.menu.Create(ctx, item); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMenuItemResp(item))
}

func (h *MenuHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	item, err := h.menu.GetByID(ctx, c.Param("itemId"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMenuItemResp(item))
}

func (h *MenuHandler) ListByRestaurant(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.menu.ListByRestaurant(ctx, c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]menuItemResp, len(items))
	for i := range items {
		out[i] = toMenuItemResp(&items[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *MenuHandler) Update(c *gin.Context) {
	restaurantID := c.Param("id")
	if sub := middleware.Subject(c); sub != "" && sub != restaurantID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "detail": "not your restaurant"})
		return
	}

	var req menuItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		writeDomainError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	item, err := h.menu.GetByID(ctx, c.Param("itemId"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if item.RestaurantID != restaurantID {
		writeDomainError(c, &domain.NotFoundError{Kind: "menu item", ID: item.ID})
		return
	}

	item.Name = req.Name
	item.Description = req.Description
	item.Price = req.Price
	item.DiscountedPrice = req.DiscountedPrice
	item.IsVeg = req.IsVeg
	item.PackagingCharges = req.PackagingCharges
	item.Cuisine = req.Cuisine
	item.ImageURL = req.ImageURL
	item.Addons = req.Addons

	if err := h.menu.Update(ctx, item); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMenuItemResp(item))
}

func (h *MenuHandler) Delete(c *gin.Context) {
	restaurantID := c.Param("id")
	if sub := middleware.Subject(c); sub != "" && sub != restaurantID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "detail": "not your restaurant"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	item, err := h.menu.GetByID(ctx, c.Param("itemId"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if item.RestaurantID != restaurantID {
		writeDomainError(c, &domain.NotFoundError{Kind: "menu item", ID: item.ID})
		return
	}

	if err := h.menu.Delete(ctx, item.ID); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
