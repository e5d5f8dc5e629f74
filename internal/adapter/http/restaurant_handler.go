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

type RestaurantHandler struct {
	restaurants usecase.RestaurantRepo
}

func NewRestaurantHandler(restaurants usecase.RestaurantRepo) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants}
}

type restaurantReq struct {
	Name     string           `json:"name" binding:"required"`
	Mobile   string           `json:"mobile" binding:"required"`
	Email    string           `json:"email" binding:"required,email"`
	Cuisines string           `json:"cuisines"`
	Hours    json.RawMessage  `json:"hours"`
	Address  json.RawMessage  `json:"address"`
	TaxRate  *decimal.Decimal `json:"taxRate"`
}

type restaurantResp struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Mobile   string           `json:"mobile"`
	Email    string           `json:"email"`
	Cuisines string           `json:"cuisines,omitempty"`
	Hours    json.RawMessage  `json:"hours,omitempty"`
	Address  json.RawMessage  `json:"address,omitempty"`
	Approved bool             `json:"approved"`
	TaxRate  *decimal.Decimal `json:"taxRate,omitempty"`
}

func toRestaurantResp(r *domain.Restaurant) restaurantResp {
	return restaurantResp{
		ID:       r.ID,
		Name:     r.Name,
		Mobile:   r.Mobile,
		Email:    r.Email,
		Cuisines: r.Cuisines,
		Hours:    r.Hours,
		Address:  r.Address,
		Approved: r.Approved,
		TaxRate:  r.TaxRate,
	}
}

// Register creates a restaurant in unapproved state. Mobile and email
// must both be unused.
func (h *RestaurantHandler) Register(c *gin.Context) {
	var req restaurantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	existing, err := h.restaurants.GetByMobileOrEmail(ctx, req.Mobile, req.Email)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "detail": "mobile or email already registered"})
		return
	}

	r := &domain.Restaurant{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Mobile:   req.Mobile,
		Email:    req.Email,
		Cuisines: req.Cuisines,
		Hours:    req.Hours,
		Address:  req.Address,
		Approved: false,
		TaxRate:  req.TaxRate,
	}
	if err := h.restaurants.Create(ctx, r); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRestaurantResp(r))
}

func (h *RestaurantHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	r, err := h.restaurants.GetByID(ctx, c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRestaurantResp(r))
}

func (h *RestaurantHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	rs, err := h.restaurants.List(ctx)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]restaurantResp, len(rs))
	for i := range rs {
		out[i] = toRestaurantResp(&rs[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *RestaurantHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if sub := middleware.Subject(c); sub != "" && sub != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "detail": "not your restaurant"})
		return
	}

	var req restaurantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	r, err := h.restaurants.GetByID(ctx, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	r.Name = req.Name
	r.Mobile = req.Mobile
	r.Email = req.Email
	r.Cuisines = req.Cuisines
	r.Hours = req.Hours
	r.Address = req.Address
	r.TaxRate = req.TaxRate

	if err := h.restaurants.Update(ctx, r); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRestaurantResp(r))
}

type approvalReq struct {
	Approved *bool `json:"approved" binding:"required"`
}

// SetApproval flips a restaurant's approval flag. Admin only; the route
// guard enforces the permission.
func (h *RestaurantHandler) SetApproval(c *gin.Context) {
	var req approvalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.restaurants.SetApproval(ctx, c.Param("id"), *req.Approved); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "approved": *req.Approved})
}

func (h *RestaurantHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.restaurants.Delete(ctx, c.Param("id")); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
