package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/adapter/http/middleware"
	"github.com/feastly/delivery-api/internal/usecase"
)

type OrderHandler struct {
	create *usecase.CreateOrder
	status *usecase.UpdateOrderStatus
	query  usecase.OrderRepo
	cache  usecase.OrderCache
}

func NewOrderHandler(create *usecase.CreateOrder, status *usecase.UpdateOrderStatus,
	query usecase.OrderRepo, cache usecase.OrderCache) *OrderHandler {
	return &OrderHandler{create: create, status: status, query: query, cache: cache}
}

type lineItemReq struct {
	MenuItemID string          `json:"menuItemId" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required,gte=1"`
	Addons     json.RawMessage `json:"addons"`
}

type createOrderReq struct {
	RestaurantID  string          `json:"restaurantId" binding:"required"`
	CustomerID    string          `json:"customerId" binding:"required"`
	Items         []lineItemReq   `json:"items" binding:"required,min=1,dive"`
	PaymentType   string          `json:"paymentType" binding:"required"`
	CustomerNotes string          `json:"customerNotes"`
	Address       string          `json:"address"`
	DistanceKm    decimal.Decimal `json:"distanceKm"`
}

type pricedLineItemResp struct {
	MenuItemID string          `json:"menuItemId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
	Addons     json.RawMessage `json:"addons,omitempty"`
}

type orderResp struct {
	ID                string               `json:"id"`
	RestaurantID      string               `json:"restaurantId"`
	CustomerID        string               `json:"customerId"`
	Items             []pricedLineItemResp `json:"items"`
	ItemsAmount       decimal.Decimal      `json:"itemsAmount"`
	Tax               decimal.Decimal      `json:"tax"`
	DeliveryFee       decimal.Decimal      `json:"deliveryFee"`
	GrandTotal        decimal.Decimal      `json:"grandTotal"`
	Status            string               `json:"status"`
	PaymentType       string               `json:"paymentType"`
	CustomerNotes     string               `json:"customerNotes,omitempty"`
	Address           string               `json:"address,omitempty"`
	DistanceKm        decimal.Decimal      `json:"distanceKm"`
	DeliveryPartnerID *string              `json:"deliveryPartnerId,omitempty"`
	PlacedAt          time.Time            `json:"placedAt"`
}

func toOrderResp(o *domain.Order) orderResp {
	items := make([]pricedLineItemResp, len(o.Items))
	for i, it := range o.Items {
		items[i] = pricedLineItemResp{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			LineTotal:  it.LineTotal,
			Addons:     it.Addons,
		}
	}
	return orderResp{
		ID:                o.ID,
		RestaurantID:      o.RestaurantID,
		CustomerID:        o.CustomerID,
		Items:             items,
		ItemsAmount:       o.Totals.ItemsAmount,
		Tax:               o.Totals.Tax,
		DeliveryFee:       o.Totals.DeliveryFee,
		GrandTotal:        o.Totals.GrandTotal,
		Status:            string(o.Status),
		PaymentType:       string(o.PaymentType),
		CustomerNotes:     o.CustomerNotes,
		Address:           o.Address,
		DistanceKm:        o.DistanceKm,
		DeliveryPartnerID: o.DeliveryPartnerID,
		PlacedAt:          o.PlacedAt,
	}
}

func toOrderListResp(orders []domain.Order) []orderResp {
	out := make([]orderResp, len(orders))
	for i := range orders {
		out[i] = toOrderResp(&orders[i])
	}
	return out
}

// CreateOrder prices the cart and persists the order as pending.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	payment, err := domain.ParsePaymentType(req.PaymentType)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	items := make([]domain.LineItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.LineItemRequest{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			Addons:     it.Addons,
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.create.Execute(ctx, usecase.CreateOrderInput{
		RestaurantID:   req.RestaurantID,
		CustomerID:     req.CustomerID,
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
		Items:          items,
		PaymentType:    payment,
		CustomerNotes:  req.CustomerNotes,
		Address:        req.Address,
		DistanceKm:     req.DistanceKm,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResp(order))
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	order, err := h.query.GetByID(ctx, c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

// GetOrderStatus serves the tracking poll from the cache when possible.
func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if h.cache != nil {
		if s, ok, err := h.cache.GetStatus(ctx, id); err == nil && ok {
			c.JSON(http.StatusOK, gin.H{"orderId": id, "status": string(s)})
			return
		}
	}

	order, err := h.query.GetByID(ctx, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if h.cache != nil {
		_ = h.cache.SetStatus(ctx, id, order.Status)
	}
	c.JSON(http.StatusOK, gin.H{"orderId": id, "status": string(order.Status)})
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus applies a lifecycle transition.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	requested, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	order, err := h.status.Execute(ctx, c.Param("id"), requested)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	middleware.CountTransition(string(order.Status))
	c.JSON(http.StatusOK, toOrderResp(order))
}

// ListActive returns all live orders across restaurants (ops view).
func (h *OrderHandler) ListActive(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.query.ListActive(ctx)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderListResp(orders))
}

func (h *OrderHandler) ListCustomerOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.query.ListByCustomer(ctx, c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderListResp(orders))
}

func (h *OrderHandler) ListRestaurantOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.query.ListActiveByRestaurant(ctx, c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderListResp(orders))
}

// RestaurantOrderHistory is the paginated archival view. Restaurants can
// only read their own history.
func (h *OrderHandler) RestaurantOrderHistory(c *gin.Context) {
	restaurantID := c.Param("id")
	if sub := middleware.Subject(c); sub != "" && sub != restaurantID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "detail": "not your restaurant"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.query.ListHistoryByRestaurant(ctx, restaurantID, usecase.HistoryPage{Page: page, Limit: limit})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "limit": limit, "orders": toOrderListResp(orders)})
}
