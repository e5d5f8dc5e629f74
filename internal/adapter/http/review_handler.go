package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/adapter/http/middleware"
	"github.com/feastly/delivery-api/internal/usecase"
)

type ReviewHandler struct {
	reviews usecase.ReviewRepo
	orders  usecase.OrderRepo
}

func NewReviewHandler(reviews usecase.ReviewRepo, orders usecase.OrderRepo) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, orders: orders}
}

type createReviewReq struct {
	OrderID    string `json:"orderId" binding:"required"`
	ReviewText string `json:"reviewText" binding:"required"`
}

type updateReviewReq struct {
	ReviewText string `json:"reviewText" binding:"required"`
}

type reviewResp struct {
	ID                string    `json:"id"`
	OrderID           string    `json:"orderId"`
	CustomerID        string    `json:"customerId"`
	RestaurantID      string    `json:"restaurantId"`
	DeliveryPartnerID *string   `json:"deliveryPartnerId,omitempty"`
	ReviewText        string    `json:"reviewText"`
	CreatedAt         time.Time `json:"createdAt"`
}

func toReviewResp(r *domain.OrderReview) reviewResp {
	return reviewResp{
		ID:                r.ID,
		OrderID:           r.OrderID,
		CustomerID:        r.CustomerID,
		RestaurantID:      r.RestaurantID,
		DeliveryPartnerID: r.DeliveryPartnerID,
		ReviewText:        r.ReviewText,
		CreatedAt:         r.CreatedAt,
	}
}

// Create posts a review for a delivered order. One review per order;
// only the customer who placed the order may write it.
func (h *ReviewHandler) Create(c *gin.Context) {
	var req createReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	order, err := h.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if sub := middleware.Subject(c); sub != "" && sub != order.CustomerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "detail": "not your order"})
		return
	}
	if order.Status != domain.StatusDelivered {
		writeDomainError(c, &domain.InvalidInputError{Reason: "order not delivered yet"})
		return
	}

	existing, err := h.reviews.GetByOrder(ctx, req.OrderID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "detail": "order already reviewed"})
		return
	}

	review := &domain.OrderReview{
		ID:                uuid.NewString(),
		OrderID:           order.ID,
		CustomerID:        order.CustomerID,
		RestaurantID:      order.RestaurantID,
		DeliveryPartnerID: order.DeliveryPartnerID,
		ReviewText:        req.ReviewText,
		CreatedAt:         time.Now().UTC(),
	}
	if err := h.reviews.Create(ctx, review); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReviewResp(review))
}

func (h *ReviewHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	review, err := h.reviews.GetByID(ctx, c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResp(review))
}

func (h *ReviewHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	reviews, err := h.reviews.List(ctx)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]reviewResp, len(reviews))
	for i := range reviews {
		out[i] = toReviewResp(&reviews[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	var req updateReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	review, err := h.reviews.GetByID(ctx, c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if sub := middleware.Subject(c); sub != "" && sub != review.CustomerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "detail": "not your review"})
		return
	}

	review.ReviewText = req.ReviewText
	if err := h.reviews.Update(ctx, review); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResp(review))
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	review, err := h.reviews.GetByID(ctx, c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if sub := middleware.Subject(c); sub != "" && sub != review.CustomerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "detail": "not your review"})
		return
	}

	if err := h.reviews.Delete(ctx, review.ID); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
