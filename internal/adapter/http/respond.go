package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/usecase"
)

// writeDomainError maps engine errors onto HTTP statuses. Transition
// errors surface both sides so the client can reconcile its view.
func writeDomainError(c *gin.Context, err error) {
	var (
		nf  *domain.NotFoundError
		inv *domain.InvalidInputError
		ite *domain.IllegalTransitionError
	)
	switch {
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "detail": nf.Error()})
	case errors.As(err, &inv):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "detail": inv.Error()})
	case errors.As(err, &ite):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "illegal_transition",
			"detail":    ite.Error(),
			"current":   string(ite.From),
			"requested": string(ite.To),
		})
	case errors.Is(err, usecase.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_request"})
	case errors.Is(err, usecase.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "detail": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}
