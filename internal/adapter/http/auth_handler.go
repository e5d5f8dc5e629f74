package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/feastly/delivery-api/configs"
	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/logging"
	"github.com/feastly/delivery-api/internal/security"
	"github.com/feastly/delivery-api/internal/usecase"
)

// AuthHandler covers customer email/password auth and restaurant OTP
// login. Codes live in the OTP store with a TTL; nothing is kept in
// process memory.
type AuthHandler struct {
	cfg         configs.Config
	customers   usecase.CustomerRepo
	restaurants usecase.RestaurantRepo
	otp         usecase.OTPStore
}

func NewAuthHandler(cfg configs.Config, customers usecase.CustomerRepo,
	restaurants usecase.RestaurantRepo, otp usecase.OTPStore) *AuthHandler {
	return &AuthHandler{cfg: cfg, customers: customers, restaurants: restaurants, otp: otp}
}

type registerReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type otpRequestReq struct {
	Mobile string `json:"mobile" binding:"required"`
}

type otpVerifyReq struct {
	Mobile string `json:"mobile" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

// Register creates a customer account. Email must be unused.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	existing, err := h.customers.GetByEmail(ctx, req.Email)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "detail": "email already registered"})
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	cust := &domain.Customer{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
		PasswordHash: hash,
	}
	if err := h.customers.Create(ctx, cust); err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": cust.ID, "email": cust.Email, "name": cust.Name})
}

// Login exchanges email+password for a customer JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	cust, err := h.customers.GetByEmail(ctx, req.Email)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if cust == nil || !security.CheckPassword(cust.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	h.issueToken(c, cust.ID, "customer", []string{"orders.read", "orders.write", "reviews.write"})
}

// RequestOTP generates a login code for a registered restaurant mobile.
// Delivery is out of band; the code only ever lives in the store.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req otpRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	r, err := h.restaurants.GetByMobileOrEmail(ctx, req.Mobile, "")
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if r == nil {
		writeDomainError(c, &domain.NotFoundError{Kind: "restaurant", ID: req.Mobile})
		return
	}

	code, err := security.GenerateOTP()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	if err := h.otp.Put(ctx, req.Mobile, code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	logging.FromCtx(ctx).Info("otp issued", "mobile", req.Mobile)
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// VerifyOTP checks the code and issues a restaurant JWT. Codes are
// single use.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req otpVerifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	expected, ok, err := h.otp.Get(ctx, req.Mobile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	if !ok || !security.VerifyOTP(expected, req.Code) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_otp"})
		return
	}
	_ = h.otp.Delete(ctx, req.Mobile)

	r, err := h.restaurants.GetByMobileOrEmail(ctx, req.Mobile, "")
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if r == nil {
		writeDomainError(c, &domain.NotFoundError{Kind: "restaurant", ID: req.Mobile})
		return
	}

	h.issueToken(c, r.ID, "restaurant", []string{"orders.read", "orders.write", "menu.write"})
}

func (h *AuthHandler) issueToken(c *gin.Context, sub, role string, perms []string) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   h.cfg.Security.Issuer,
		"aud":   h.cfg.Security.Audience,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(h.cfg.Security.TTL).Unix(),
		"sub":   sub,
		"role":  role,
		"perms": perms,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.Security.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": signed,
		"token_type":   "Bearer",
		"expires_in":   int(h.cfg.Security.TTL.Seconds()),
	})
}
