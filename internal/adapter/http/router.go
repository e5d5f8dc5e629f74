package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feastly/delivery-api/internal/adapter/http/middleware"
	"github.com/feastly/delivery-api/internal/logging"
)

type Handlers struct {
	Orders      *OrderHandler
	Menu        *MenuHandler
	Restaurants *RestaurantHandler
	Reviews     *ReviewHandler
	Auth        *AuthHandler
	Token       *TokenHandler
}

func NewRouter(h Handlers, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		logging.From(c).Info("health check")
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/v1/token", h.Token.IssueToken)

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/otp/request", h.Auth.RequestOTP)
			auth.POST("/otp/verify", h.Auth.VerifyOTP)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", authz.Require("orders.write"), h.Orders.CreateOrder)
			orders.GET("", authz.Require("orders.read"), h.Orders.ListActive)
			orders.GET("/:id", authz.Require("orders.read"), h.Orders.GetOrderByID)
			orders.GET("/:id/status", authz.Require("orders.read"), h.Orders.GetOrderStatus)
			orders.PATCH("/:id/status", authz.Require("orders.write"), h.Orders.UpdateStatus)
		}

		v1.GET("/customers/:id/orders", authz.Require("orders.read"), h.Orders.ListCustomerOrders)

		restaurants := v1.Group("/restaurants")
		{
			restaurants.POST("", h.Restaurants.Register)
			restaurants.GET("", h.Restaurants.List)
			restaurants.GET("/:id", h.Restaurants.Get)
			restaurants.PUT("/:id", authz.Require("orders.write"), h.Restaurants.Update)
			restaurants.PATCH("/:id/approval", authz.Require("restaurants.admin"), h.Restaurants.SetApproval)
			restaurants.DELETE("/:id", authz.Require("restaurants.admin"), h.Restaurants.Delete)

			restaurants.GET("/:id/orders", authz.Require("orders.read"), h.Orders.ListRestaurantOrders)
			restaurants.GET("/:id/orders/history", authz.Require("orders.read"), h.Orders.RestaurantOrderHistory)

			restaurants.GET("/:id/menu", h.Menu.ListByRestaurant)
			restaurants.GET("/:id/menu/:itemId", h.Menu.Get)
			restaurants.POST("/:id/menu", authz.Require("menu.write"), h.Menu.Create)
			restaurants.PUT("/:id/menu/:itemId", authz.Require("menu.write"), h.Menu.Update)
			restaurants.DELETE("/:id/menu/:itemId", authz.Require("menu.write"), h.Menu.Delete)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.POST("", authz.Require("reviews.write"), h.Reviews.Create)
			reviews.GET("", h.Reviews.List)
			reviews.GET("/:id", h.Reviews.Get)
			reviews.PUT("/:id", authz.Require("reviews.write"), h.Reviews.Update)
			reviews.DELETE("/:id", authz.Require("reviews.write"), h.Reviews.Delete)
		}
	}

	return r
}
