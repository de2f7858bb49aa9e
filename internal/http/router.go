// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"freshfold/internal/http/handlers"
	"freshfold/internal/http/middleware"
	"freshfold/internal/infra"
	"freshfold/internal/modules/order"
	"freshfold/internal/modules/payment"
	"freshfold/internal/modules/user"
)

type RouterDeps struct {
	Users    *user.Service
	Orders   *order.Service
	Payments *payment.Service
	Verifier infra.TokenVerifier
	// RateLimit is optional; nil disables throttling (tests, local runs).
	RateLimit      gin.HandlerFunc
	AllowedOrigins []string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(deps.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = deps.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowOrigins = nil
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Webhook route stays outside the authenticated group: the processor
	// signs the raw body, and its delivery rate must not be throttled.
	webhookHandler := handlers.NewWebhookHandler(deps.Payments)
	r.POST("/api/webhooks/stripe", webhookHandler.Stripe)

	pricingHandler := handlers.NewPricingHandler()
	r.GET("/api/pricing/quote", pricingHandler.Quote)
	r.GET("/api/pricing/rates", pricingHandler.Rates)

	api := r.Group("/api", middleware.Auth(deps.Verifier))
	if deps.RateLimit != nil {
		api.Use(deps.RateLimit)
	}

	userHandler := handlers.NewUserHandler(deps.Users)
	api.GET("/users/me", userHandler.Me)
	api.PUT("/users/me", userHandler.Upsert)
	api.POST("/users/me/addresses", userHandler.AddAddress)
	api.DELETE("/users/me/addresses/:index", userHandler.RemoveAddress)

	orderHandler := handlers.NewOrderHandler(deps.Orders)
	api.POST("/orders", orderHandler.Create)
	api.GET("/orders", orderHandler.List)
	api.GET("/orders/:id", orderHandler.Get)
	api.POST("/orders/:id/cancel", orderHandler.Cancel)
	api.PUT("/orders/:id/status", orderHandler.UpdateStatus)
	api.PUT("/orders/:id/location", orderHandler.UpdateLocation)

	paymentHandler := handlers.NewPaymentHandler(deps.Payments)
	api.POST("/payments/charge", paymentHandler.Charge)
	api.GET("/payments", paymentHandler.List)
	api.GET("/payments/order/:id", paymentHandler.GetByOrder)

	return r
}
