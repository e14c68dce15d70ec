package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/config"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/handler"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/middleware"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/model"
)

// Handlers bundles every handler the router mounts, so main wires the
// dependency graph once and hands it over in one piece.
type Handlers struct {
	Auth     *handler.AuthHandler
	Cars     *handler.CarHandler
	Bookings *handler.BookingHandler
	Payments *handler.PaymentHandler
	Webhooks *handler.WebhookHandler
	Admin    *handler.AdminBookingHandler
}

// Register mounts all application routes on e.
//
// Route map:
//
//	public     /healthz, /api/cars, /api/bookings/availability,
//	           /api/auth/*, /api/webhooks/stripe
//	user       /api/bookings*, /api/payments/*, /api/auth/me
//	admin      /api/admin/*, car catalog writes, status override
//
// The webhook route is deliberately outside every auth group: the
// processor authenticates with its signature header, not a JWT.
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)

	api := e.Group("/api", limiter)

	// Authentication.
	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/admin/login", h.Auth.AdminLogin)

	// Public catalog and availability, cached since they are read-heavy.
	api.GET("/cars", h.Cars.List, cache)
	api.GET("/cars/:id", h.Cars.Get, cache)
	api.GET("/bookings/availability", h.Bookings.Availability)

	// Processor webhook: signature-verified, never JWT-guarded.
	api.POST("/webhooks/stripe", h.Webhooks.Handle)

	// Authenticated customer surface.
	user := api.Group("", middleware.JWTAuth(cfg.JWTSecret))
	user.GET("/auth/me", h.Auth.Me)
	user.POST("/bookings", h.Bookings.Create)
	user.GET("/bookings", h.Bookings.List)
	user.GET("/bookings/:id", h.Bookings.Get)
	user.DELETE("/bookings/:id", h.Bookings.Cancel)
	user.POST("/bookings/:id/mock-pay", h.Payments.MockPay)
	user.POST("/payments/intent", h.Payments.CreateIntent)
	user.POST("/payments/capture", h.Payments.Capture)

	// Admin surface.
	admin := api.Group("", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole(model.RoleAdmin))
	admin.POST("/auth/admin/register", h.Auth.RegisterAdmin)
	admin.GET("/admin/bookings", h.Admin.ListAll)
	admin.DELETE("/admin/bookings/:id", h.Admin.Delete)
	admin.PUT("/bookings/:id/status", h.Admin.SetStatus)
	admin.POST("/cars", h.Cars.Create)
	admin.PUT("/cars/:id", h.Cars.Update)
	admin.DELETE("/cars/:id", h.Cars.Delete)
}
