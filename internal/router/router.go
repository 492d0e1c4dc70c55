// Package router wires the HTTP surface: public catalog browsing,
// authenticated booking operations and admin capacity management.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rihlago/tourism-booking/internal/config"
	"github.com/rihlago/tourism-booking/internal/handler"
	"github.com/rihlago/tourism-booking/internal/middleware"
	"github.com/rihlago/tourism-booking/internal/model"
)

// Deps carries everything route registration needs.  Redis is optional:
// when nil, the cache and rate-limit middleware are skipped entirely.
type Deps struct {
	Bookings  *handler.BookingHandler
	Browse    *handler.BrowseHandler
	Admin     *handler.AdminHandler
	JWTSecret string
	Redis     *redis.Client
}

// Register mounts all routes on the given Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	public := e.Group("/v1")
	if d.Redis != nil {
		public.Use(middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis))
	}
	public.GET("/events", d.Browse.List(model.KindEvent))
	public.GET("/events/:id", d.Browse.Get(model.KindEvent))
	public.GET("/tours", d.Browse.List(model.KindTour))
	public.GET("/tours/:id", d.Browse.Get(model.KindTour))
	public.GET("/dining", d.Browse.List(model.KindDining))
	public.GET("/dining/:id", d.Browse.Get(model.KindDining))

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(d.JWTSecret))
	if d.Redis != nil {
		auth.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis))
	}
	auth.POST("/bookings", d.Bookings.Create)
	auth.POST("/checkout", d.Bookings.Checkout)
	auth.POST("/bookings/:id/confirm", d.Bookings.Confirm)
	auth.GET("/bookings", d.Bookings.List)
	auth.GET("/bookings/:id", d.Bookings.Get)

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole("OWNER"))
	admin.PATCH("/:kind/:id/capacity", d.Admin.UpdateCapacity)

	auth.POST("/bookings/:id/fail", d.Bookings.Fail, middleware.RequireRole("OWNER"))
}
