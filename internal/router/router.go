// Package router wires handlers and middleware to the /api route tree.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/bdticketpro/backoffice/internal/auth"
	"github.com/bdticketpro/backoffice/internal/config"
	"github.com/bdticketpro/backoffice/internal/handler"
	"github.com/bdticketpro/backoffice/internal/middleware"
	"github.com/bdticketpro/backoffice/internal/repository"
)

// Handlers groups everything the router needs to register the API.
type Handlers struct {
	Auth      *handler.AuthHandler
	Tickets   *handler.TicketHandler
	Batches   *handler.BatchHandler
	Bookings  *handler.BookingHandler
	Users     *handler.UserHandler
	Settings  *handler.SettingsHandler
	Reference *handler.ReferenceHandler
}

// Register mounts all routes under /api. The login and ping endpoints
// are open; everything else requires a valid bearer token, with
// per-route permission gates on top.
func Register(e *echo.Echo, h Handlers, userRepo *repository.UserRepo,
	jwtSecret string, log *logrus.Logger, rlCfg config.RateLimitConfig, rdb *redis.Client) {

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	api := e.Group("/api")

	// The limiter keys on the authenticated user, so it sits after
	// JWTAuth on the main group; the open endpoints get their own
	// IP-keyed instance.
	rl := middleware.RateLimit(rlCfg, rdb)
	api.GET("/ping", handler.Ping, rl)
	api.POST("/auth/login", h.Auth.Login, rl)

	authed := api.Group("", middleware.JWTAuth(jwtSecret, userRepo), rl)

	authed.GET("/auth/me", h.Auth.Me)
	authed.POST("/auth/logout", h.Auth.Logout)

	authed.GET("/countries", h.Reference.ListCountries)
	authed.GET("/airlines", h.Reference.ListAirlines)

	tickets := authed.Group("/tickets")
	tickets.GET("", h.Tickets.List)
	// Static segments must be registered before /:id so Echo does not
	// shadow them.
	tickets.GET("/dashboard/stats", h.Tickets.DashboardStats)
	tickets.GET("/countries/stats", h.Tickets.CountryStats)
	tickets.GET("/country/:countryCode", h.Tickets.ListByCountry)
	tickets.GET("/:id", h.Tickets.Get)
	tickets.PATCH("/:id/status", h.Tickets.UpdateStatus)

	batches := authed.Group("/ticket-batches")
	batches.GET("", h.Batches.List, middleware.RequirePermission(auth.PermViewProfit))
	batches.GET("/:id", h.Batches.Get, middleware.RequirePermission(auth.PermViewProfit))
	batches.POST("", h.Batches.Create, middleware.RequirePermission(auth.PermCreateBatches))
	batches.PUT("/:id", h.Batches.Update, middleware.RequirePermission(auth.PermEditBatches))
	batches.DELETE("/:id", h.Batches.Delete, middleware.RequirePermission(auth.PermDeleteBatches))

	bookings := authed.Group("/bookings")
	bookings.GET("", h.Bookings.List)
	bookings.GET("/:id", h.Bookings.Get)
	// Creation is open to every authenticated role; admins do not carry
	// create_bookings but may still book on behalf of agents.
	bookings.POST("", h.Bookings.Create)
	bookings.PATCH("/:id/status", h.Bookings.UpdateStatus)
	bookings.DELETE("/:id", h.Bookings.Cancel)

	users := authed.Group("/users")
	users.PUT("/profile/me", h.Users.UpdateProfile)
	users.PUT("/profile/password", h.Users.UpdatePassword)
	users.GET("", h.Users.List, middleware.RequirePermission(auth.PermManageUsers))
	users.GET("/:id", h.Users.Get, middleware.RequirePermission(auth.PermManageUsers))
	users.POST("", h.Users.Create, middleware.RequirePermission(auth.PermManageUsers))
	users.PUT("/:id", h.Users.Update, middleware.RequirePermission(auth.PermManageUsers))
	users.DELETE("/:id", h.Users.Delete, middleware.RequirePermission(auth.PermManageUsers))

	settings := authed.Group("/settings")
	settings.GET("", h.Settings.GetAll)
	settings.GET("/export/data", h.Settings.ExportData, middleware.RequirePermission(auth.PermSystemSettings))
	settings.GET("/logs/activity", h.Settings.ActivityLogs, middleware.RequirePermission(auth.PermSystemSettings))
	settings.GET("/system-info", h.Settings.SystemInfo)
	settings.POST("/backup", h.Settings.Backup, middleware.RequirePermission(auth.PermSystemSettings))
	settings.PUT("", h.Settings.UpdateBatch, middleware.RequirePermission(auth.PermSystemSettings))
	settings.GET("/:key", h.Settings.GetKey)
	settings.PUT("/:key", h.Settings.UpdateKey, middleware.RequirePermission(auth.PermSystemSettings))
}
