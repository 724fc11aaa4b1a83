package routes

import (
	"time"

	"servicehub/handlers"
	"servicehub/middleware"
	"servicehub/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var operators = []models.Role{models.RoleProvider, models.RoleSuperAdmin}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	health := hb.Health
	if health == nil {
		health = handlers.HealthHandler
	}
	r.GET("/health", health)
}

// RegisterBookingRoutes sets up the endpoints for the booking lifecycle.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware())
		bookingGroup.POST("", middleware.RequireRoles(models.RoleCustomer, models.RoleClientAdmin), hb.Booking.CreateBookingHandler)
		bookingGroup.GET("", hb.Booking.ListBookingsHandler)
		bookingGroup.GET("/:id", hb.Booking.GetBookingHandler)
		bookingGroup.PATCH("/:id/status", hb.Booking.TransitionBookingHandler)
		bookingGroup.GET("/:id/history", hb.Booking.GetBookingHistoryHandler)
		bookingGroup.GET("/:id/cancellable", hb.Booking.CanCancelHandler)
		bookingGroup.POST("/:id/rematch", middleware.RequireRoles(operators...), hb.Booking.RematchBookingHandler)
	}

	matchingGroup := r.Group("/api/matching")
	{
		matchingGroup.Use(middleware.JWTAuthMiddleware())
		matchingGroup.Use(middleware.RequireRoles(models.RoleProvider, models.RoleSuperAdmin, models.RoleClientAdmin))
		matchingGroup.POST("/preview", hb.Booking.PreviewMatchHandler)
	}
}

// RegisterServicemanRoutes sets up serviceman data entry.
func RegisterServicemanRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/servicemen")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/:id", hb.Serviceman.GetServicemanHandler)

		protected := api.Group("")
		protected.Use(middleware.RequireRoles(operators...))
		protected.POST("", hb.Serviceman.RegisterServicemanHandler)
		protected.PATCH("/:id", hb.Serviceman.UpdateServicemanProfileHandler)
		protected.PUT("/:id/availability", hb.Serviceman.UpdateAvailabilityHandler)
		protected.PATCH("/:id/status", hb.Serviceman.UpdateServicemanStatusHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterServicemanRoutes(r, hb)
}
