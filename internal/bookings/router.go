package bookings

import (
	"engracedsmile/internal/shared/config"
	"engracedsmile/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes registers customer booking routes on api and the
// management routes on an admin group that already enforces the role
func SetupBookingRoutes(api, admin *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	bookings := api.Group("/bookings")
	{
		guest := bookings.Group("")
		guest.Use(middleware.OptionalAuthWithConfig(cfg))
		{
			guest.POST("", controller.Create)
			guest.GET("/reference/:reference", controller.GetByReference)
		}

		customer := bookings.Group("")
		customer.Use(middleware.JWTAuthWithConfig(cfg))
		{
			customer.GET("/me", controller.ListMine)
			customer.GET("/:id", controller.Get)
			customer.GET("/:id/ticket", controller.Ticket)
			customer.POST("/:id/cancel", controller.Cancel)
		}
	}

	manage := admin.Group("/bookings")
	{
		manage.GET("", controller.List)
		manage.GET("/:id", controller.Get)
		manage.POST("/:id/cancel", controller.Cancel)
		manage.PATCH("/:id/complete", controller.Complete)
	}
}
