package trips

import (
	"github.com/gin-gonic/gin"
)

// SetupTripRoutes registers the public search endpoints and the admin
// schedule management endpoints
func SetupTripRoutes(public, admin *gin.RouterGroup, controller *Controller) {
	trips := public.Group("/trips")
	{
		trips.GET("/search", controller.Search)
		trips.GET("/:id", controller.GetPublic)
	}

	manage := admin.Group("/trips")
	{
		manage.POST("", controller.Create)
		manage.GET("", controller.List)
		manage.GET("/:id", controller.Get)
		manage.PUT("/:id", controller.Update)
		manage.DELETE("/:id", controller.Deactivate)
		manage.PUT("/:id/promotion", controller.SetPromotion)
		manage.DELETE("/:id/promotion", controller.ClearPromotion)
	}
}
