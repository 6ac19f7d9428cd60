package fleet

import (
	"github.com/gin-gonic/gin"
)

// SetupFleetRoutes registers routes, vehicles and drivers under an admin group
func SetupFleetRoutes(admin *gin.RouterGroup, controller *Controller) {
	routes := admin.Group("/routes")
	{
		routes.POST("", controller.CreateRoute)
		routes.GET("", controller.ListRoutes)
		routes.GET("/:id", controller.GetRoute)
		routes.PUT("/:id", controller.UpdateRoute)
		routes.PATCH("/:id/active", controller.ToggleRoute)
		routes.DELETE("/:id", controller.DeleteRoute)
	}

	vehicles := admin.Group("/vehicles")
	{
		vehicles.POST("", controller.CreateVehicle)
		vehicles.GET("", controller.ListVehicles)
		vehicles.GET("/:id", controller.GetVehicle)
		vehicles.PUT("/:id", controller.UpdateVehicle)
		vehicles.DELETE("/:id", controller.DeleteVehicle)
	}

	drivers := admin.Group("/drivers")
	{
		drivers.POST("", controller.CreateDriver)
		drivers.GET("", controller.ListDrivers)
		drivers.GET("/:id", controller.GetDriver)
		drivers.PUT("/:id", controller.UpdateDriver)
		drivers.PATCH("/:id/active", controller.ToggleDriver)
		drivers.DELETE("/:id", controller.DeleteDriver)
	}
}
