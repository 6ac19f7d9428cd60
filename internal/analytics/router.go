package analytics

import (
	"github.com/gin-gonic/gin"
)

// SetupAnalyticsRoutes registers reporting endpoints on a group that
// already requires an admin session
func SetupAnalyticsRoutes(admin *gin.RouterGroup, controller *Controller) {
	admin.GET("/dashboard", controller.Dashboard)
	admin.GET("/payments", controller.Payments)
}
