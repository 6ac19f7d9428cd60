package payments

import (
	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes registers the checkout, verify and webhook endpoints.
// None of them require a session: guests pay too, and the webhook is
// authenticated by its signature.
func SetupPaymentRoutes(api *gin.RouterGroup, controller *Controller) {
	payments := api.Group("/payments")
	{
		payments.POST("/checkout", controller.Checkout)
		payments.POST("/verify", controller.Verify)
		payments.POST("/webhook", controller.Webhook)
	}
}
