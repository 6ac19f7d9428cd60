package auth

import (
	"engracedsmile/internal/shared/config"
	"engracedsmile/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes mounts /auth; the /me and password routes need an access token
func SetupAuthRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	group := rg.Group("/auth")
	group.POST("/register", controller.Register)
	group.POST("/login", controller.Login)
	group.POST("/refresh", controller.RefreshToken)

	account := group.Group("", middleware.JWTAuthWithConfig(cfg))
	account.GET("/me", controller.GetMe)
	account.PUT("/me", controller.UpdateMe)
	account.PUT("/change-password", controller.ChangePassword)
}
