package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/donor-resolver/app/controllers"
)

// SetupAllRoutes wires every route group onto the router.
func SetupAllRoutes(router *gin.Engine, matchController *controllers.MatchController, adminController *controllers.AdminController) {
	SetupHealthRoutes(router, matchController)
	SetupAPIRoutes(router, matchController, adminController)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

// SetupHealthRoutes wires the probe endpoints.
func SetupHealthRoutes(router *gin.Engine, matchController *controllers.MatchController) {
	router.GET("/health", matchController.HealthCheck)
	router.GET("/ready", matchController.HealthCheck)
	router.GET("/live", matchController.HealthCheck)
}
