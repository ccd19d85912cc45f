package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/donor-resolver/app/controllers"
)

// SetupAPIRoutes wires the versioned operator API.
func SetupAPIRoutes(router *gin.Engine, matchController *controllers.MatchController, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		matches := v1.Group("/matches")
		{
			matches.POST("/runs", matchController.StartRun)
			matches.GET("/runs/:runID", matchController.GetRunStatus)
			matches.GET("/runs/:runID/report", matchController.GetRunReport)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/stats", adminController.GetStats)
			admin.POST("/review-index/rebuild", adminController.RebuildReviewIndex)
		}

		v1.GET("/health", matchController.HealthCheck)
	}
}
