package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/donor-resolver/app/responses"
	"github.com/donor-resolver/app/services"
	"github.com/donor-resolver/internal/search"
)

// AdminController exposes result-table stats and review-index maintenance.
type AdminController struct {
	store         services.IResultStore
	reviewIndexer *search.ReviewIndexer // nil when review search is disabled
	logger        *zap.Logger
}

// NewAdminController creates an AdminController. reviewIndexer may be nil.
func NewAdminController(store services.IResultStore, reviewIndexer *search.ReviewIndexer, logger *zap.Logger) *AdminController {
	return &AdminController{
		store:         store,
		reviewIndexer: reviewIndexer,
		logger:        logger,
	}
}

// GetStats reports the live result table size.
func (ac *AdminController) GetStats(c *gin.Context) {
	n, err := ac.store.CountResults(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "STATS_FAILED",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, responses.AdminStatsResponse{
		ResultRows: n,
		Status:     "ok",
	})
}

// RebuildReviewIndex reapplies the review index settings.
func (ac *AdminController) RebuildReviewIndex(c *gin.Context) {
	if ac.reviewIndexer == nil {
		c.JSON(http.StatusNotImplemented, responses.ErrorResponse{
			Error:   "REVIEW_DISABLED",
			Message: "review search index is not configured",
		})
		return
	}
	if err := ac.reviewIndexer.BuildIndex(); err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "REVIEW_INDEX_FAILED",
			Message: err.Error(),
		})
		return
	}
	ac.logger.Info("review index settings rebuilt via API")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
