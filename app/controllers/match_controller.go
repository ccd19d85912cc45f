package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/donor-resolver/app/models"
	"github.com/donor-resolver/app/requests"
	"github.com/donor-resolver/app/responses"
	"github.com/donor-resolver/app/services"
)

// MatchController exposes the operator surface of the engine: start a run,
// poll its status, fetch the verification report.
type MatchController struct {
	matchService *services.MatchService
	logger       *zap.Logger
	startTime    time.Time
}

// NewMatchController creates a MatchController.
func NewMatchController(matchService *services.MatchService, logger *zap.Logger) *MatchController {
	return &MatchController{
		matchService: matchService,
		logger:       logger,
		startTime:    time.Now(),
	}
}

// StartRun launches a batch matching run in the background.
func (mc *MatchController) StartRun(c *gin.Context) {
	var req requests.StartRunRequest
	// Body is optional.
	_ = c.ShouldBindJSON(&req)

	run, err := mc.matchService.StartRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "RUN_START_FAILED",
			Message: err.Error(),
		})
		return
	}

	mc.logger.Info("run started via API",
		zap.String("run_id", run.RunID),
		zap.String("note", req.Note))
	c.JSON(http.StatusAccepted, responses.RunResponse{Run: run})
}

// GetRunStatus returns the current state of a run.
func (mc *MatchController) GetRunStatus(c *gin.Context) {
	runID := c.Param("runID")
	run, found, err := mc.matchService.GetRun(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "RUN_LOOKUP_FAILED",
			Message: err.Error(),
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "RUN_NOT_FOUND",
			Message: "no run with ID " + runID,
		})
		return
	}
	c.JSON(http.StatusOK, responses.RunResponse{Run: run})
}

// GetRunReport returns the verification report for a completed run.
func (mc *MatchController) GetRunReport(c *gin.Context) {
	runID := c.Param("runID")
	run, found, err := mc.matchService.GetRun(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "RUN_LOOKUP_FAILED",
			Message: err.Error(),
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "RUN_NOT_FOUND",
			Message: "no run with ID " + runID,
		})
		return
	}
	if run.Status != models.RunStatusCompleted || run.Stats == nil {
		c.JSON(http.StatusConflict, responses.ErrorResponse{
			Error:   "RUN_NOT_COMPLETED",
			Message: "run " + runID + " is " + run.Status,
		})
		return
	}
	c.JSON(http.StatusOK, responses.ReportResponse{
		RunID:             run.RunID,
		OutputFingerprint: run.OutputFingerprint,
		Stats:             run.Stats,
	})
}

// HealthCheck is the liveness probe.
func (mc *MatchController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, responses.HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(mc.startTime).Round(time.Second).String(),
		Version: "1.0.0",
	})
}
