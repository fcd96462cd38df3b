package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taleframe/taleframe-backend/internal/platform/logger"
	"github.com/taleframe/taleframe-backend/internal/services"
)

type PipelineHandler struct {
	log      *logger.Logger
	launcher services.LaunchService
}

func NewPipelineHandler(log *logger.Logger, launcher services.LaunchService) *PipelineHandler {
	return &PipelineHandler{
		log:      log.With("handler", "PipelineHandler"),
		launcher: launcher,
	}
}

type enqueueRequest struct {
	PipelineID string `json:"pipelineId" binding:"required"`
	OCRResult  string `json:"ocrResult"`
}

type enqueueResponse struct {
	Message string `json:"message"`
	StepID  string `json:"stepId"`
}

// Enqueue launches a pipeline run from an OCR-derived passage. The caller
// only learns the root step id; the outcome is delivered via the downstream
// notification.
func (h *PipelineHandler) Enqueue(c *gin.Context) {
	var req enqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stepID, err := h.launcher.Launch(c.Request.Context(), req.PipelineID, req.OCRResult)
	if err != nil {
		h.log.Error("Failed to launch pipeline", "pipeline_id", req.PipelineID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue task"})
		return
	}

	c.JSON(http.StatusOK, enqueueResponse{
		Message: "Task enqueued successfully",
		StepID:  stepID,
	})
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
