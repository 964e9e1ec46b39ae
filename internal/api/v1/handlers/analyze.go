package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/middleware"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/v1/dto"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/job"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// AnalyzeHandler handles video understanding job requests
type AnalyzeHandler struct {
	manager *job.UnderstandingManager
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(manager *job.UnderstandingManager) *AnalyzeHandler {
	return &AnalyzeHandler{manager: manager}
}

// Submit starts an understanding job and returns its id immediately
func (h *AnalyzeHandler) Submit(c *gin.Context) {
	var req dto.AnalyzeRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	ref := model.VideoReference{Bucket: req.Bucket, Key: req.Key}
	id, err := h.manager.Submit(c.Request.Context(), ref, req.Key, req.Prompt)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.SubmitResponse{
		JobID:  id,
		Status: string(model.JobStateSubmitted),
	})
}

// Poll returns the current state of an understanding job
func (h *AnalyzeHandler) Poll(c *gin.Context) {
	view, err := h.manager.Poll(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
