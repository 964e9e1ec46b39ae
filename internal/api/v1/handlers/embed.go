package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/errors"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/middleware"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/v1/dto"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/job"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// EmbedHandler handles video embedding job requests
type EmbedHandler struct {
	manager *job.EmbeddingManager
}

// NewEmbedHandler creates a new embed handler
func NewEmbedHandler(manager *job.EmbeddingManager) *EmbedHandler {
	return &EmbedHandler{manager: manager}
}

// Submit starts an embedding job and returns the provider handle
func (h *EmbedHandler) Submit(c *gin.Context) {
	var req dto.EmbedRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	ref := model.VideoReference{Bucket: req.Bucket, Key: req.Key}
	handle, err := h.manager.Submit(c.Request.Context(), ref, req.VideoID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.SubmitResponse{
		JobID:  handle,
		Status: string(model.JobStateSubmitted),
	})
}

// Poll returns the current state of an embedding job by its handle
func (h *EmbedHandler) Poll(c *gin.Context) {
	handle := c.Query("jobId")
	if handle == "" {
		middleware.HandleError(c, errors.NewBadRequestError("jobId query parameter is required"))
		return
	}

	view, err := h.manager.Poll(c.Request.Context(), handle)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
