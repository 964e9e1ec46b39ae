package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/errors"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/middleware"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/v1/dto"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/storage/upload"
)

// VideoHandler handles video upload and playback URL requests
type VideoHandler struct {
	uploads upload.Service
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(uploads upload.Service) *VideoHandler {
	return &VideoHandler{uploads: uploads}
}

// Upload mints a presigned PUT URL for one video file
func (h *VideoHandler) Upload(c *gin.Context) {
	var req dto.UploadRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	ticket, err := h.uploads.PresignUpload(c.Request.Context(), req.FileName, req.ContentType)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{
		URL:       ticket.URL,
		Method:    ticket.Method,
		Bucket:    ticket.Ref.Bucket,
		Key:       ticket.Ref.Key,
		VideoURI:  ticket.Ref.URI(),
		ExpiresAt: ticket.ExpiresAt,
	})
}

// PlaybackURL mints a presigned GET URL for a stored video
func (h *VideoHandler) PlaybackURL(c *gin.Context) {
	bucket := c.Query("bucket")
	key := c.Query("key")
	if bucket == "" || key == "" {
		middleware.HandleError(c, errors.NewBadRequestError("bucket and key query parameters are required"))
		return
	}

	ref := model.VideoReference{Bucket: bucket, Key: key}
	url, err := h.uploads.PresignPlayback(c.Request.Context(), ref)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PlaybackURLResponse{
		URL:       url,
		ExpiresAt: time.Now().Add(time.Hour),
	})
}
