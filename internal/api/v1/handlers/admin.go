package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/v1/dto"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/storage/vector"
)

// AdminHandler handles maintenance operations on the vector stores
type AdminHandler struct {
	sinks []vector.Sink
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(sinks []vector.Sink) *AdminHandler {
	return &AdminHandler{sinks: sinks}
}

// Flush clears every vector store. Sinks are flushed independently: one
// backend being down does not stop the others from being cleared.
func (h *AdminHandler) Flush(c *gin.Context) {
	resp := dto.FlushResponse{Sinks: map[string]string{}}
	failed := 0
	for _, sink := range h.sinks {
		if err := sink.Flush(c.Request.Context()); err != nil {
			resp.Sinks[sink.Name()] = err.Error()
			failed++
			continue
		}
		resp.Sinks[sink.Name()] = "flushed"
	}

	status := http.StatusOK
	if failed == len(h.sinks) && failed > 0 {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
