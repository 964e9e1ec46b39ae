package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/middleware"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/search"
)

// SearchHandler handles dual-store semantic search requests
type SearchHandler struct {
	coordinator *search.Coordinator
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(coordinator *search.Coordinator) *SearchHandler {
	return &SearchHandler{coordinator: coordinator}
}

// Search runs one query against every vector store and returns the
// side-by-side comparison
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err == nil {
			limit = n
		}
	}

	filter := map[string]string{}
	if videoID := c.Query("videoId"); videoID != "" {
		filter["videoId"] = videoID
	}

	comparison, err := h.coordinator.Search(c.Request.Context(), query, limit, filter)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, comparison)
}
