package handler

import (
	"errors"
	"net/http"

	"homefinder/internal/model"
	"homefinder/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler handles search-related HTTP requests
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response, err := h.searchService.Search(&req)
	if err != nil {
		if errors.Is(err, service.ErrSessionActive) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}
	if response == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Listings handles GET /api/v1/listings - the full catalog via the
// empty-query path
func (h *SearchHandler) Listings(c *gin.Context) {
	response, err := h.searchService.Search(&model.SearchRequest{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Listing failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetListing handles GET /api/v1/listings/:id
func (h *SearchHandler) GetListing(c *gin.Context) {
	id := c.Param("id")

	listing, found := h.searchService.GetListing(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found: " + id})
		return
	}

	c.JSON(http.StatusOK, listing)
}
