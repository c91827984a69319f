package handler

import (
	"net/http"

	"homefinder/internal/catalog"
	"homefinder/internal/model"
	"homefinder/internal/service"

	"github.com/gin-gonic/gin"
)

// IndexHandler handles indexing HTTP requests
type IndexHandler struct {
	indexer *service.Indexer
	catalog *catalog.Catalog
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(indexer *service.Indexer, cat *catalog.Catalog) *IndexHandler {
	return &IndexHandler{indexer: indexer, catalog: cat}
}

// Index handles POST /api/v1/index. With a body it indexes the supplied
// listings; without one it reindexes the catalog.
func (h *IndexHandler) Index(c *gin.Context) {
	var req model.IndexRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}

	listings := req.Listings
	if len(listings) == 0 {
		listings = h.catalog.Listings()
	}

	response := h.indexer.Index(listings)
	c.JSON(http.StatusOK, response)
}
