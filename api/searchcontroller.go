package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSearchRoutes registers the vector search endpoint.
func RegisterSearchRoutes(r *gin.Engine, deps Deps) {
	r.POST("/api/search", func(c *gin.Context) { handleSearch(c, deps) })
}

// SearchRequest is the search query payload.
type SearchRequest struct {
	Query   string `json:"query" binding:"required"`
	Results int    `json:"results"`
}

func handleSearch(c *gin.Context, deps Deps) {
	if deps.Searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search index not configured"})
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Results <= 0 {
		req.Results = 5
	}

	results, err := deps.Searcher.Search(req.Query, req.Results)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": req.Query, "results": results})
}
