package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRefreshRoutes registers the pipeline refresh trigger.
func RegisterRefreshRoutes(r *gin.Engine, deps Deps) {
	g := r.Group("/api/rss")
	g.POST("/refresh", func(c *gin.Context) { handleRefresh(c, deps) })
}

// handleRefresh triggers a full pipeline run asynchronously and returns
// 202 Accepted immediately.
func handleRefresh(c *gin.Context, deps Deps) {
	if deps.Refresh == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "refresh not configured"})
		return
	}
	go func() {
		_ = deps.Refresh(context.Background())
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh started"})
}
