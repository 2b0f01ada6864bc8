package api

import (
	"net/http"

	"newsweave/aggregate"

	"github.com/gin-gonic/gin"
)

// RegisterNewsRoutes registers weekly bundle endpoints.
func RegisterNewsRoutes(r *gin.Engine, deps Deps) {
	g := r.Group("/api")
	g.GET("/weeks", func(c *gin.Context) { handleListWeeks(c, deps) })
	g.GET("/news", func(c *gin.Context) { handleGetNews(c, deps) })
}

// handleListWeeks lists the weeks with persisted combined bundles, newest
// first.
func handleListWeeks(c *gin.Context, deps Deps) {
	weeks := aggregate.ListWeeks(deps.DataDir)
	if weeks == nil {
		weeks = []aggregate.WeekInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

// handleGetNews returns the combined bundle for ?week=<tag>, falling back to
// the most recent available week when the requested one is absent.
func handleGetNews(c *gin.Context, deps Deps) {
	weekTag := c.Query("week")
	bundle, err := aggregate.LoadBundleOrLatest(deps.DataDir, weekTag)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no weekly news available"})
		return
	}
	c.JSON(http.StatusOK, bundle)
}
