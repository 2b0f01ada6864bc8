// Package api exposes the weekly bundles, vector search, and chat over HTTP.
package api

import (
	"context"

	"newsweave/vectorindex"

	"github.com/gin-gonic/gin"
)

// Searcher answers similarity queries against the article index.
type Searcher interface {
	Search(query string, nResults int) ([]vectorindex.SearchResult, error)
}

// Chatter answers a free-form prompt, used by the chat endpoint.
type Chatter interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// Deps carries the wired collaborators for the router. Nil Searcher or
// Chatter disables the corresponding endpoints with 503 responses; nil
// Refresh disables the refresh trigger.
type Deps struct {
	DataDir  string
	Searcher Searcher
	Chatter  Chatter
	Refresh  func(ctx context.Context) error
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterHealthRoutes(r)
	RegisterNewsRoutes(r, deps)
	RegisterSearchRoutes(r, deps)
	RegisterChatRoutes(r, deps)
	RegisterRefreshRoutes(r, deps)
	return r
}
