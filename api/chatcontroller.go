package api

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxHistoryTurns = 10

// chatSessions keeps per-session history in memory. Sessions die with the
// process; the chat surface is a convenience over the week's articles, not
// a durable conversation store.
type chatSessions struct {
	mu       sync.Mutex
	sessions map[string][]chatTurn
}

type chatTurn struct {
	User      string
	Assistant string
}

var sessions = &chatSessions{sessions: make(map[string][]chatTurn)}

// RegisterChatRoutes registers the news chat endpoint.
func RegisterChatRoutes(r *gin.Engine, deps Deps) {
	r.POST("/api/chat", func(c *gin.Context) { handleChat(c, deps) })
}

// ChatRequest is the chat payload. SessionID is optional; a new session is
// created when it is empty.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse carries the reply and the session to continue with.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// handleChat answers a question grounded in indexed articles: top search
// hits become context, prior turns are replayed, and the model responds.
func handleChat(c *gin.Context, deps Deps) {
	if deps.Chatter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat not configured"})
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	prompt := buildChatPrompt(deps, req.SessionID, req.Message)
	reply, err := deps.Chatter.Chat(c.Request.Context(), prompt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chat failed: " + err.Error()})
		return
	}

	sessions.append(req.SessionID, chatTurn{User: req.Message, Assistant: reply})
	c.JSON(http.StatusOK, ChatResponse{SessionID: req.SessionID, Reply: reply})
}

func buildChatPrompt(deps Deps, sessionID, message string) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant answering questions about recent AI news. " +
		"Use the article context below when relevant and cite article links.\n\n")

	if deps.Searcher != nil {
		if results, err := deps.Searcher.Search(message, 4); err == nil && len(results) > 0 {
			b.WriteString("Article context:\n")
			for _, r := range results {
				fmt.Fprintf(&b, "- [%s] %s (%s)\n", r.Source, r.Content, r.Link)
			}
			b.WriteString("\n")
		}
	}

	for _, turn := range sessions.history(sessionID) {
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", turn.User, turn.Assistant)
	}
	fmt.Fprintf(&b, "User: %s\nAssistant:", message)
	return b.String()
}

func (s *chatSessions) history(id string) []chatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *chatSessions) append(id string, turn chatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := append(s.sessions[id], turn)
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	s.sessions[id] = turns
}
