package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/akarsten/demodash-go/internal/chat"
	"github.com/akarsten/demodash-go/internal/instructions"
	"github.com/akarsten/demodash-go/internal/metrics"
	"github.com/gin-gonic/gin"
)

// streamRequest is one chat turn. The prompt, assistant and demo are
// required; messageHistory is the client-assembled prior conversation with
// the current prompt already appended as its last entry.
type streamRequest struct {
	Prompt         string                 `json:"prompt"`
	MessageHistory []chat.IncomingMessage `json:"messageHistory"`
	AssistantID    string                 `json:"assistantId"`
	DemoID         string                 `json:"demoId"`
}

// handleStream relays one streaming chat completion as server-sent events.
// All request-shape and resolution errors fail fast with a JSON status
// before any response bytes are committed; once streaming starts, failures
// surface as an in-band terminal event.
func (s *Server) handleStream(c *gin.Context) {
	var req streamRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prompt == "" || req.AssistantID == "" || req.DemoID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	resolveStart := time.Now()
	doc, err := s.resolver.Resolve(req.DemoID, req.AssistantID)
	s.metrics.RecordTiming(metrics.OpResolve, time.Since(resolveStart))
	if err != nil {
		s.metrics.RecordError(metrics.OpResolve)
		if errors.Is(err, instructions.ErrNotFound) || errors.Is(err, instructions.ErrInvalidID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assistant instructions not found"})
			return
		}
		s.logger.Error("resolve instructions", "demo", req.DemoID, "assistant", req.AssistantID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if s.llm == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chat streaming is not configured"})
		return
	}

	messages := chat.Format(doc, req.MessageHistory, req.Prompt)

	connectStart := time.Now()
	stream, err := s.llm.StreamCompletion(c.Request.Context(), messages)
	s.metrics.RecordTiming(metrics.OpConnect, time.Since(connectStart))
	if err != nil {
		s.metrics.RecordError(metrics.OpConnect)
		// Generic message only: upstream errors carry auth and quota detail
		// that must not reach the client.
		s.logger.Error("open upstream stream", "demo", req.DemoID, "assistant", req.AssistantID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chat request"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	relayStart := time.Now()
	deltas, bytes := relay(c.Request.Context(), c.Writer, stream, s.logger)
	s.metrics.RecordTiming(metrics.OpStreamRelay, time.Since(relayStart))
	s.metrics.RecordStream(metrics.OpStreamRelay, deltas, bytes)
}
