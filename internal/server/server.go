// Package server provides the dashboard HTTP API and the chat event-stream
// relay.
package server

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/akarsten/demodash-go/internal/instructions"
	"github.com/akarsten/demodash-go/internal/llm"
	"github.com/akarsten/demodash-go/internal/metrics"
	"github.com/akarsten/demodash-go/internal/render"
	"github.com/akarsten/demodash-go/internal/store"
	"github.com/gin-gonic/gin"
)

// Server wires the route handlers to their collaborators. Each chat request
// gets its own independent relay; the only state shared across requests is
// the read-mostly store and the metrics collector.
type Server struct {
	store    *store.Store
	resolver *instructions.Resolver
	llm      llm.Client
	renderer *render.Renderer
	metrics  *metrics.Collector
	logger   *slog.Logger
	engine   *gin.Engine
	started  time.Time
}

// New creates the server and registers all routes. llmClient may be nil when
// no provider is configured; chat streaming then responds 500.
func New(st *store.Store, resolver *instructions.Resolver, llmClient llm.Client, mc *metrics.Collector, logger *slog.Logger) *Server {
	s := &Server{
		store:    st,
		resolver: resolver,
		llm:      llmClient,
		renderer: render.New(),
		metrics:  mc,
		logger:   logger,
		started:  time.Now(),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(logger))

	api := engine.Group("/api")
	api.POST("/stream", s.handleStream)
	api.GET("/demos", s.handleListDemos)
	api.POST("/demos", s.handleCreateDemo)
	api.GET("/demos/:id", s.handleGetDemo)
	api.DELETE("/demos/:id", s.handleDeleteDemo)
	api.GET("/demos/:id/explainer", s.handleExplainer)
	api.GET("/demos/:id/explainer/html", s.handleExplainerHTML)
	api.GET("/demos/:id/assistants/:assistantId/markdown", s.handleAssistantMarkdown)
	api.POST("/demos/:id/assistants/:assistantId/unlock", s.handleUnlock)
	api.GET("/assistants", s.handleLegacyAssistants)
	api.GET("/status", s.handleStatus)

	// Icons and other demo assets are served directly from the public tree.
	engine.Static("/public", filepath.Join(st.BaseDir(), "public"))

	engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	s.engine = engine
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }
