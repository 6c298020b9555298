package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/akarsten/demodash-go/internal/instructions"
	"github.com/akarsten/demodash-go/internal/metrics"
	"github.com/akarsten/demodash-go/internal/store"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleListDemos(c *gin.Context) {
	start := time.Now()
	demos, err := s.store.List()
	s.metrics.RecordTiming(metrics.OpStoreRead, time.Since(start))
	if err != nil {
		s.metrics.RecordError(metrics.OpStoreRead)
		s.logger.Error("list demos", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing demos"})
		return
	}
	c.JSON(http.StatusOK, demos)
}

func (s *Server) handleGetDemo(c *gin.Context) {
	demo, err := s.store.Get(c.Param("id"))
	if err != nil {
		respondStoreError(c, s, err, "read demo config")
		return
	}
	c.JSON(http.StatusOK, demo)
}

// handleCreateDemo accepts a multipart upload: a "demo" JSON field, a
// required "explainer" markdown file, a required "markdown_<assistantID>"
// file per assistant, and optional "icon" / "icon_<assistantID>" assets.
func (s *Server) handleCreateDemo(c *gin.Context) {
	demoField := c.PostForm("demo")
	if demoField == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing demo definition"})
		return
	}

	var demo store.Demo
	if err := json.Unmarshal([]byte(demoField), &demo); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid demo definition"})
		return
	}
	if demo.ID == "" || demo.Title == "" || demo.Author == "" || len(demo.Assistants) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	files := store.CreateFiles{
		AssistantDocs:  make(map[string][]byte),
		AssistantIcons: make(map[string][]byte),
	}

	explainer, ok, err := formFileBytes(c, "explainer")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable explainer upload"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Demo explainer markdown is required"})
		return
	}
	files.Explainer = explainer

	icon, ok, err := formFileBytes(c, "icon")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable icon upload"})
		return
	}
	if ok {
		files.Icon = icon
	}

	for _, assistant := range demo.Assistants {
		doc, ok, err := formFileBytes(c, "markdown_"+assistant.ID)
		if err != nil || !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Markdown file is required for assistant %q", assistant.Name),
			})
			return
		}
		files.AssistantDocs[assistant.ID] = doc

		icon, ok, err := formFileBytes(c, "icon_"+assistant.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable icon upload"})
			return
		}
		if ok {
			files.AssistantIcons[assistant.ID] = icon
		}
	}

	start := time.Now()
	err = s.store.Create(&demo, files)
	s.metrics.RecordTiming(metrics.OpStoreMutate, time.Since(start))
	if err != nil {
		s.metrics.RecordError(metrics.OpStoreMutate)
		switch {
		case errors.Is(err, store.ErrDemoExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Demo already exists"})
		case errors.Is(err, store.ErrStaticDemo):
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot overwrite built-in demos"})
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			s.logger.Error("create demo", "id", demo.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating demo"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "demo": demo})
}

func (s *Server) handleDeleteDemo(c *gin.Context) {
	start := time.Now()
	report, err := s.store.Delete(c.Param("id"))
	s.metrics.RecordTiming(metrics.OpStoreMutate, time.Since(start))
	if err != nil {
		s.metrics.RecordError(metrics.OpStoreMutate)
		switch {
		case errors.Is(err, store.ErrStaticDemo):
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot delete static demos"})
		case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusNotFound, gin.H{"error": "Demo not found"})
		default:
			s.logger.Error("delete demo", "id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting demo"})
		}
		return
	}

	if report.Partial() {
		c.JSON(http.StatusMultiStatus, gin.H{"success": false, "report": report})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

func (s *Server) handleExplainer(c *gin.Context) {
	content, err := s.store.Explainer(c.Param("id"))
	if err != nil {
		respondStoreError(c, s, err, "read explainer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

func (s *Server) handleExplainerHTML(c *gin.Context) {
	content, err := s.store.Explainer(c.Param("id"))
	if err != nil {
		respondStoreError(c, s, err, "read explainer")
		return
	}
	html, err := s.renderer.HTML([]byte(content))
	if err != nil {
		s.logger.Error("render explainer", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error rendering explainer"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) handleAssistantMarkdown(c *gin.Context) {
	content, err := s.resolver.Resolve(c.Param("id"), c.Param("assistantId"))
	if err != nil {
		if errors.Is(err, instructions.ErrNotFound) || errors.Is(err, instructions.ErrInvalidID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Markdown file not found"})
			return
		}
		s.logger.Error("read assistant markdown", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading markdown file"})
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(content))
}

// handleUnlock compares a client-supplied password against the assistant's
// configured one. Plaintext comparison is the whole contract; there is no
// session state behind it.
func (s *Server) handleUnlock(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	password, ok, err := s.store.AssistantPassword(c.Param("id"), c.Param("assistantId"))
	if err != nil {
		respondStoreError(c, s, err, "look up assistant password")
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assistant not found"})
		return
	}

	if password != "" && password != req.Password {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unlocked": true})
}

func (s *Server) handleLegacyAssistants(c *gin.Context) {
	assistants, err := s.store.LegacyAssistants()
	if err != nil {
		s.logger.Error("list legacy assistants", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list assistants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assistants": assistants})
}

// respondStoreError maps store errors onto the API's status codes.
func respondStoreError(c *gin.Context, s *Server, err error, action string) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
		c.JSON(http.StatusNotFound, gin.H{"error": "Demo not found"})
	default:
		s.logger.Error(action, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// formFileBytes reads one uploaded file from the multipart form. ok is false
// when the field is absent.
func formFileBytes(c *gin.Context, field string) ([]byte, bool, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, false, nil
		}
		return nil, false, err
	}
	f, err := header.Open()
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
