package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type directoryStatus struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Count  int    `json:"count"`
}

// handleStatus reports process uptime, per-operation metrics, and a quick
// health view of the directories the store depends on.
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"metrics": s.metrics.Snapshot(),
		"directories": []directoryStatus{
			describeDirectory(s.store.DemosDir(), ""),
			describeDirectory(s.store.MarkdownDir(), ".md"),
			describeDirectory(s.store.LegacyDir(), ".md"),
		},
	})
}

// describeDirectory counts the directory's entries, restricted to the given
// extension when one is set.
func describeDirectory(path, ext string) directoryStatus {
	status := directoryStatus{Path: filepath.ToSlash(path)}

	entries, err := os.ReadDir(path)
	if err != nil {
		return status
	}
	status.Exists = true
	for _, entry := range entries {
		if ext != "" && !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		status.Count++
	}
	return status
}
