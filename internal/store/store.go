package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store reads and mutates the flat-file demo layout under a base directory.
// Reads are safe for concurrent use; mutations are multi-step filesystem
// sequences with no cross-request locking.
type Store struct {
	base   string
	logger *slog.Logger
	cache  *lru.Cache[string, *Demo]
}

// New creates a store rooted at base. cacheSize bounds the parsed-config
// cache; pass 0 to disable caching.
func New(base string, cacheSize int, logger *slog.Logger) (*Store, error) {
	s := &Store{
		base:   base,
		logger: logger,
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, *Demo](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create config cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// BaseDir returns the store's base directory.
func (s *Store) BaseDir() string { return s.base }

// DemosDir returns the directory holding dynamic demo directories.
func (s *Store) DemosDir() string { return filepath.Join(s.base, "public", "demos") }

// MarkdownDir returns the shared instruction-document directory.
func (s *Store) MarkdownDir() string { return filepath.Join(s.base, "public", "markdown") }

// LegacyDir returns the legacy flat assistants directory.
func (s *Store) LegacyDir() string { return filepath.Join(s.base, "assistants") }

func (s *Store) demoDir(id string) string { return filepath.Join(s.DemosDir(), id) }

func (s *Store) configPath(id string) string { return filepath.Join(s.demoDir(id), "config.json") }

// sharedMarkdownPath is the shared instruction document for one assistant.
func (s *Store) sharedMarkdownPath(demoID, assistantID string) string {
	return filepath.Join(s.MarkdownDir(), demoID+"-"+assistantID+".md")
}

// Get loads a demo's config.json, consulting the parsed-config cache first.
func (s *Store) Get(id string) (*Demo, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if s.cache != nil {
		if demo, ok := s.cache.Get(id); ok {
			return demo, nil
		}
	}

	data, err := os.ReadFile(s.configPath(id))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read demo config %s: %w", id, err)
	}

	var demo Demo
	if err := json.Unmarshal(data, &demo); err != nil {
		return nil, fmt.Errorf("parse demo config %s: %w", id, err)
	}

	if s.cache != nil {
		s.cache.Add(id, &demo)
	}
	return &demo, nil
}

// List returns all dynamic demos. Built-in demo directories and directories
// without a config.json are skipped.
func (s *Store) List() ([]Demo, error) {
	entries, err := os.ReadDir(s.DemosDir())
	if os.IsNotExist(err) {
		return []Demo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read demos directory: %w", err)
	}

	demos := make([]Demo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || IsStatic(entry.Name()) || !ValidID(entry.Name()) {
			continue
		}
		demo, err := s.Get(entry.Name())
		if err != nil {
			// A half-written or foreign directory should not break the
			// dashboard listing.
			s.logger.Warn("skipping unreadable demo", "id", entry.Name(), "error", err)
			continue
		}
		demos = append(demos, *demo)
	}
	return demos, nil
}

// AssistantPassword returns the configured password for an assistant and
// whether the assistant exists. An empty password means unprotected.
func (s *Store) AssistantPassword(demoID, assistantID string) (string, bool, error) {
	demo, err := s.Get(demoID)
	if err != nil {
		return "", false, err
	}
	for _, a := range demo.Assistants {
		if a.ID == assistantID {
			return a.Password, true, nil
		}
	}
	return "", false, nil
}

// Explainer returns the demo's explainer markdown.
func (s *Store) Explainer(id string) (string, error) {
	if !ValidID(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	data, err := os.ReadFile(filepath.Join(s.demoDir(id), "explainer.md"))
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("read explainer for %s: %w", id, err)
	}
	return string(data), nil
}

// invalidate drops a demo from the parsed-config cache.
func (s *Store) invalidate(id string) {
	if s.cache != nil {
		s.cache.Remove(id)
	}
}
