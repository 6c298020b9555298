package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// CreateFiles carries the uploaded documents for a demo creation.
// AssistantDocs is keyed by assistant ID and must have an entry for every
// assistant in the demo; icons are optional.
type CreateFiles struct {
	Explainer      []byte
	Icon           []byte
	AssistantDocs  map[string][]byte
	AssistantIcons map[string][]byte
}

// Create writes a new demo as a staged commit: the whole demo directory is
// assembled in a staging directory and atomically renamed into place, then
// the shared instruction documents are written. Any failure after the rename
// rolls the demo back so no partial demo survives.
//
// Icon paths in demo are rewritten to their public locations.
func (s *Store) Create(demo *Demo, files CreateFiles) error {
	if !ValidID(demo.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, demo.ID)
	}
	if IsStatic(demo.ID) {
		return fmt.Errorf("%w: %s", ErrStaticDemo, demo.ID)
	}
	if demo.Title == "" || demo.Author == "" || len(demo.Assistants) == 0 {
		return fmt.Errorf("%w: missing title, author or assistants", ErrInvalidID)
	}
	if len(files.Explainer) == 0 {
		return fmt.Errorf("%w: explainer document is required", ErrInvalidID)
	}
	for _, a := range demo.Assistants {
		if !ValidID(a.ID) {
			return fmt.Errorf("%w: assistant %q", ErrInvalidID, a.ID)
		}
		// Every assistant must end up with a resolvable instruction
		// document, or creation fails before anything is written.
		if len(files.AssistantDocs[a.ID]) == 0 {
			return fmt.Errorf("%w: assistant %q has no instruction document", ErrInvalidID, a.ID)
		}
	}
	if _, err := os.Stat(s.demoDir(demo.ID)); err == nil {
		return fmt.Errorf("%w: %s", ErrDemoExists, demo.ID)
	}

	if err := os.MkdirAll(s.DemosDir(), 0755); err != nil {
		return fmt.Errorf("create demos directory: %w", err)
	}
	if err := os.MkdirAll(s.MarkdownDir(), 0755); err != nil {
		return fmt.Errorf("create markdown directory: %w", err)
	}

	staging := filepath.Join(s.DemosDir(), ".staging-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if len(files.Icon) > 0 {
		if err := os.WriteFile(filepath.Join(staging, "icon.svg"), files.Icon, 0644); err != nil {
			return fmt.Errorf("stage demo icon: %w", err)
		}
		demo.Icon = filepath.ToSlash(filepath.Join("demos", demo.ID, "icon.svg"))
	}
	if err := os.WriteFile(filepath.Join(staging, "explainer.md"), files.Explainer, 0644); err != nil {
		return fmt.Errorf("stage explainer: %w", err)
	}
	for i := range demo.Assistants {
		a := &demo.Assistants[i]
		icon, ok := files.AssistantIcons[a.ID]
		if !ok || len(icon) == 0 {
			continue
		}
		dir := filepath.Join(staging, "assistants", a.ID)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("stage assistant directory %s: %w", a.ID, err)
		}
		if err := os.WriteFile(filepath.Join(dir, "icon.svg"), icon, 0644); err != nil {
			return fmt.Errorf("stage assistant icon %s: %w", a.ID, err)
		}
		a.Icon = filepath.ToSlash(filepath.Join("demos", demo.ID, "assistants", a.ID, "icon.svg"))
	}

	configData, err := marshalConfig(demo)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(staging, "config.json"), configData, 0644); err != nil {
		return fmt.Errorf("stage demo config: %w", err)
	}

	if err := os.Rename(staging, s.demoDir(demo.ID)); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ErrDemoExists, demo.ID)
		}
		return fmt.Errorf("commit demo %s: %w", demo.ID, err)
	}

	// The shared instruction documents live outside the demo directory, so
	// they are written after the rename and rolled back with it on failure.
	written := make([]string, 0, len(demo.Assistants))
	for _, a := range demo.Assistants {
		path := s.sharedMarkdownPath(demo.ID, a.ID)
		if err := os.WriteFile(path, files.AssistantDocs[a.ID], 0644); err != nil {
			s.rollbackCreate(demo.ID, written)
			return fmt.Errorf("write instruction document for %s: %w", a.ID, err)
		}
		written = append(written, path)
	}

	s.invalidate(demo.ID)
	s.logger.Info("demo created", "id", demo.ID, "assistants", len(demo.Assistants))
	return nil
}

// rollbackCreate undoes a partially committed create.
func (s *Store) rollbackCreate(id string, markdownPaths []string) {
	for _, path := range markdownPaths {
		if err := os.Remove(path); err != nil {
			s.logger.Error("rollback: remove instruction document", "path", path, "error", err)
		}
	}
	if err := os.RemoveAll(s.demoDir(id)); err != nil {
		s.logger.Error("rollback: remove demo directory", "id", id, "error", err)
	}
}

func marshalConfig(demo *Demo) ([]byte, error) {
	data, err := json.MarshalIndent(demo, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal demo config: %w", err)
	}
	return data, nil
}
