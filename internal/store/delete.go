package store

import (
	"fmt"
	"os"
)

// DeleteFailure records one path that could not be removed.
type DeleteFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// DeleteReport is the structured outcome of a demo deletion. A deletion can
// partially fail; every attempted path lands in either Removed or Failed
// rather than being silently swallowed.
type DeleteReport struct {
	Removed []string        `json:"removed"`
	Failed  []DeleteFailure `json:"failed,omitempty"`
}

// Partial reports whether some paths could not be removed.
func (r *DeleteReport) Partial() bool { return len(r.Failed) > 0 }

// Delete removes a demo: the full target list is collected first (shared
// instruction documents, then the demo directory), each target is removed,
// and failures are reported instead of aborting the sequence. Built-in demos
// cannot be deleted.
func (s *Store) Delete(id string) (*DeleteReport, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if IsStatic(id) {
		return nil, fmt.Errorf("%w: %s", ErrStaticDemo, id)
	}

	demo, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	report := &DeleteReport{}
	for _, a := range demo.Assistants {
		path := s.sharedMarkdownPath(id, a.ID)
		switch err := os.Remove(path); {
		case err == nil:
			report.Removed = append(report.Removed, path)
		case os.IsNotExist(err):
			// Absent instruction documents are not a failure; the demo may
			// predate the shared markdown layout.
			s.logger.Debug("instruction document already absent", "path", path)
		default:
			s.logger.Error("delete instruction document", "path", path, "error", err)
			report.Failed = append(report.Failed, DeleteFailure{Path: path, Error: err.Error()})
		}
	}

	dir := s.demoDir(id)
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Error("delete demo directory", "id", id, "error", err)
		report.Failed = append(report.Failed, DeleteFailure{Path: dir, Error: err.Error()})
	} else {
		report.Removed = append(report.Removed, dir)
	}

	s.invalidate(id)
	s.logger.Info("demo deleted", "id", id, "removed", len(report.Removed), "failed", len(report.Failed))
	return report, nil
}
