// Package instructions resolves assistant instruction documents by probing
// an ordered list of candidate file locations.
package instructions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ErrNotFound indicates no candidate location holds an instruction document
// for the requested pair. Callers surface this as a configuration defect
// (HTTP 404), not a transient condition.
var ErrNotFound = errors.New("assistant instructions not found")

// ErrInvalidID indicates an identifier that is empty or not path-safe.
var ErrInvalidID = errors.New("invalid identifier")

// LocationProbe attempts to load an instruction document from one candidate
// layout. Implementations return ok=false when the candidate does not exist.
type LocationProbe interface {
	TryLoad(demoID, assistantID string) (content string, ok bool, err error)
}

// pathProbe loads the file named by its path function.
type pathProbe func(demoID, assistantID string) string

func (p pathProbe) TryLoad(demoID, assistantID string) (string, bool, error) {
	path := p(demoID, assistantID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), true, nil
}

// Resolver probes candidate locations in order. The order encodes the
// migration precedence from the legacy flat layout to the current
// shared-markdown layout: when multiple candidates exist, the first listed
// location wins.
type Resolver struct {
	probes []LocationProbe
}

// New creates a resolver over the conventional layout rooted at base:
// the shared markdown directory, then the per-demo markdown subdirectory,
// then the legacy flat directory.
func New(base string) *Resolver {
	return &Resolver{probes: []LocationProbe{
		pathProbe(func(demoID, assistantID string) string {
			return filepath.Join(base, "public", "markdown", demoID+"-"+assistantID+".md")
		}),
		pathProbe(func(demoID, assistantID string) string {
			return filepath.Join(base, "public", "demos", demoID, "markdown", assistantID+".md")
		}),
		pathProbe(func(demoID, assistantID string) string {
			return filepath.Join(base, "assistants", assistantID+".md")
		}),
	}}
}

// NewWithProbes creates a resolver with an explicit probe order.
func NewWithProbes(probes ...LocationProbe) *Resolver {
	return &Resolver{probes: probes}
}

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// Resolve returns the first candidate document for the pair, or ErrNotFound.
// Identifiers are validated before any filesystem access so traversal
// sequences can never reach a path.
func (r *Resolver) Resolve(demoID, assistantID string) (string, error) {
	if !slugPattern.MatchString(demoID) {
		return "", fmt.Errorf("%w: demo %q", ErrInvalidID, demoID)
	}
	if !slugPattern.MatchString(assistantID) {
		return "", fmt.Errorf("%w: assistant %q", ErrInvalidID, assistantID)
	}

	for _, probe := range r.probes {
		content, ok, err := probe.TryLoad(demoID, assistantID)
		if err != nil {
			return "", err
		}
		if ok {
			return content, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrNotFound, demoID, assistantID)
}
