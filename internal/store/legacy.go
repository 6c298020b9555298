package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AssistantInfo is the metadata listed for a legacy flat-directory assistant.
type AssistantInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LegacyAssistants lists the instruction documents in the legacy flat
// assistants directory. Name and description come from YAML frontmatter when
// present, otherwise from the first heading and the following non-empty line.
func (s *Store) LegacyAssistants() ([]AssistantInfo, error) {
	entries, err := os.ReadDir(s.LegacyDir())
	if os.IsNotExist(err) {
		return []AssistantInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read legacy assistants directory: %w", err)
	}

	assistants := make([]AssistantInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".md")
		data, err := os.ReadFile(filepath.Join(s.LegacyDir(), entry.Name()))
		if err != nil {
			s.logger.Warn("skipping unreadable legacy assistant", "file", entry.Name(), "error", err)
			continue
		}
		info := describeAssistant(id, string(data))
		assistants = append(assistants, info)
	}
	return assistants, nil
}

// describeAssistant derives display metadata from an instruction document.
func describeAssistant(id, content string) AssistantInfo {
	info := AssistantInfo{ID: id, Name: id}

	body := content
	if fm, rest, ok := splitFrontmatter(content); ok {
		var meta struct {
			Name        string `yaml:"name"`
			Description string `yaml:"description"`
		}
		// Malformed frontmatter falls through to heading extraction.
		if err := yaml.Unmarshal([]byte(fm), &meta); err == nil {
			if meta.Name != "" {
				info.Name = meta.Name
			}
			if meta.Description != "" {
				info.Description = meta.Description
			}
		}
		body = rest
	}

	lines := strings.Split(body, "\n")
	sawHeading := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !sawHeading && strings.HasPrefix(line, "# ") {
			sawHeading = true
			if info.Name == id {
				info.Name = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			}
			continue
		}
		if info.Description == "" {
			info.Description = line
		}
		break
	}
	return info
}

// splitFrontmatter separates a leading YAML frontmatter block from the rest
// of the document.
func splitFrontmatter(content string) (frontmatter, rest string, ok bool) {
	if !strings.HasPrefix(content, "---\n") {
		return "", content, false
	}
	endIdx := strings.Index(content[4:], "\n---")
	if endIdx < 0 {
		return "", content, false
	}
	frontmatter = content[4 : 4+endIdx]
	rest = strings.TrimPrefix(content[4+endIdx+4:], "\n")
	return frontmatter, rest, true
}
