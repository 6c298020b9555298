package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/akarsten/demodash-go/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var (
	createManifest        string
	createPromptPasswords bool
)

// createManifestFile is the YAML shape consumed by demodash create. File
// paths are resolved relative to the manifest's directory.
type createManifestFile struct {
	ID         string `yaml:"id"`
	Title      string `yaml:"title"`
	Author     string `yaml:"author"`
	Icon       string `yaml:"icon"`
	Explainer  string `yaml:"explainer"`
	Assistants []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Password    string `yaml:"password"`
		Markdown    string `yaml:"markdown"`
		Icon        string `yaml:"icon"`
	} `yaml:"assistants"`
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a demo from a YAML manifest",
	Long: `Create a demo from a YAML manifest describing the demo, its
assistants and the local files to upload.

Manifest format:

  id: acme
  title: Acme Demo
  author: Jane
  icon: ./acme.svg
  explainer: ./explainer.md
  assistants:
    - id: support
      name: Support
      description: Answers support questions
      markdown: ./support.md
      icon: ./support.svg

With --prompt-passwords, a password is read interactively for each
assistant instead of being taken from the manifest.

Examples:
  demodash create --manifest demo.yaml
  demodash create --manifest demo.yaml --prompt-passwords`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createManifest, "manifest", "m", "", "path to the demo manifest (required)")
	createCmd.Flags().BoolVar(&createPromptPasswords, "prompt-passwords", false, "prompt for assistant passwords")
	createCmd.MarkFlagRequired("manifest")
}

func runCreate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(createManifest)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var manifest createManifestFile
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	if manifest.Explainer == "" {
		return fmt.Errorf("manifest must name an explainer file")
	}

	dir := filepath.Dir(createManifest)
	demo := store.Demo{
		ID:     manifest.ID,
		Title:  manifest.Title,
		Author: manifest.Author,
	}
	files := store.CreateFiles{
		AssistantDocs:  make(map[string][]byte),
		AssistantIcons: make(map[string][]byte),
	}

	if files.Explainer, err = readManifestFile(dir, manifest.Explainer); err != nil {
		return err
	}
	if manifest.Icon != "" {
		if files.Icon, err = readManifestFile(dir, manifest.Icon); err != nil {
			return err
		}
	}

	for _, a := range manifest.Assistants {
		password := a.Password
		if createPromptPasswords {
			if password, err = promptPassword(a.ID); err != nil {
				return err
			}
		}
		demo.Assistants = append(demo.Assistants, store.Assistant{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Password:    password,
		})

		if a.Markdown == "" {
			return fmt.Errorf("assistant %s has no markdown file", a.ID)
		}
		if files.AssistantDocs[a.ID], err = readManifestFile(dir, a.Markdown); err != nil {
			return err
		}
		if a.Icon != "" {
			if files.AssistantIcons[a.ID], err = readManifestFile(dir, a.Icon); err != nil {
				return err
			}
		}
	}

	if err := st.Create(&demo, files); err != nil {
		return fmt.Errorf("create demo: %w", err)
	}

	fmt.Printf("Created: %s (%d assistants)\n", demo.ID, len(demo.Assistants))
	return nil
}

// readManifestFile loads a file referenced by the manifest, resolving
// relative paths against the manifest's directory.
func readManifestFile(dir, path string) ([]byte, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// promptPassword reads a password without echoing it. An empty entry leaves
// the assistant unprotected.
func promptPassword(assistantID string) (string, error) {
	fmt.Printf("Password for %s (empty for none): ", assistantID)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(password), nil
}
