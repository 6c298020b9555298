// Package store manages the flat-file demo configuration layout on disk.
//
// The layout under the base directory is:
//
//	public/demos/<demoID>/config.json      demo descriptor
//	public/demos/<demoID>/explainer.md     dashboard explainer document
//	public/demos/<demoID>/icon.svg         optional demo icon
//	public/demos/<demoID>/assistants/<assistantID>/icon.svg
//	public/markdown/<demoID>-<assistantID>.md  shared assistant instructions
//	assistants/<assistantID>.md            legacy flat instruction documents
package store

// Assistant is one chat assistant inside a demo. Its instruction document is
// not stored inline; it is resolved by path convention from the demo and
// assistant IDs.
type Assistant struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Password    string `json:"password,omitempty" yaml:"password,omitempty"`
}

// Demo is the top-level unit managed by the dashboard: a named bundle of one
// or more assistants plus explanatory content.
type Demo struct {
	ID         string      `json:"id" yaml:"id"`
	Title      string      `json:"title" yaml:"title"`
	Author     string      `json:"author" yaml:"author"`
	Icon       string      `json:"icon,omitempty" yaml:"icon,omitempty"`
	Assistants []Assistant `json:"assistants" yaml:"assistants"`
}

// StaticDemoIDs are built-in demos that bypass the store: they are hidden
// from dynamic listings and cannot be created or deleted.
var StaticDemoIDs = []string{
	"math-assistant",
	"writing-assistant",
	"language-assistant",
	"coding-assistant",
}

// IsStatic reports whether id names a built-in demo.
func IsStatic(id string) bool {
	for _, s := range StaticDemoIDs {
		if s == id {
			return true
		}
	}
	return false
}
